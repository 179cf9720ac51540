package product

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Structured review keys.
const (
	KeyBattery     = "battery"
	KeyCamera      = "camera"
	KeyPerformance = "performance"
	KeyDisplay     = "display"
	KeySentiment   = "sentiment"
)

// Sentiment is a single feature-to-phrase entry.
type Sentiment struct {
	Key    string
	Phrase string
}

// SentimentMap is an insertion-ordered mapping from feature key to phrase.
// Order is part of the value: scoring walks entries in this order.
type SentimentMap struct {
	entries []Sentiment
}

// NewSentimentMap builds a map from entries. A repeated key overwrites the
// earlier phrase in place.
func NewSentimentMap(entries ...Sentiment) SentimentMap {
	m := SentimentMap{entries: make([]Sentiment, 0, len(entries))}
	for _, e := range entries {
		m = m.with(e.Key, e.Phrase)
	}
	return m
}

func (m SentimentMap) with(key, phrase string) SentimentMap {
	for i := range m.entries {
		if m.entries[i].Key == key {
			m.entries[i].Phrase = phrase
			return m
		}
	}
	m.entries = append(m.entries, Sentiment{Key: key, Phrase: phrase})
	return m
}

// Get returns the phrase stored under key.
func (m SentimentMap) Get(key string) (string, bool) {
	for _, e := range m.entries {
		if e.Key == key {
			return e.Phrase, true
		}
	}
	return "", false
}

// Entries returns a copy of the entries in order.
func (m SentimentMap) Entries() []Sentiment { return slices.Clone(m.entries) }

// Len returns the number of entries.
func (m SentimentMap) Len() int { return len(m.entries) }

// Equal reports whether both maps hold the same entries in the same order.
func (m SentimentMap) Equal(other SentimentMap) bool {
	return slices.Equal(m.entries, other.entries)
}

// MarshalJSON encodes the map as a JSON object preserving key order.
func (m SentimentMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, fmt.Errorf("encode key %q: %w", e.Key, err)
		}
		v, err := json.Marshal(e.Phrase)
		if err != nil {
			return nil, fmt.Errorf("encode phrase for %q: %w", e.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of string values keeping document order.
func (m *SentimentMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode sentiment map: %w", err)
	}
	if tok == nil {
		*m = SentimentMap{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("decode sentiment map: expected object, got %v", tok)
	}

	out := SentimentMap{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode sentiment key: %w", err)
		}
		key, ok := kt.(string)
		if !ok {
			return fmt.Errorf("decode sentiment map: unexpected key %v", kt)
		}
		var phrase string
		if err := dec.Decode(&phrase); err != nil {
			return fmt.Errorf("decode sentiment %q: %w", key, err)
		}
		out = out.with(key, phrase)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode sentiment map: %w", err)
	}
	*m = out
	return nil
}
