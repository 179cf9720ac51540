package processlog

import (
	"encoding/json"
	"time"
)

// DefaultCapacity is the number of entries a sink retains.
const DefaultCapacity = 100

// Entry is one recorded pipeline step. Data holds a JSON summary of the step
// payload, never the payload itself.
type Entry struct {
	Timestamp time.Time       `json:"timestamp"`
	Step      string          `json:"step"`
	Data      json.RawMessage `json:"data"`
}
