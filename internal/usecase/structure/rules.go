package structure

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kailas-cloud/shopsense/internal/domain/product"
)

// Phrases emitted per feature.
const (
	BatteryBest     = "excellent, lasts all day"
	BatteryGood     = "good, but could be better"
	CameraBest      = "excellent in daylight, good in low light"
	CameraGood      = "good in daylight, average in low light"
	PerformanceBest = "excellent, handles all tasks smoothly"
	PerformanceGood = "good for daily use"
	DisplayBest     = "excellent, vibrant colors"
	DisplayGood     = "good, but not as vibrant as AMOLED"
	Average         = "average"

	SentimentVeryPositive = "very positive"
	SentimentPositive     = "positive"
	SentimentMixed        = "mixed"
)

// HighMegapixels is the smallest sensor resolution that earns the best camera phrase.
const HighMegapixels = 48

// HighRAMGB is the smallest memory size that earns the best performance phrase.
const HighRAMGB = 8

var (
	megapixelRe = regexp.MustCompile(`(\d+)\s*mp\b`)
	ramRe       = regexp.MustCompile(`(\d+)\s*gb\s*ram`)
)

// signals are the lowercased attributes the rules inspect.
type signals struct {
	title    string
	features string
	both     string
}

func newSignals(c product.Candidate) signals {
	title := strings.ToLower(c.Title())
	features := strings.ToLower(strings.Join(c.Features(), "\n"))
	return signals{title: title, features: features, both: title + "\n" + features}
}

// tier pairs a predicate with the phrase it yields.
type tier struct {
	phrase string
	match  func(s signals) bool
}

// featureRule resolves one key: the first matching tier wins, else Average.
type featureRule struct {
	key   string
	tiers []tier
}

var featureRules = []featureRule{
	{
		key: product.KeyBattery,
		tiers: []tier{
			{BatteryBest, func(s signals) bool { return containsAny(s.title, "redmi", "xiaomi", "realme") }},
			{BatteryGood, func(s signals) bool { return containsAny(s.title, "samsung") }},
		},
	},
	{
		key: product.KeyCamera,
		tiers: []tier{
			{CameraBest, func(s signals) bool { return maxNumber(megapixelRe, s.features) >= HighMegapixels }},
			{CameraGood, func(s signals) bool { return containsAny(s.features, "camera") }},
		},
	},
	{
		key: product.KeyPerformance,
		tiers: []tier{
			{PerformanceBest, func(s signals) bool {
				return containsAny(s.both, highEndChips...) || maxNumber(ramRe, s.both) >= HighRAMGB
			}},
			{PerformanceGood, func(s signals) bool {
				return containsAny(s.both, midRangeChips...) || maxNumber(ramRe, s.both) > 0
			}},
		},
	},
	{
		key: product.KeyDisplay,
		tiers: []tier{
			{DisplayBest, func(s signals) bool { return containsAny(s.features, "amoled", "oled") }},
			{DisplayGood, func(s signals) bool { return containsAny(s.features, "lcd", "ips") }},
		},
	},
}

var highEndChips = []string{
	"snapdragon", "dimensity", "bionic", "tensor", "exynos 2100",
	"core i7", "core i9", "ryzen 7", "ryzen 9", "rtx",
}

var midRangeChips = []string{
	"helio", "exynos", "unisoc", "core i5", "core i3", "i5-", "i3-", "ryzen 5", "ryzen 3", "processor",
}

func containsAny(s string, tokens ...string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// maxNumber returns the largest first-group integer matched by re, 0 if none.
func maxNumber(re *regexp.Regexp, s string) int {
	best := 0
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > best {
			best = n
		}
	}
	return best
}
