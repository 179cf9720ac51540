package interpret

import (
	"regexp"

	"github.com/kailas-cloud/shopsense/internal/domain/query"
)

// categoryRule maps a pattern to a category. First match wins.
type categoryRule struct {
	re       *regexp.Regexp
	category query.Category
}

var categoryRules = []categoryRule{
	{regexp.MustCompile(`earbuds|tws|wireless earphone`), query.Earbuds},
	{regexp.MustCompile(`noise cancelling|headphone|earphone`), query.Headphones},
	{regexp.MustCompile(`laptop|notebook|macbook`), query.Laptop},
	{regexp.MustCompile(`\btv\b|television|smart tv`), query.Television},
	{regexp.MustCompile(`phone|smartphone|mobile`), query.Smartphone},
	{regexp.MustCompile(`camera|dslr|mirrorless`), query.Camera},
	{regexp.MustCompile(`watch|smartwatch`), query.Smartwatch},
	{regexp.MustCompile(`tablet|ipad`), query.Tablet},
	{regexp.MustCompile(`speaker|sound bar|soundbar`), query.Speaker},
	{regexp.MustCompile(`refrigerator|fridge`), query.Refrigerator},
	{regexp.MustCompile(`washing machine`), query.WashingMachine},
	{regexp.MustCompile(`\bac\b|air condition`), query.AirConditioner},
}

// budgetRule extracts a number; multiplier applies when no k suffix was captured.
type budgetRule struct {
	re         *regexp.Regexp
	multiplier int
}

// Number groups: digits with optional comma groups, optional k suffix.
const amount = `(\d+(?:,\d+)*)\s?(k\b)?`

var budgetRules = []budgetRule{
	{regexp.MustCompile(`under ` + amount), 1},
	{regexp.MustCompile(`below ` + amount), 1},
	{regexp.MustCompile(`less than ` + amount), 1},
	{regexp.MustCompile(`budget ` + amount), 1},
	{regexp.MustCompile(`around ` + amount), 1},
	{regexp.MustCompile(`(\d+(?:,\d+)*) ?rs\b`), 1},
	{regexp.MustCompile(`(\d+(?:,\d+)*) ?rupees`), 1},
	{regexp.MustCompile(`(\d+)k\b`), 1000},
}

// featureRule adds a priority tag when any keyword is present.
type featureRule struct {
	feature  string
	keywords []string
}

var featureRules = []featureRule{
	{query.FeatureCamera, []string{"camera", "photo", "photography", "picture", "selfie"}},
	{query.FeatureBattery, []string{"battery", "backup", "long lasting", "battery life"}},
	{query.FeaturePerformance, []string{
		"performance", "speed", "fast", "processor", "gaming", "snapdragon", "mediatek",
	}},
	{query.FeatureDisplay, []string{"display", "screen", "amoled", "lcd", "oled", "resolution"}},
	{query.FeatureStorage, []string{"storage", "memory", "ram", "gb", "tb"}},
	{query.FeaturePrice, []string{"price", "cheap", "budget", "affordable", "value"}},
	{query.FeatureDesign, []string{"design", "look", "build", "premium"}},
	{query.FeatureSound, []string{"speaker", "audio", "sound", "music"}},
	{query.FeaturePortability, []string{"light", "weight", "portable", "slim"}},
	{query.FeatureCharging, []string{"charging", "fast charge", "quick charge", "supervooc"}},
}

var brandVocabulary = []string{
	"samsung", "apple", "xiaomi", "redmi", "realme", "oneplus", "vivo", "oppo", "poco",
	"nokia", "motorola", "google", "sony", "lg", "asus", "huawei", "honor", "infinix",
	"dell", "hp", "lenovo", "acer", "msi", "microsoft", "alienware", "macbook", "toshiba",
}

// brandImplication adds a brand when a product-line token appears.
type brandImplication struct {
	token string
	brand string
}

var brandImplications = []brandImplication{
	{"iphone", "apple"},
}

// reclassification forces a category and appends a brand, overriding rule matches.
type reclassification struct {
	tokens   []string
	category query.Category
	brand    string
}

var reclassifications = []reclassification{
	{[]string{"macbook", "imac"}, query.Laptop, "apple"},
}

var defaultPriorities = map[query.Category][]string{
	query.Smartphone: {query.FeaturePerformance, query.FeatureCamera},
	query.Laptop:     {query.FeaturePerformance, query.FeatureDisplay},
	query.Television: {query.FeatureDisplay, query.FeatureSound},
	query.Headphones: {query.FeatureSound, query.FeatureBattery},
}

var fallbackPriorities = []string{query.FeaturePerformance}

type placement int

const (
	front placement = iota
	back
)

// override conditionally places a feature tag when it is absent.
// An empty categories set applies to every category.
type override struct {
	tokens     []string
	categories []query.Category
	feature    string
	place      placement
}

var overrides = []override{
	{tokens: []string{"best"}, feature: query.FeaturePerformance, place: front},
	{
		tokens:     []string{"gaming", "game"},
		categories: []query.Category{query.Smartphone, query.Laptop},
		feature:    query.FeaturePerformance,
		place:      front,
	},
	{
		tokens:     []string{"photography", "picture", "photo"},
		categories: []query.Category{query.Smartphone},
		feature:    query.FeatureCamera,
		place:      front,
	},
	{tokens: []string{"long lasting", "all day"}, feature: query.FeatureBattery, place: back},
}
