package acquire

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/shopsense/internal/domain/query"
)

// listing is a curated catalog row used to synthesize candidates offline.
type listing struct {
	id       string
	title    string
	price    int
	rating   float64
	features []string
	reviews  []string
}

// shelf is one category's curated listings plus the single-item reliefs used
// when brand or budget filtering leaves nothing.
type shelf struct {
	listings     []listing
	brandRelief  func(brand string, budget int) listing
	budgetRelief func(budget int) listing
}

var phoneShelf = shelf{
	listings: []listing{
		{
			id:     "mock-1",
			title:  "Redmi Note 12 Pro 5G (Glacier Blue, 128 GB)",
			price:  18999,
			rating: 4.3,
			features: []string{
				"50MP Sony IMX766 Camera",
				"5000mAh Battery",
				"6GB RAM",
				"MediaTek Dimensity 1080 Processor",
				"120Hz AMOLED Display",
			},
			reviews: []string{
				"Great camera quality, especially in daylight",
				"Battery easily lasts a full day with heavy use",
				"Smooth performance for daily tasks and gaming",
				"The AMOLED display is vibrant and sharp",
			},
		},
		{
			id:     "mock-2",
			title:  "Realme Narzo 60 5G (Mars Orange, 128 GB)",
			price:  15999,
			rating: 4.1,
			features: []string{
				"64MP Primary Camera",
				"5000mAh Battery",
				"8GB RAM",
				"MediaTek Dimensity 6020 Processor",
				"90Hz Super AMOLED Display",
			},
			reviews: []string{
				"Value for money phone with good features",
				"Battery backup is excellent",
				"Camera is decent but not the best in low light",
				"Display quality is good for the price",
			},
		},
		{
			id:     "mock-3",
			title:  "Samsung Galaxy M34 5G (Midnight Blue, 128 GB)",
			price:  19499,
			rating: 4.4,
			features: []string{
				"50MP Triple Camera",
				"6000mAh Battery",
				"8GB RAM",
				"Exynos 1280 Processor",
				"120Hz Super AMOLED Display",
			},
			reviews: []string{
				"Battery life is outstanding, easily lasts 2 days",
				"Camera takes natural looking photos",
				"Display is bright and smooth",
				"Performance is good for everyday use",
			},
		},
		{
			id:     "mock-4",
			title:  "Samsung Galaxy S21 FE 5G (Graphite, 128 GB)",
			price:  24999,
			rating: 4.5,
			features: []string{
				"12MP Triple Camera",
				"4500mAh Battery",
				"8GB RAM",
				"Snapdragon 888 Processor",
				"120Hz Dynamic AMOLED Display",
			},
			reviews: []string{
				"Flagship performance at a reasonable price",
				"Camera is excellent in all lighting conditions",
				"Battery could be better with heavy usage",
				"Display is one of the best in this segment",
			},
		},
		{
			id:     "mock-5",
			title:  "OnePlus Nord CE 3 Lite 5G (Chromatic Gray, 128 GB)",
			price:  19999,
			rating: 4.3,
			features: []string{
				"108MP Main Camera",
				"5000mAh Battery",
				"8GB RAM",
				"Snapdragon 695 Processor",
				"120Hz LCD Display",
			},
			reviews: []string{
				"Clean software experience with OxygenOS",
				"Fast charging is really convenient",
				"Camera is good in daylight",
				"LCD display is not as vibrant as AMOLED",
			},
		},
	},
	brandRelief: func(brand string, budget int) listing {
		return listing{
			id:     "mock-brand-" + brand,
			title:  fmt.Sprintf("%s Smartphone (Black, 128 GB)", titleCase(brand)),
			price:  reliefPrice(budget, 2000, 19999),
			rating: 4.2,
			features: []string{
				"48MP Camera",
				"5000mAh Battery",
				"6GB RAM 128GB Storage",
				"Octa-core Processor",
				"Full HD+ Display",
			},
			reviews: []string{
				"Good phone for the price",
				"Battery life is impressive",
				"Camera quality is decent",
				"Smooth performance for daily use",
			},
		}
	},
	budgetRelief: func(budget int) listing {
		return listing{
			id:     "mock-budget",
			title:  fmt.Sprintf("Budget Smartphone under %d", budget),
			price:  reliefPrice(budget, 1000, budget),
			rating: 4.0,
			features: []string{
				"Decent Camera",
				"Standard Battery",
				"4GB RAM 64GB Storage",
				"Entry-level Processor",
				"HD+ Display",
			},
			reviews: []string{
				"Good value for money",
				"Basic features work well",
				"Battery lasts a day with normal use",
				"Suitable for everyday tasks",
			},
		}
	},
}

var laptopShelf = shelf{
	listings: []listing{
		{
			id:     "mock-laptop-1",
			title:  "HP Pavilion 14 (i5-11th Gen, 16GB RAM, 512GB SSD)",
			price:  55999,
			rating: 4.2,
			features: []string{
				"Intel Core i5-1135G7",
				"16GB DDR4 RAM",
				"512GB NVMe SSD",
				`14" Full HD IPS Display`,
				"Windows 11 Home",
				"Backlit Keyboard",
			},
			reviews: []string{
				"Great performance for office work and light gaming",
				"Battery life is good, lasts around 6-7 hours",
				"Display is crisp and bright",
				"Build quality is premium",
			},
		},
		{
			id:     "mock-laptop-2",
			title:  "Lenovo Ideapad Slim 3 (i3-12th Gen, 8GB RAM, 256GB SSD)",
			price:  42999,
			rating: 4.0,
			features: []string{
				"Intel Core i3-1215U",
				"8GB DDR4 RAM",
				"256GB SSD",
				`15.6" Full HD Display`,
				"Windows 11 Home",
				"Dolby Audio",
			},
			reviews: []string{
				"Good laptop for students and basic tasks",
				"Lightweight and portable",
				"Battery backup is decent",
				"Value for money",
			},
		},
		{
			id:     "mock-laptop-3",
			title:  "ASUS TUF Gaming F15 (i5-11th Gen, 16GB RAM, 512GB SSD, RTX 3050)",
			price:  64999,
			rating: 4.3,
			features: []string{
				"Intel Core i5-11400H",
				"16GB DDR4 RAM",
				"512GB NVMe SSD",
				"NVIDIA RTX 3050 4GB",
				`15.6" FHD 144Hz Display`,
				"Windows 11 Home",
			},
			reviews: []string{
				"Excellent gaming performance",
				"Cooling system works well",
				"Display is smooth for gaming",
				"Battery life is average due to powerful hardware",
			},
		},
		{
			id:     "mock-laptop-4",
			title:  "Dell Inspiron 15 (Ryzen 5, 8GB RAM, 512GB SSD)",
			price:  49999,
			rating: 4.1,
			features: []string{
				"AMD Ryzen 5 5500U",
				"8GB DDR4 RAM",
				"512GB SSD",
				`15.6" Full HD Display`,
				"Windows 11 Home",
				"MS Office 2021",
			},
			reviews: []string{
				"Reliable performance for multitasking",
				"Good build quality",
				"Keyboard is comfortable for long typing sessions",
				"Decent battery life",
			},
		},
	},
	brandRelief: func(brand string, budget int) listing {
		return listing{
			id:     "mock-laptop-brand-" + brand,
			title:  fmt.Sprintf("%s Laptop (i5, 8GB RAM, 512GB SSD)", titleCase(brand)),
			price:  reliefPrice(budget, 5000, 49999),
			rating: 4.1,
			features: []string{
				"Intel Core i5 Processor",
				"8GB RAM",
				"512GB SSD",
				`15.6" Full HD Display`,
				"Windows 11",
			},
			reviews: []string{
				"Good performance for daily tasks",
				"Build quality is solid",
				"Battery life is decent",
				"Good value for money",
			},
		}
	},
	budgetRelief: func(budget int) listing {
		return listing{
			id:     "mock-laptop-budget",
			title:  fmt.Sprintf("Budget Laptop under %d", budget),
			price:  reliefPrice(budget, 2000, budget),
			rating: 3.9,
			features: []string{
				"Intel Core i3 Processor",
				"4GB RAM",
				"256GB SSD",
				`14" HD Display`,
				"Windows 11",
			},
			reviews: []string{
				"Basic laptop for everyday tasks",
				"Good for students",
				"Lightweight and portable",
				"Value for money",
			},
		}
	},
}

var earbudsShelf = shelf{
	listings: []listing{
		{
			id:     "mock-earbuds-1",
			title:  "boAt Airdopes 141 True Wireless Earbuds",
			price:  1499,
			rating: 4.2,
			features: []string{
				"42 Hours Playback",
				"ENx Technology",
				"Low Latency Mode",
				"IPX4 Water Resistance",
			},
			reviews: []string{
				"Great sound quality for the price",
				"Battery life is excellent",
				"Comfortable fit for long hours",
				"Call quality could be better",
			},
		},
		{
			id:     "mock-earbuds-2",
			title:  "OnePlus Nord Buds 2 True Wireless Earbuds",
			price:  2999,
			rating: 4.3,
			features: []string{
				"Active Noise Cancellation",
				"36 Hours Playback",
				"12.4mm Drivers",
				"IP55 Rating",
			},
			reviews: []string{
				"ANC works well at this price",
				"Bass is punchy and clear",
				"Fast charging is convenient",
				"Good connectivity with OnePlus phones",
			},
		},
		{
			id:     "mock-earbuds-3",
			title:  "Noise Buds VS104 True Wireless Earbuds",
			price:  1299,
			rating: 4.0,
			features: []string{
				"30 Hours Playback",
				"Quad Mic ENC",
				"Instacharge",
				"Hyper Sync",
			},
			reviews: []string{
				"Good value for money",
				"Sound is balanced",
				"Mic quality is decent for calls",
				"Case feels a bit cheap",
			},
		},
		{
			id:     "mock-earbuds-4",
			title:  "realme Buds Air 3 Neo True Wireless Earbuds",
			price:  1799,
			rating: 4.1,
			features: []string{
				"Dolby Atmos",
				"30 Hours Playback",
				"10mm Dynamic Bass Driver",
				"IPX5 Water Resistance",
			},
			reviews: []string{
				"Dolby Atmos makes a difference",
				"Bass is strong",
				"Comfortable for workouts",
				"Touch controls are responsive",
			},
		},
	},
	brandRelief: func(brand string, budget int) listing {
		return listing{
			id:       "mock-earbuds-brand-" + brand,
			title:    fmt.Sprintf("%s True Wireless Earbuds", titleCase(brand)),
			price:    reliefPrice(budget, 500, 1999),
			rating:   4.0,
			features: []string{"30 Hours Playback", "Bluetooth 5.3", "IPX4 Water Resistance"},
			reviews:  []string{"Good sound for the price", "Comfortable fit", "Battery lasts long"},
		}
	},
	budgetRelief: func(budget int) listing {
		return listing{
			id:       "mock-earbuds-budget",
			title:    fmt.Sprintf("Budget Wireless Earbuds under %d", budget),
			price:    reliefPrice(budget, 500, budget),
			rating:   3.8,
			features: []string{"20 Hours Playback", "Bluetooth 5.0", "Touch Controls"},
			reviews:  []string{"Decent sound for the price", "Battery life is good", "Comfortable to wear"},
		}
	},
}

var headphonesShelf = shelf{
	listings: []listing{
		{
			id:     "mock-headphones-1",
			title:  "boAt Rockerz 450 Bluetooth On-Ear Headphones",
			price:  1499,
			rating: 4.2,
			features: []string{
				"15 Hours Playback",
				"40mm Dynamic Drivers",
				"Padded Ear Cushions",
				"Dual Connectivity",
			},
			reviews: []string{
				"Great bass for the price",
				"Comfortable for long listening sessions",
				"Battery life is good",
				"Build quality is decent",
			},
		},
		{
			id:     "mock-headphones-2",
			title:  "Sony WH-1000XM4 Wireless Noise Cancelling Headphones",
			price:  19990,
			rating: 4.7,
			features: []string{
				"Industry Leading Noise Cancellation",
				"30 Hours Battery Life",
				"Touch Sensor Controls",
				"Speak-to-Chat",
			},
			reviews: []string{
				"Best noise cancellation in the market",
				"Sound quality is exceptional",
				"Very comfortable for long flights",
				"Expensive but worth every rupee",
			},
		},
		{
			id:     "mock-headphones-3",
			title:  "JBL Tune 760NC Wireless Headphones",
			price:  5999,
			rating: 4.3,
			features: []string{
				"Active Noise Cancellation",
				"35 Hours Playback",
				"JBL Pure Bass Sound",
				"Foldable Design",
			},
			reviews: []string{
				"Signature JBL bass",
				"ANC is effective for the price",
				"Foldable design is travel friendly",
				"Ear cups get warm after long use",
			},
		},
	},
	brandRelief: func(brand string, budget int) listing {
		return listing{
			id:       "mock-headphones-brand-" + brand,
			title:    fmt.Sprintf("%s Wireless Headphones", titleCase(brand)),
			price:    reliefPrice(budget, 500, 2999),
			rating:   4.0,
			features: []string{"25 Hours Playback", "40mm Drivers", "Foldable Design"},
			reviews:  []string{"Good sound quality", "Comfortable fit", "Solid battery life"},
		}
	},
	budgetRelief: func(budget int) listing {
		return listing{
			id:       "mock-headphones-budget",
			title:    fmt.Sprintf("Budget Headphones under %d", budget),
			price:    reliefPrice(budget, 500, budget),
			rating:   3.8,
			features: []string{"20 Hours Playback", "Bluetooth 5.0", "Padded Ear Cushions"},
			reviews:  []string{"Decent sound for the price", "Battery life is good", "Comfortable to wear"},
		}
	},
}

var smartwatchShelf = shelf{
	listings: []listing{
		{
			id:     "mock-watch-1",
			title:  "Noise ColorFit Pro 3 Smartwatch",
			price:  3999,
			rating: 4.1,
			features: []string{
				`1.55" HD Touch Display`,
				"SpO2 Monitor",
				"Heart Rate Monitor",
				"14 Sports Modes",
			},
			reviews: []string{
				"Display is bright and clear",
				"Health tracking is fairly accurate",
				"Battery lasts about a week",
				"Good value for money",
			},
		},
		{
			id:     "mock-watch-2",
			title:  "boAt Storm Smartwatch",
			price:  2499,
			rating: 4.0,
			features: []string{
				`1.3" Curved Display`,
				"Heart Rate Monitor",
				"SpO2 Monitor",
				"5ATM Water Resistance",
			},
			reviews: []string{
				"Stylish design",
				"Basic fitness tracking works well",
				"Battery life is good",
				"App could be better",
			},
		},
		{
			id:     "mock-watch-3",
			title:  "Samsung Galaxy Watch 4 (Bluetooth, 44mm)",
			price:  11999,
			rating: 4.4,
			features: []string{
				"Super AMOLED Display",
				"Body Composition Analysis",
				"Wear OS",
				"Sleep Tracking",
			},
			reviews: []string{
				"Premium build and display",
				"Great integration with Samsung phones",
				"Health features are comprehensive",
				"Battery needs daily charging",
			},
		},
	},
	brandRelief: func(brand string, budget int) listing {
		return listing{
			id:       "mock-watch-brand-" + brand,
			title:    fmt.Sprintf("%s Smartwatch", titleCase(brand)),
			price:    reliefPrice(budget, 500, 3499),
			rating:   4.0,
			features: []string{"Heart Rate Monitor", "SpO2 Monitor", "7 Days Battery"},
			reviews:  []string{"Good fitness tracking", "Battery lasts long", "Comfortable strap"},
		}
	},
	budgetRelief: func(budget int) listing {
		return listing{
			id:       "mock-watch-budget",
			title:    fmt.Sprintf("Budget Smartwatch under %d", budget),
			price:    reliefPrice(budget, 500, budget),
			rating:   3.7,
			features: []string{"Heart Rate Monitor", "Step Counter", "Notifications"},
			reviews:  []string{"Basic features work fine", "Good for the price", "Battery lasts a few days"},
		}
	},
}

var shelves = map[query.Category]shelf{
	query.Smartphone: phoneShelf,
	query.Laptop:     laptopShelf,
	query.Earbuds:    earbudsShelf,
	query.Headphones: headphonesShelf,
	query.Smartwatch: smartwatchShelf,
}

// shelfAliases maps free-form category names to shelves by substring, in
// order. Audio and watch come before phone so "headphones" and "smartwatch"
// are not read as phones.
var shelfAliases = []struct {
	tokens []string
	shelf  query.Category
}{
	{[]string{"earbud", "tws"}, query.Earbuds},
	{[]string{"headphone", "earphone"}, query.Headphones},
	{[]string{"watch"}, query.Smartwatch},
	{[]string{"phone", "mobile"}, query.Smartphone},
	{[]string{"laptop", "notebook"}, query.Laptop},
}

// shelfFor finds the curated shelf for category, exact name first.
func shelfFor(category query.Category) (shelf, bool) {
	name := strings.ToLower(strings.TrimSpace(string(category)))
	if sh, ok := shelves[query.Category(name)]; ok {
		return sh, true
	}
	for _, a := range shelfAliases {
		for _, tok := range a.tokens {
			if strings.Contains(name, tok) {
				return shelves[a.shelf], true
			}
		}
	}
	return shelf{}, false
}

// genericListings is the two-item set for categories without a curated shelf.
// Prices follow the budget so both items always fit it.
func genericListings(category query.Category, budget int) []listing {
	label := strings.ReplaceAll(string(category), "_", " ")
	if label == "" {
		label = string(query.Electronics)
	}

	best, premium := 15000, 25000
	if budget > 0 {
		best = min(reliefPrice(budget, 1000, budget), best)
		premium = min(budget, premium)
	}

	return []listing{
		{
			id:       "mock-generic-1",
			title:    fmt.Sprintf("Best %s 1", label),
			price:    best,
			rating:   4.2,
			features: []string{"Feature 1", "Feature 2", "Feature 3"},
			reviews:  []string{"Good product", "Value for money", "Recommended"},
		},
		{
			id:       "mock-generic-2",
			title:    fmt.Sprintf("Premium %s 2", label),
			price:    premium,
			rating:   4.5,
			features: []string{"Premium Feature 1", "Premium Feature 2", "Premium Feature 3"},
			reviews:  []string{"Excellent product", "Worth the price", "Highly recommended"},
		},
	}
}

// reliefPrice is budget minus discount, kept positive and below budget when
// possible. Without a budget it returns fallback.
func reliefPrice(budget, discount, fallback int) int {
	if budget <= 0 {
		return fallback
	}
	p := budget - discount
	if p < 1 {
		p = budget / 2
	}
	if p < 1 {
		p = 1
	}
	return p
}
