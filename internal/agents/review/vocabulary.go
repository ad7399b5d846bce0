// internal/agents/review/vocabulary.go
package review

// Fixed keyword vocabularies driving the sentiment and theme extraction.
// Matching is lowercase substring matching over the review text.

var positiveKeywords = []string{
	"excellent", "great", "amazing", "perfect", "love", "wonderful",
	"clean", "comfortable", "quality", "recommend", "spotless", "good",
	"friendly", "helpful", "responsive", "smooth", "easy", "best",
}

var negativeKeywords = []string{
	"dirty", "bad", "poor", "terrible", "worst", "disappointing",
	"missing", "broken", "filthy", "uncomfortable", "awful", "slow",
	"rude", "late", "damaged", "problem", "issue", "complaint",
}

type themeDefinition struct {
	name     string
	keywords []string
}

// themeDefinitions keeps a fixed order so reports are deterministic when
// mention counts tie.
var themeDefinitions = []themeDefinition{
	{"Cleanliness", []string{"clean", "tidy", "spotless", "dirty", "filthy", "messy", "dust"}},
	{"Comfort", []string{"comfortable", "cozy", "uncomfortable", "soft", "bed", "sleep"}},
	{"Quality", []string{"quality", "excellent", "good", "poor", "bad", "condition"}},
	{"Communication", []string{"responsive", "helpful", "communication", "quick", "slow", "friendly", "rude"}},
	{"Value", []string{"worth", "value", "price", "expensive", "cheap", "affordable"}},
	{"Location", []string{"location", "convenient", "accessible", "far", "near"}},
	{"Amenities", []string{"amenities", "wifi", "parking", "pool", "kitchen", "missing"}},
}

// issueKeywords maps a trigger word found in a low-rated review to the issue
// it indicates, paired with the advice templated into recommendations.
type issueDefinition struct {
	keyword string
	issue   string
	advice  string // format string taking the mention count
}

var issueDefinitions = []issueDefinition{
	{"dirty", "cleanliness issue", "Cleanliness mentioned %dx - Deep clean before each guest, consider professional cleaning service"},
	{"filthy", "cleanliness issue", "Cleanliness mentioned %dx - Deep clean before each guest, consider professional cleaning service"},
	{"messy", "cleanliness issue", "Cleanliness mentioned %dx - Deep clean before each guest, consider professional cleaning service"},
	{"dust", "dust accumulation", "Dust mentioned %dx - Focus on dusting surfaces, air vents, and hidden areas"},
	{"uncomfortable", "comfort issue", "Comfort mentioned %dx - Upgrade mattress/pillows or add extra bedding options"},
	{"broken", "broken item/facility", "Broken items mentioned %dx - Inspect and repair/replace damaged items immediately"},
	{"missing", "missing item/amenity", "Missing items mentioned %dx - Check amenity checklist and restock essentials"},
	{"slow", "slow response/service", "Slow response mentioned %dx - Set up auto-replies and check messages more frequently"},
	{"rude", "staff/host attitude", "Attitude mentioned %dx - Focus on friendly, professional communication"},
	{"expensive", "pricing concern", "Pricing mentioned %dx - Review your pricing or add more value/amenities"},
	{"noisy", "noise issue", "Noise mentioned %dx - Provide earplugs or improve sound insulation"},
	{"small", "space too small", "Space mentioned %dx - Update listing to set proper expectations about room size"},
	{"old", "outdated facilities", "Outdated facilities mentioned %dx - Consider renovations or modernizing decor"},
	{"smell", "odor issue", "Odor mentioned %dx - Deep clean carpets/fabrics, use air fresheners"},
	{"bug", "pest issue", "Pest mentioned %dx - Call pest control immediately"},
	{"leak", "water leak issue", "Leak mentioned %dx - Fix plumbing issues urgently"},
	{"cold", "temperature issue", "Temperature mentioned %dx - Check AC/heating system, provide fans or extra blankets"},
	{"hot", "temperature issue", "Temperature mentioned %dx - Check AC/heating system, provide fans or extra blankets"},
	{"wifi", "wifi/internet issue", "WiFi mentioned %dx - Upgrade internet plan or add WiFi extenders"},
	{"parking", "parking issue", "Parking mentioned %dx - Clarify parking situation in listing or provide alternatives"},
	{"late", "late check-in/response", "Late response mentioned %dx - Use automated check-in or be more punctual"},
}

// praiseKeywords maps a trigger word found in a high-rated review to the
// aspect being praised.
var praiseDefinitions = []struct {
	keyword string
	praise  string
}{
	{"clean", "cleanliness"},
	{"spotless", "excellent cleanliness"},
	{"comfortable", "comfort"},
	{"cozy", "cozy atmosphere"},
	{"friendly", "friendly host"},
	{"helpful", "helpful service"},
	{"responsive", "quick response"},
	{"great", "great experience"},
	{"excellent", "excellent quality"},
	{"perfect", "perfect stay"},
	{"amazing", "amazing experience"},
	{"recommend", "highly recommended"},
	{"convenient", "convenient location"},
	{"spacious", "spacious room"},
	{"quiet", "peaceful environment"},
	{"value", "good value"},
}
