package declarations

import "strings"

// Category represents a disaster category.
type Category string

// String returns the string representation of a Category.
func (c Category) String() string {
	return string(c)
}

// Known disaster categories.
const (
	CategoryFlood       Category = "flood"
	CategoryBushfire    Category = "bushfire"
	CategoryCyclone     Category = "cyclone"
	CategoryEarthquake  Category = "earthquake"
	CategorySevereStorm Category = "severe_storm"
	CategoryDrought     Category = "drought"
	CategoryHeatwave    Category = "heatwave"
	CategoryLandslide   Category = "landslide"
	CategoryTsunami     Category = "tsunami"
	CategoryOther       Category = "other"
)

// categoryAliases maps the vocabulary seen across both registry pipelines to
// canonical categories. Matching is case-insensitive on the trimmed text.
var categoryAliases = map[string]Category{
	"flood":            CategoryFlood,
	"flooding":         CategoryFlood,
	"bushfire":         CategoryBushfire,
	"bushfires":        CategoryBushfire,
	"fire":             CategoryBushfire,
	"cyclone":          CategoryCyclone,
	"tropical cyclone": CategoryCyclone,
	"earthquake":       CategoryEarthquake,
	"storm":            CategorySevereStorm,
	"storms":           CategorySevereStorm,
	"severe storm":     CategorySevereStorm,
	"severe storms":    CategorySevereStorm,
	"severe weather":   CategorySevereStorm,
	"drought":          CategoryDrought,
	"heatwave":         CategoryHeatwave,
	"landslide":        CategoryLandslide,
	"landslip":         CategoryLandslide,
	"tsunami":          CategoryTsunami,
}

// ParseCategory maps raw category text from either source to a canonical
// Category. Unknown or empty text maps to CategoryOther; the comparator works
// on canonical values only, so both sources must go through this one mapping.
func ParseCategory(raw string) Category {
	key := strings.ToLower(strings.TrimSpace(raw))
	if c, ok := categoryAliases[key]; ok {
		return c
	}
	return CategoryOther
}
