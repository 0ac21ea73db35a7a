package asset

import "strings"

// Category is a canonical technology field.
type Category string

const (
	CategoryAI             Category = "Artificial Intelligence"
	CategoryCloud          Category = "Cloud Computing"
	CategoryWireless       Category = "5G & Wireless"
	CategoryBiotech        Category = "Biotech & Pharma"
	CategoryEV             Category = "Electric Vehicles"
	CategoryRenewable      Category = "Renewable Energy"
	CategoryRobotics       Category = "Robotics"
	CategorySemiconductors Category = "Semiconductors"
	CategoryCybersecurity  Category = "Cybersecurity"
	CategoryOther          Category = "Other Technologies"
	CategoryUnclassified   Category = "Unclassified"
)

// String implements fmt.Stringer.
func (c Category) String() string { return string(c) }

type categoryRule struct {
	category Category
	keywords []string
}

// categoryRules is evaluated top to bottom and the first hit wins. Some
// keywords are short digit strings ("1", "12") that also occur inside
// unrelated codes, so reordering rows changes results.
var categoryRules = []categoryRule{
	{CategoryAI, []string{"G06N", "CLASS 12", "12", "AI", "INTELLIGENCE", "MACHINE"}},
	{CategoryCloud, []string{"G06F", "CLASS 25", "25", "CLOUD", "COMPUTING"}},
	{CategoryWireless, []string{"H04W", "CLASS 28", "28", "5G", "WIRELESS"}},
	{CategoryBiotech, []string{"A61K", "C12N", "CLASS 1", "1B", "BIO", "PHARMA"}},
	{CategoryEV, []string{"B60", "CLASS 38", "38", "ELECTRIC", "VEHICLE"}},
	{CategoryRenewable, []string{"H02S", "CLASS 41", "41", "SOLAR", "RENEWABLE"}},
	{CategoryRobotics, []string{"B25J", "ROBOT"}},
	{CategorySemiconductors, []string{"H01L", "SEMICONDUCTOR"}},
	{CategoryCybersecurity, []string{"H04L", "SECURITY", "CYBER"}},
}

// AllCategories lists the named categories in rule order, followed by the
// two fallbacks.
func AllCategories() []Category {
	out := make([]Category, 0, len(categoryRules)+2)
	for _, r := range categoryRules {
		out = append(out, r.category)
	}
	return append(out, CategoryOther, CategoryUnclassified)
}

// Normalize maps one raw classification code or keyword to its canonical
// category.
func Normalize(raw string) Category {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return CategoryUnclassified
	}
	for _, r := range categoryRules {
		for _, kw := range r.keywords {
			if strings.Contains(code, kw) {
				return r.category
			}
		}
	}
	return CategoryOther
}

// Categories splits a comma separated classification string and returns the
// distinct categories in first-seen order. An empty input yields nil.
func Categories(raw string) []Category {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	seen := make(map[Category]struct{}, len(parts))
	out := make([]Category, 0, len(parts))
	for _, p := range parts {
		c := Normalize(p)
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

//Personal.AI order the ending
