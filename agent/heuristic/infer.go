package heuristic

import (
	"regexp"
	"strconv"
	"strings"
)

// Params holds extracted filter signals. Absent signals are absent keys.
type Params map[string]any

type categoryEntry struct {
	Category    string
	SubCategory string
}

// Token table for category detection. When several tokens match, the
// longest token wins.
var categoryTokens = map[string]categoryEntry{
	"t-shirt": {"Clothing", "T-Shirts"},
	"tshirt":  {"Clothing", "T-Shirts"},
	"shirt":   {"Clothing", "Shirts"},
	"dress":   {"Clothing", "Dresses"},
	"jeans":   {"Clothing", "Jeans"},
	"kurta":   {"Clothing", "Kurtas"},
	"saree":   {"Clothing", "Sarees"},
	"jacket":  {"Clothing", "Jackets"},
	"hoodie":  {"Clothing", "Hoodies"},
	"sneaker": {"Footwear", "Sneakers"},
	"heels":   {"Footwear", "Heels"},
	"sandal":  {"Footwear", "Sandals"},
	"handbag": {"Accessories", "Handbags"},
}

// Priority-ordered: the first list entry found anywhere in the text
// wins, regardless of where the words appear.
var colorKeywords = []string{
	"black", "white", "red", "blue", "green", "yellow", "pink",
	"purple", "beige", "brown", "grey", "navy", "maroon", "olive",
}

var (
	// Longer alternatives first so xxl is not consumed as xl.
	sizeRe     = regexp.MustCompile(`(?i)\b(xxl|xl|xs|s|m|l)\b`)
	maxPriceRe = regexp.MustCompile(`(?i)\b(?:under|below|less than|budget|max)\b[^0-9]{0,20}([0-9][0-9,]*)`)
)

// Infer extracts category, color, size and max-price signals from free
// text. It is deterministic, independent of any model call, and never
// fails: a missing signal simply leaves its key out.
func Infer(text string) Params {
	params := Params{}
	lower := strings.ToLower(text)

	if entry, ok := matchCategory(lower); ok {
		params["category"] = entry.Category
		params["sub_category"] = entry.SubCategory
	}
	for _, color := range colorKeywords {
		if strings.Contains(lower, color) {
			params["color"] = color
			break
		}
	}
	if m := sizeRe.FindStringSubmatch(text); m != nil {
		params["size"] = strings.ToUpper(m[1])
	}
	if price, ok := matchMaxPrice(text); ok {
		params["max_price"] = price
	}

	return params
}

func matchCategory(lower string) (categoryEntry, bool) {
	var (
		best      string
		bestEntry categoryEntry
	)
	for token, entry := range categoryTokens {
		if !strings.Contains(lower, token) {
			continue
		}
		if len(token) > len(best) {
			best = token
			bestEntry = entry
		}
	}
	return bestEntry, best != ""
}

func matchMaxPrice(text string) (int, bool) {
	m := maxPriceRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	numeral := strings.ReplaceAll(m[1], ",", "")
	price, err := strconv.Atoi(numeral)
	if err != nil {
		return 0, false
	}
	return price, true
}
