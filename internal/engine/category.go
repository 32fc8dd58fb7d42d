// Package engine contains the four insight engines: category classification,
// anomaly detection, spending prediction and budget alerting. Every engine is
// a pure function over caller-supplied records plus an immutable configuration
// table, so a single instance is safe for concurrent use.
package engine

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"finsight/internal/core"
)

// CategoryOther is the catch-all category. It carries no keywords and is
// never scored directly.
const CategoryOther = "other"

type categoryKeywords struct {
	name     string
	keywords []string
}

// keywordTable maps each category to the keywords that vote for it.
// Declaration order is significant: score ties keep this order.
var keywordTable = []categoryKeywords{
	{name: "food", keywords: []string{
		"cơm", "phở", "bún", "restaurant", "cafe", "coffee", "ăn", "uống",
		"food", "lunch", "dinner", "breakfast", "trà", "tea", "bánh", "mì",
		"noodle", "pizza", "burger", "fastfood", "quán", "nhà hàng",
	}},
	{name: "transport", keywords: []string{
		"grab", "xe", "taxi", "bus", "xăng", "gas", "parking", "vé",
		"ticket", "gojek", "be", "uber", "xe ôm", "xe buýt", "tàu",
		"train", "máy bay", "flight", "vietjet", "vietnam airlines",
	}},
	{name: "shopping", keywords: []string{
		"mua", "shop", "mall", "siêu thị", "market", "store", "quần áo",
		"clothes", "giày", "shoes", "vinmart", "coopmart", "lotte", "aeon",
		"shopee", "lazada", "tiki", "sendo",
	}},
	{name: "entertainment", keywords: []string{
		"phim", "movie", "game", "concert", "bar", "club", "vui chơi",
		"giải trí", "cinema", "cgv", "lotte cinema", "galaxy", "karaoke",
		"spa", "massage",
	}},
	{name: "health", keywords: []string{
		"bệnh viện", "hospital", "thuốc", "medicine", "doctor", "khám",
		"phòng khám", "clinic", "dược", "pharmacy", "y tế", "medical",
		"nha khoa", "dental",
	}},
	{name: "education", keywords: []string{
		"học", "school", "course", "book", "sách", "tuition", "học phí",
		"trường", "đại học", "university", "khóa học", "training", "giáo dục",
	}},
	{name: "utilities", keywords: []string{
		"điện", "nước", "internet", "phone", "electric", "water", "bill",
		"hóa đơn", "evn", "vnpt", "viettel", "fpt", "mobifone", "vinaphone",
	}},
}

// Classifier assigns spending categories to free-text descriptions using
// keyword-hit counting over a fixed Vietnamese/English keyword table.
type Classifier struct {
	table    []categoryKeywords // keywords pre-normalized
	fallback []core.CategorySuggestion
}

// NewClassifier builds a classifier with the keyword table normalized once
// up front.
func NewClassifier() *Classifier {
	table := make([]categoryKeywords, len(keywordTable))
	for i, entry := range keywordTable {
		normalized := make([]string, len(entry.keywords))
		for j, kw := range entry.keywords {
			normalized[j] = normalizeText(kw)
		}
		table[i] = categoryKeywords{name: entry.name, keywords: normalized}
	}
	return &Classifier{
		table: table,
		fallback: []core.CategorySuggestion{
			{Category: CategoryOther, Confidence: 0.5},
			{Category: "shopping", Confidence: 0.3},
			{Category: "food", Confidence: 0.2},
		},
	}
}

// Classify scores the description against every category and returns the
// best match with up to three ranked alternatives. Each keyword found as a
// substring of the normalized description counts one point; confidence is
// min(score*0.3, 0.95). With no hits at all the result is "other" with a
// fixed suggestion list.
//
// The amount parameter is accepted for interface stability but is not used
// by the current scoring rules.
func (c *Classifier) Classify(description string, amount float64) core.CategoryResult {
	_ = amount

	normalized := normalizeText(description)

	scored := make([]core.CategorySuggestion, 0, len(c.table))
	for _, entry := range c.table {
		score := 0
		for _, kw := range entry.keywords {
			if strings.Contains(normalized, kw) {
				score++
			}
		}
		if score == 0 {
			continue
		}
		confidence := float64(score) * 0.3
		if confidence > 0.95 {
			confidence = 0.95
		}
		scored = append(scored, core.CategorySuggestion{Category: entry.name, Confidence: confidence})
	}

	if len(scored) == 0 {
		return core.CategoryResult{
			Category:            CategoryOther,
			Confidence:          0.5,
			SuggestedCategories: append([]core.CategorySuggestion(nil), c.fallback...),
		}
	}

	// Stable sort keeps table declaration order on equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Confidence > scored[j].Confidence
	})

	suggested := scored
	if len(suggested) > 3 {
		suggested = suggested[:3]
	}
	return core.CategoryResult{
		Category:            scored[0].Category,
		Confidence:          scored[0].Confidence,
		SuggestedCategories: suggested,
	}
}

// stripMarks removes combining diacritical marks after NFD decomposition.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeText lowercases, strips Vietnamese diacritics, maps đ to d and
// trims surrounding whitespace. The mapping is locale-independent so the
// same description normalizes identically on every host.
func normalizeText(s string) string {
	s = strings.ToLower(s)
	if stripped, _, err := transform.String(stripMarks, s); err == nil {
		s = stripped
	}
	// U+0111 has no combining mark to strip, map it by hand.
	s = strings.ReplaceAll(s, "đ", "d")
	return strings.TrimSpace(s)
}
