// Package catalog provides pure, deterministic refinement of recipe
// summaries: a closed set of category filters composed with free-text
// search. Both stages are side-effect free and never reorder their input.
package catalog

import (
	"encoding/json"
	"strings"
)

// FilterOption is one of the closed set of catalog filters.
type FilterOption string

const (
	FilterAll          FilterOption = "all"
	FilterDinner       FilterOption = "dinner"
	FilterQuickAndEasy FilterOption = "quick-and-easy"
	FilterVegan        FilterOption = "vegan"
	// FilterMore is a placeholder for a richer filter UI that does not
	// exist yet. It is an identity transform.
	FilterMore FilterOption = "more-filters"
)

// Difficulty levels carried as display hints.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// CategoryDinner is the category matched by FilterDinner.
const CategoryDinner = "Dinner"

// Summary is the display projection of a recipe used by discovery
// surfaces: the title plus whatever display hints the opaque content
// happened to carry.
type Summary struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	ImageURL        string   `json:"imageUrl"`
	AuthorName      string   `json:"authorName,omitempty"`
	CookTimeMinutes int      `json:"cookTime,omitempty"`
	Calories        int      `json:"calories,omitempty"`
	Difficulty      string   `json:"difficulty,omitempty"`
	Category        string   `json:"category,omitempty"`
	Tags            []string `json:"tags,omitempty"`
}

// displayHints is the subset of recipe content this package is allowed
// to look at. Everything else in the payload stays opaque.
type displayHints struct {
	CookTimeMinutes int      `json:"cookTime"`
	Calories        int      `json:"calories"`
	Difficulty      string   `json:"difficulty"`
	Category        string   `json:"category"`
	Tags            []string `json:"tags"`
}

// DecodeHints tolerantly extracts display hints from an opaque content
// payload. Content with no recognizable hints yields the zero value;
// decoding never fails.
func DecodeHints(content json.RawMessage) (cookTime, calories int, difficulty, category string, tags []string) {
	if len(content) == 0 {
		return
	}
	var hints displayHints
	if err := json.Unmarshal(content, &hints); err != nil {
		return
	}
	return hints.CookTimeMinutes, hints.Calories, hints.Difficulty, hints.Category, hints.Tags
}

// Filter applies one category filter. Unknown options behave as FilterAll.
func Filter(items []Summary, opt FilterOption) []Summary {
	switch opt {
	case FilterDinner:
		return keep(items, func(s Summary) bool {
			return s.Category == CategoryDinner
		})

	case FilterQuickAndEasy:
		// Both conditions required; 30 minutes is inclusive.
		return keep(items, func(s Summary) bool {
			return s.CookTimeMinutes <= 30 && s.Difficulty == DifficultyEasy
		})

	case FilterVegan:
		return keep(items, func(s Summary) bool {
			for _, tag := range s.Tags {
				if strings.Contains(strings.ToLower(tag), "vegan") {
					return true
				}
			}
			return false
		})

	case FilterAll, FilterMore:
		return items

	default:
		return items
	}
}

// Search keeps items whose title, any tag, or category contains the
// trimmed, lowercased query as a substring. A blank query is identity.
func Search(items []Summary, query string) []Summary {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}

	return keep(items, func(s Summary) bool {
		if strings.Contains(strings.ToLower(s.Title), q) {
			return true
		}
		for _, tag := range s.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				return true
			}
		}
		return strings.Contains(strings.ToLower(s.Category), q)
	})
}

// Refine composes the two stages, filter first. The order is preserved
// for consistency with the product's observed behavior even though the
// stages commute.
func Refine(items []Summary, opt FilterOption, query string) []Summary {
	return Search(Filter(items, opt), query)
}

func keep(items []Summary, pred func(Summary) bool) []Summary {
	out := make([]Summary, 0, len(items))
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}
