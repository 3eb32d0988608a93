package calculator

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/budgetbuddy/backend/internal/models"
)

// defaultCategoryColor is used for categories without a fixed colour.
const defaultCategoryColor = "#6b7280"

// categoryColors is the single category→colour mapping served to the UI.
var categoryColors = map[string]string{
	"Canteen":   "#f97316",
	"Transport": "#3b82f6",
	"Outings":   "#a855f7",
	"Misc":      "#22c55e",
	"Rent":      "#6366f1",
	"Books":     "#eab308",
	"Gym":       "#ef4444",
	"Medicine":  "#ec4899",
}

// CategoryTotal is one row of the category breakdown.
type CategoryTotal struct {
	Category         string
	Amount           int64
	Percentage       int
	TransactionCount int
	Color            string
}

// NormalizeCategory trims the name and upper-cases its first letter.
func NormalizeCategory(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(category)
	if first == utf8.RuneError {
		return category
	}
	return string(unicode.ToUpper(first)) + category[size:]
}

// CategoryColor returns the display colour of a category.
func CategoryColor(category string) string {
	if c, ok := categoryColors[NormalizeCategory(category)]; ok {
		return c
	}
	return defaultCategoryColor
}

// CategoryBreakdown groups expenses by category, largest total first.
// Percentages are rounded to the nearest integer and may not add up to 100.
func CategoryBreakdown(expenses []models.Expense) ([]CategoryTotal, int64) {
	byCategory := make(map[string]*CategoryTotal)
	var total int64

	for _, e := range expenses {
		name := NormalizeCategory(e.Category)
		ct, ok := byCategory[name]
		if !ok {
			ct = &CategoryTotal{Category: name, Color: CategoryColor(name)}
			byCategory[name] = ct
		}
		ct.Amount += e.Amount
		ct.TransactionCount++
		total += e.Amount
	}

	totals := make([]CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		if total > 0 {
			ct.Percentage = int((ct.Amount*100 + total/2) / total)
		}
		totals = append(totals, *ct)
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Amount != totals[j].Amount {
			return totals[i].Amount > totals[j].Amount
		}
		return totals[i].Category < totals[j].Category
	})

	return totals, total
}
