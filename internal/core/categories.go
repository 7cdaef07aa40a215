package core

import "slices"

// OthersColor is used for categories without a dedicated color.
const OthersColor = "#94A3B8"

var categories = map[TransactionType][]string{
	Expense: {"Food", "Transport", "Shopping", "Rent", "Bills", "Health", "Entertainment", "Education", "Others"},
	Income:  {"Salary", "Freelance", "Investment", "Gift", "Refund", "Others"},
}

var categoryColors = map[string]string{
	"Food":          "#F87171",
	"Transport":     "#60A5FA",
	"Shopping":      "#F472B6",
	"Rent":          "#A78BFA",
	"Bills":         "#FBBF24",
	"Health":        "#34D399",
	"Entertainment": "#818CF8",
	"Salary":        "#10B981",
	"Freelance":     "#3B82F6",
	"Investment":    "#6366F1",
	"Others":        OthersColor,
}

// Categories returns the allowed category names for a transaction type, in
// display order. The returned slice is a copy.
func Categories(t TransactionType) []string {
	return slices.Clone(categories[t])
}

func IsValidCategory(t TransactionType, name string) bool {
	return slices.Contains(categories[t], name)
}

// CategoryColor returns the hex display color of a category.
func CategoryColor(name string) string {
	if c, ok := categoryColors[name]; ok {
		return c
	}
	return OthersColor
}
