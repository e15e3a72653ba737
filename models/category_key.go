package models

import "strings"

// CategoryKey is the normalized form used to match category names across
// transactions, budgets and the category registry.
func CategoryKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// CleanCategoryName trims the display name without changing its case.
func CleanCategoryName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// SameCategory reports whether two names refer to the same category.
func SameCategory(a, b string) bool {
	return CategoryKey(a) == CategoryKey(b)
}
