package storefront

import (
	"strings"

	"mobilehub/internal/models"
)

// FilterByCategory keeps the products of category. An empty category or
// "all" keeps everything.
func FilterByCategory(products []models.Product, category string) []models.Product {
	if category == "" || strings.EqualFold(category, "all") {
		return products
	}
	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// ValidCategories drops categories without a name or description.
func ValidCategories(categories []models.Category) []models.Category {
	valid := make([]models.Category, 0, len(categories))
	for _, c := range categories {
		if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Description) == "" {
			continue
		}
		valid = append(valid, c)
	}
	return valid
}
