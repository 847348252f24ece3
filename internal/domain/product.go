package domain

import "strings"

// CategoryAll selects every product.
const CategoryAll = "all"

// Product is a catalog entry as served by GET /api/produtos.
type Product struct {
	ID          int    `json:"id"`
	Name        string `json:"nome"`
	Price       Price  `json:"preco"`
	Stock       int    `json:"estoque"`
	Category    string `json:"categoria"`
	Image       string `json:"imagem,omitempty"`
	Badge       string `json:"badge,omitempty"`
	Description string `json:"descricao,omitempty"`
	Ingredients string `json:"ingredientes,omitempty"`
}

// SoldOut reports whether the product has no stock left.
func (p Product) SoldOut() bool {
	return p.Stock <= 0
}

// InCategory matches category as a case-insensitive substring of the
// product's category. Empty and "all" match everything.
func (p Product) InCategory(category string) bool {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" || category == CategoryAll {
		return true
	}
	return strings.Contains(strings.ToLower(p.Category), category)
}
