package memstore

import (
	"github.com/shopspring/decimal"
	"github.com/storefrontlab/storefront-backend/pkg/db/models"
)

// DefaultCatalog returns the built-in product snapshot the fallback store is
// seeded with, so the shop keeps rendering a catalog while the database is
// down. Mirrors the seed migration.
func DefaultCatalog() []models.Product {
	return []models.Product{
		seedProduct(1, "Intel Core i9-13900K", "559.90", "Processors"),
		seedProduct(2, "AMD Ryzen 9 7950X", "629.90", "Processors"),
		seedProduct(3, "NVIDIA GeForce RTX 4090", "1599.90", "Graphics Cards"),
		seedProduct(4, "AMD Radeon RX 7900 XTX", "899.90", "Graphics Cards"),
		seedProduct(5, "ASUS ROG STRIX Z790-E", "429.90", "Motherboards"),
		seedProduct(6, "MSI MAG B650 TOMAHAWK", "289.90", "Motherboards"),
		seedProduct(7, "Corsair Vengeance 32GB DDR5", "149.90", "Memory"),
		seedProduct(8, "Samsung 990 PRO 2TB", "189.90", "Storage"),
	}
}

func seedProduct(id int64, name, price, category string) models.Product {
	return models.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Category: &category,
	}
}
