package services

import (
	"math"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/athebyme/catalog-sync/internal/domain/models"
)

// Flatten разворачивает товары в строки, по одной на вариант.
// Порядок строк совпадает с порядком товаров и вариантов; товары без вариантов строк не дают
func Flatten(products []models.RawProduct) ([]models.FlatRow, error) {
	rows := make([]models.FlatRow, 0, len(products))

	for _, p := range products {
		for _, v := range p.Variants.Nodes() {
			price, err := parsePrice(p.ID, v)
			if err != nil {
				return nil, err
			}

			rows = append(rows, models.FlatRow{
				Title:             p.Title,
				Handle:            p.Handle,
				Description:       p.Description,
				ProductID:         p.ID,
				VariantID:         v.ID,
				Price:             price,
				SKU:               v.SKU,
				AvailableForSale:  v.AvailableForSale,
				InventoryQuantity: v.InventoryQuantity,
				VariantTitle:      v.Title,
				Image:             variantImage(v),
			})
		}
	}

	return rows, nil
}

// ZeroVariantProducts количество товаров, не давших ни одной строки
func ZeroVariantProducts(products []models.RawProduct) int {
	n := 0
	for _, p := range products {
		if len(p.Variants.Edges) == 0 {
			n++
		}
	}
	return n
}

func parsePrice(productID string, v models.Variant) (float64, error) {
	d, err := decimal.NewFromString(v.Price)
	if err != nil {
		return 0, &models.MalformedPriceError{
			ProductID: productID,
			VariantID: v.ID,
			Value:     v.Price,
			Err:       err,
		}
	}

	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, &models.MalformedPriceError{
			ProductID: productID,
			VariantID: v.ID,
			Value:     v.Price,
			Err:       errors.New("price out of float64 range"),
		}
	}
	return f, nil
}

func variantImage(v models.Variant) *string {
	if v.Image == nil || v.Image.URL == "" {
		return nil
	}
	url := v.Image.URL
	return &url
}
