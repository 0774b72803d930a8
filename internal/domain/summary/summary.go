package summary

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kailas-cloud/catalogdash/internal/domain"
	"github.com/kailas-cloud/catalogdash/internal/domain/product"
)

// Uncategorized is the reserved category key for records without a category.
const Uncategorized = "uncategorized"

// Shape error reasons.
const (
	ReasonMissingOrInvalid = "missing or not a valid number, treated as 0"
	ReasonNegativeStock    = "negative stock quantity, treated as 0"
	ReasonMissingCategory  = "missing category, grouped under " + Uncategorized
)

// PricePoint is one (label, price) pair of the price series.
type PricePoint struct {
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

// PriceStats describes the distribution of coerced prices.
type PriceStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// Summary is the reduced statistical view of one record set.
// Categories lists category keys in first-seen order.
type Summary struct {
	TotalProducts        int                     `json:"total_products"`
	TotalStock           float64                 `json:"total_stock"`
	Categories           []string                `json:"categories"`
	CategoryCounts       map[string]int          `json:"category_counts"`
	StockByCategory      map[string]int          `json:"stock_by_category"`
	StockUnitsByCategory map[string]float64      `json:"stock_units_by_category"`
	PriceSeries          []PricePoint            `json:"price_series"`
	Price                PriceStats              `json:"price"`
	ShapeErrors          []domain.DataShapeError `json:"shape_errors"`
}

// Aggregate reduces records into a Summary in a single pass over the input.
// Missing or invalid numbers count as 0, negative stock is clamped to 0 and records
// without a category are grouped under Uncategorized. Every coercion is recorded in
// ShapeErrors; no record is dropped.
func Aggregate(records []product.Record) Summary {
	s := Summary{
		Categories:           []string{},
		CategoryCounts:       make(map[string]int),
		StockByCategory:      make(map[string]int),
		StockUnitsByCategory: make(map[string]float64),
		PriceSeries:          make([]PricePoint, 0, len(records)),
		ShapeErrors:          []domain.DataShapeError{},
	}
	prices := make([]float64, 0, len(records))

	for i := range records {
		r := &records[i]

		category := r.Category
		if category == "" {
			category = Uncategorized
			s.shapeError(r.ID, product.FieldCategory, ReasonMissingCategory)
		}

		stock := r.StockQuantity.Or(0)
		if !r.StockQuantity.Valid {
			s.shapeError(r.ID, product.FieldStockQuantity, ReasonMissingOrInvalid)
		} else if stock < 0 {
			stock = 0
			s.shapeError(r.ID, product.FieldStockQuantity, ReasonNegativeStock)
		}

		price := r.Price.Or(0)
		if !r.Price.Valid {
			s.shapeError(r.ID, product.FieldPrice, ReasonMissingOrInvalid)
		}

		if _, seen := s.CategoryCounts[category]; !seen {
			s.Categories = append(s.Categories, category)
		}
		s.CategoryCounts[category]++
		s.StockByCategory[category]++
		s.StockUnitsByCategory[category] += stock
		s.TotalStock += stock
		s.PriceSeries = append(s.PriceSeries, PricePoint{Label: r.Name, Price: price})
		prices = append(prices, price)
	}

	s.TotalProducts = len(records)
	s.Price = priceStats(prices)
	return s
}

func (s *Summary) shapeError(id, field, reason string) {
	s.ShapeErrors = append(s.ShapeErrors, domain.DataShapeError{RecordID: id, Field: field, Reason: reason})
}

func priceStats(prices []float64) PriceStats {
	if len(prices) == 0 {
		return PriceStats{}
	}
	mean, std := stat.MeanStdDev(prices, nil)
	if len(prices) == 1 {
		std = 0
	}
	return PriceStats{
		Min:    floats.Min(prices),
		Max:    floats.Max(prices),
		Mean:   mean,
		StdDev: std,
	}
}
