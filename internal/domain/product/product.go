package product

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Source field names as stored in the search index.
const (
	FieldName          = "name"
	FieldPrice         = "price"
	FieldCategory      = "category"
	FieldDescription   = "description"
	FieldBrand         = "brand"
	FieldStockQuantity = "stock_quantity"

	fieldStockQuantityAlias = "stockQuantity"
)

// Number is a numeric field that may be missing or unparsable.
type Number struct {
	Value float64
	Valid bool
}

// Num returns a valid Number.
func Num(v float64) Number { return Number{Value: v, Valid: true} }

// Or returns the value, or def if the number is invalid.
func (n Number) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Value
}

// MarshalJSON writes null for an invalid number.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON applies the same coercion as FromSource; it never fails.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = numberField(data)
	return nil
}

// Record is a single catalog product as returned by the search backend.
// Records are read-only after decode.
type Record struct {
	ID            string `json:"-"`
	Name          string `json:"name"`
	Price         Number `json:"price"`
	Category      string `json:"category,omitempty"`
	Description   string `json:"description"`
	Brand         string `json:"brand"`
	StockQuantity Number `json:"stock_quantity"`
}

// FromSource decodes a hit _source payload. Fields outside the product field set are
// ignored. A payload that is not a JSON object yields a record with every field absent.
func FromSource(id string, raw json.RawMessage) Record {
	rec := Record{ID: id}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return rec
	}

	rec.Name = stringField(fields[FieldName])
	rec.Category = stringField(fields[FieldCategory])
	rec.Description = stringField(fields[FieldDescription])
	rec.Brand = stringField(fields[FieldBrand])
	rec.Price = numberField(fields[FieldPrice])

	stock, ok := fields[FieldStockQuantity]
	if !ok {
		stock = fields[fieldStockQuantityAlias]
	}
	rec.StockQuantity = numberField(stock)

	return rec
}

func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// numberField accepts JSON numbers and strings holding a finite decimal number.
func numberField(raw json.RawMessage) Number {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Number{}
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return Number{}
		}
		text = strings.TrimSpace(text)
	} else {
		text = string(raw)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{}
	}
	return Num(v)
}
