package chart

import "github.com/kailas-cloud/catalogdash/internal/domain/summary"

// Kind is the chart widget a series is shaped for.
type Kind string

// Chart kinds.
const (
	Pie      Kind = "pie"
	Bar      Kind = "bar"
	Line     Kind = "line"
	Doughnut Kind = "doughnut"
)

// Palette is cycled by index over the ordered labels of every series.
var Palette = []string{"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0", "#9966FF"}

const sliceBorder = "rgba(0, 0, 0, 0.1)"

// Series is one chart-ready dataset.
type Series struct {
	Kind        Kind      `json:"kind"`
	Title       string    `json:"title"`
	Label       string    `json:"label"`
	Labels      []string  `json:"labels"`
	Values      []float64 `json:"values"`
	Colors      []string  `json:"colors"`
	BorderColor string    `json:"border_color"`
	BorderWidth int       `json:"border_width"`
	Fill        bool      `json:"fill"`
}

// SeriesSet holds the four projections of a Summary.
type SeriesSet struct {
	CategoryDistribution Series `json:"category_distribution"`
	PriceDistribution    Series `json:"price_distribution"`
	PriceTrend           Series `json:"price_trend"`
	StockDistribution    Series `json:"stock_distribution"`
}

// FromSummary maps a Summary into chart series without recomputing any statistic.
func FromSummary(s summary.Summary) SeriesSet {
	priceLabels := make([]string, len(s.PriceSeries))
	priceValues := make([]float64, len(s.PriceSeries))
	for i, p := range s.PriceSeries {
		priceLabels[i] = p.Label
		priceValues[i] = p.Price
	}

	return SeriesSet{
		CategoryDistribution: Series{
			Kind:        Pie,
			Title:       "Product Categories",
			Label:       "Products by Category",
			Labels:      cloneLabels(s.Categories),
			Values:      valuesFor(s.Categories, s.CategoryCounts),
			Colors:      Colors(len(s.Categories)),
			BorderColor: sliceBorder,
			BorderWidth: 1,
		},
		PriceDistribution: Series{
			Kind:        Bar,
			Title:       "Product Prices",
			Label:       "Price Distribution",
			Labels:      priceLabels,
			Values:      priceValues,
			Colors:      Colors(len(priceLabels)),
			BorderColor: Palette[1],
			BorderWidth: 1,
		},
		PriceTrend: Series{
			Kind:        Line,
			Title:       "Price Trends",
			Label:       "Price Trends",
			Labels:      cloneLabels(priceLabels),
			Values:      cloneValues(priceValues),
			Colors:      Colors(len(priceLabels)),
			BorderColor: Palette[0],
			BorderWidth: 2,
			Fill:        true,
		},
		StockDistribution: Series{
			Kind:        Doughnut,
			Title:       "Stock Distribution",
			Label:       "Stock by Category",
			Labels:      cloneLabels(s.Categories),
			Values:      valuesFor(s.Categories, s.StockByCategory),
			Colors:      Colors(len(s.Categories)),
			BorderColor: sliceBorder,
			BorderWidth: 1,
		},
	}
}

// Colors assigns Palette[i % len(Palette)] to each of n ordered keys.
// Every call starts from index 0, so series over the same key order share hues.
func Colors(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = Palette[i%len(Palette)]
	}
	return out
}

func valuesFor(keys []string, counts map[string]int) []float64 {
	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = float64(counts[k])
	}
	return out
}

func cloneLabels(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneValues(in []float64) []float64 {
	out := make([]float64, len(in))
	copy(out, in)
	return out
}
