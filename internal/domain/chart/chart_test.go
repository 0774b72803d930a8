package chart

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/kailas-cloud/catalogdash/internal/domain/product"
	"github.com/kailas-cloud/catalogdash/internal/domain/summary"
)

func sampleSummary() summary.Summary {
	return summary.Aggregate([]product.Record{
		{ID: "1", Name: "Phone", Category: "Electronics", Price: product.Num(500), StockQuantity: product.Num(10)},
		{ID: "2", Name: "Shirt", Category: "Apparel", Price: product.Num(20), StockQuantity: product.Num(5)},
		{ID: "3", Name: "TV", Category: "Electronics", Price: product.Num(800), StockQuantity: product.Num(2)},
		{ID: "4", Name: "Pan", Category: "Kitchen", Price: product.Num(30), StockQuantity: product.Num(1)},
	})
}

func TestFromSummary_CategoryDistribution(t *testing.T) {
	set := FromSummary(sampleSummary())
	s := set.CategoryDistribution

	if s.Kind != Pie {
		t.Errorf("Kind = %q", s.Kind)
	}
	if !reflect.DeepEqual(s.Labels, []string{"Electronics", "Apparel", "Kitchen"}) {
		t.Errorf("Labels = %v (want first-seen order)", s.Labels)
	}
	if !reflect.DeepEqual(s.Values, []float64{2, 1, 1}) {
		t.Errorf("Values = %v", s.Values)
	}
	if !reflect.DeepEqual(s.Colors, []string{"#FF6384", "#36A2EB", "#FFCE56"}) {
		t.Errorf("Colors = %v", s.Colors)
	}
}

func TestFromSummary_PriceSeries(t *testing.T) {
	set := FromSummary(sampleSummary())

	wantLabels := []string{"Phone", "Shirt", "TV", "Pan"}
	wantValues := []float64{500, 20, 800, 30}

	for name, s := range map[string]Series{"bar": set.PriceDistribution, "line": set.PriceTrend} {
		if !reflect.DeepEqual(s.Labels, wantLabels) {
			t.Errorf("%s Labels = %v", name, s.Labels)
		}
		if !reflect.DeepEqual(s.Values, wantValues) {
			t.Errorf("%s Values = %v", name, s.Values)
		}
	}
	if set.PriceDistribution.Kind != Bar || set.PriceTrend.Kind != Line {
		t.Errorf("kinds = %q / %q", set.PriceDistribution.Kind, set.PriceTrend.Kind)
	}
	if !set.PriceTrend.Fill || set.PriceTrend.BorderWidth != 2 {
		t.Errorf("line styling = %+v", set.PriceTrend)
	}
}

func TestFromSummary_StockDistributionMatchesCategoryHues(t *testing.T) {
	set := FromSummary(sampleSummary())

	if set.StockDistribution.Kind != Doughnut {
		t.Errorf("Kind = %q", set.StockDistribution.Kind)
	}
	if !reflect.DeepEqual(set.StockDistribution.Labels, set.CategoryDistribution.Labels) {
		t.Errorf("labels differ: %v vs %v", set.StockDistribution.Labels, set.CategoryDistribution.Labels)
	}
	if !reflect.DeepEqual(set.StockDistribution.Colors, set.CategoryDistribution.Colors) {
		t.Errorf("colors differ: %v vs %v", set.StockDistribution.Colors, set.CategoryDistribution.Colors)
	}
	if !reflect.DeepEqual(set.StockDistribution.Values, []float64{2, 1, 1}) {
		t.Errorf("Values = %v", set.StockDistribution.Values)
	}
}

func TestFromSummary_Empty(t *testing.T) {
	set := FromSummary(summary.Aggregate(nil))

	for _, s := range []Series{set.CategoryDistribution, set.PriceDistribution, set.PriceTrend, set.StockDistribution} {
		if s.Labels == nil || s.Values == nil || s.Colors == nil {
			t.Errorf("%s: expected non-nil empty slices", s.Kind)
		}
		if len(s.Labels) != 0 || len(s.Values) != 0 || len(s.Colors) != 0 {
			t.Errorf("%s: expected empty series, got %+v", s.Kind, s)
		}
	}
}

func TestFromSummary_EmptyPriceTrendEncodesEmptyArray(t *testing.T) {
	set := FromSummary(summary.Aggregate(nil))

	raw, err := json.Marshal(set.PriceTrend)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"values":[]`) {
		t.Errorf("price trend = %s, want empty values array", raw)
	}
	if strings.Contains(string(raw), "null") {
		t.Errorf("price trend = %s, want no null fields", raw)
	}
}

func TestFromSummary_DoesNotAliasSummary(t *testing.T) {
	sum := sampleSummary()
	set := FromSummary(sum)

	set.CategoryDistribution.Labels[0] = "changed"
	set.PriceTrend.Values[0] = -1

	if sum.Categories[0] != "Electronics" {
		t.Error("category labels alias the summary")
	}
	if set.PriceDistribution.Values[0] != 500 {
		t.Error("price trend aliases price distribution")
	}
}

func TestColors_CyclesPalette(t *testing.T) {
	got := Colors(7)
	want := []string{"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0", "#9966FF", "#FF6384", "#36A2EB"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Colors(7) = %v", got)
	}
	if len(Colors(0)) != 0 {
		t.Error("Colors(0) should be empty")
	}
}
