package services

import (
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"vehicle-market/models"
	"vehicle-market/utils"
)

func sampleVehicles() []models.Vehicle {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	return []models.Vehicle{
		{ID: "1", Title: "BMW 320d", Make: "BMW", Category: models.CategoryCar, Price: 20000, CreatedAt: day(1), IsPromoted: true},
		{ID: "2", Title: "Audi A4", Make: "Audi", Category: models.CategoryCar, Price: 5000, CreatedAt: day(6)},
		{ID: "3", Title: "Honda CBR", Make: "Honda", Category: models.CategoryMotorcycle, Price: 12000, CreatedAt: day(3)},
		{ID: "4", Title: "Iveco Daily truck", Make: "Iveco", Category: models.CategoryTruck, Price: 30000, CreatedAt: day(4)},
		{ID: "5", Title: "Vehicle", Make: DefaultMake, Category: models.CategoryCar, Price: 0, CreatedAt: day(5)},
		{ID: "6", Title: "BMW X5", Make: "BMW", Category: models.CategoryCar, Price: 3000, CreatedAt: day(2)},
	}
}

func TestInsightCounts(t *testing.T) {
	svc := NewInsightService(utils.NewNopLogger())
	r := svc.Generate(sampleVehicles())
	if r.TotalVehicles != 6 {
		t.Errorf("TotalVehicles: got %d, want 6", r.TotalVehicles)
	}
	if r.PromotedVehicles != 1 {
		t.Errorf("PromotedVehicles: got %d, want 1", r.PromotedVehicles)
	}
}

func TestInsightPrices(t *testing.T) {
	svc := NewInsightService(utils.NewNopLogger())
	r := svc.Generate(sampleVehicles())
	wantAvg := 14000.0
	if r.AveragePrice != wantAvg {
		t.Errorf("AveragePrice: got %.2f, want %.2f", r.AveragePrice, wantAvg)
	}
	if r.MinPrice != 3000 {
		t.Errorf("MinPrice: got %.2f, want 3000", r.MinPrice)
	}
	if r.MaxPrice != 30000 {
		t.Errorf("MaxPrice: got %.2f, want 30000", r.MaxPrice)
	}
}

func TestInsightMostExpensive(t *testing.T) {
	svc := NewInsightService(utils.NewNopLogger())
	r := svc.Generate(sampleVehicles())
	if r.MostExpensive == nil {
		t.Fatal("MostExpensive should not be nil")
	}
	if r.MostExpensive.ID != "4" {
		t.Errorf("MostExpensive: got %q, want %q", r.MostExpensive.ID, "4")
	}
}

func TestInsightNewest(t *testing.T) {
	svc := NewInsightService(utils.NewNopLogger())
	r := svc.Generate(sampleVehicles())
	if len(r.Newest) != 5 {
		t.Fatalf("Newest: got %d, want 5", len(r.Newest))
	}
	want := []string{"2", "5", "4", "3", "6"}
	for i, v := range r.Newest {
		if v.ID != want[i] {
			t.Errorf("Newest[%d]: got %q, want %q", i, v.ID, want[i])
		}
	}
}

func TestInsightBreakdowns(t *testing.T) {
	svc := NewInsightService(utils.NewNopLogger())
	r := svc.Generate(sampleVehicles())
	if r.ByCategory[models.CategoryCar] != 4 {
		t.Errorf("ByCategory[car]: got %d, want 4", r.ByCategory[models.CategoryCar])
	}
	if r.ByMake["BMW"] != 2 {
		t.Errorf("ByMake[BMW]: got %d, want 2", r.ByMake["BMW"])
	}
	if _, ok := r.ByMake[DefaultMake]; ok {
		t.Errorf("ByMake should not count %q", DefaultMake)
	}
}

func TestInsightEmpty(t *testing.T) {
	svc := NewInsightService(utils.NewNopLogger())
	r := svc.Generate(nil)
	if r.TotalVehicles != 0 || r.MostExpensive != nil {
		t.Errorf("expected empty report, got %+v", r)
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{30000, "€30,000"},
		{999.6, "€1,000"},
		{0, "€0"},
		{1234567, "€1,234,567"},
		{-1500, "-€1,500"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.in); got != tt.want {
			t.Errorf("FormatPrice(%v) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatMileage(t *testing.T) {
	if got := FormatMileage(120000); got != "120,000 km" {
		t.Errorf("FormatMileage(120000) = %q", got)
	}
	if got := FormatMileage(-5); got != "0 km" {
		t.Errorf("FormatMileage(-5) = %q", got)
	}
}

func TestPrintNewestShowsMileage(t *testing.T) {
	vehicles := sampleVehicles()
	vehicles[1].Mileage = 85000

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	stdout := os.Stdout
	os.Stdout = w
	svc := NewInsightService(utils.NewNopLogger())
	svc.Print(svc.Generate(vehicles))
	os.Stdout = stdout
	_ = w.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.Contains(line, "Audi A4") {
			if !strings.Contains(line, "85,000 km") {
				t.Errorf("newest line %q lacks mileage", line)
			}
			return
		}
	}
	t.Error("Audi A4 missing from newest listings")
}
