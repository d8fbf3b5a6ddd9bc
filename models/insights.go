package models

// InsightReport holds the computed analytics over a fetched catalog.
type InsightReport struct {
	TotalVehicles    int
	PromotedVehicles int
	AveragePrice     float64
	MinPrice         float64
	MaxPrice         float64
	MostExpensive    *Vehicle
	Newest           []*Vehicle
	ByCategory       map[Category]int
	ByMake           map[string]int
}
