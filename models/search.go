package models

// SearchFilters is one immutable set of filter dimensions. An empty string or
// a nil pointer means the dimension is not constrained.
type SearchFilters struct {
	Category     Category     `json:"category,omitempty"`
	Make         string       `json:"make,omitempty"`
	Model        string       `json:"model,omitempty"`
	MinPrice     *float64     `json:"minPrice,omitempty"`
	MaxPrice     *float64     `json:"maxPrice,omitempty"`
	MinYear      *int         `json:"minYear,omitempty"`
	MaxYear      *int         `json:"maxYear,omitempty"`
	MinMileage   *int         `json:"minMileage,omitempty"`
	MaxMileage   *int         `json:"maxMileage,omitempty"`
	Condition    Condition    `json:"condition,omitempty"`
	FuelType     FuelType     `json:"fuelType,omitempty"`
	Transmission Transmission `json:"transmission,omitempty"`
	CountryID    *int         `json:"countryId,omitempty"`
	CityID       *int         `json:"cityId,omitempty"`
}

// SortKey selects the (field, direction) pair used to order results.
type SortKey string

const (
	SortNewest      SortKey = "date-desc"
	SortPriceAsc    SortKey = "price-asc"
	SortPriceDesc   SortKey = "price-desc"
	SortYearAsc     SortKey = "year-asc"
	SortYearDesc    SortKey = "year-desc"
	SortMileageAsc  SortKey = "mileage-asc"
	SortMileageDesc SortKey = "mileage-desc"
)

// SortKeys lists the supported keys, default first.
var SortKeys = []SortKey{SortNewest, SortPriceAsc, SortPriceDesc, SortYearDesc, SortYearAsc, SortMileageAsc, SortMileageDesc}

func (k SortKey) Valid() bool {
	for _, s := range SortKeys {
		if s == k {
			return true
		}
	}
	return false
}

// FilterSummary backs the "N filters active" badge.
type FilterSummary struct {
	Count         int      `json:"count"`
	ActiveFilters []string `json:"active"`
}
