package models

import "time"

// Category is the coarse vehicle class used by the category tabs.
type Category string

const (
	CategoryCar          Category = "car"
	CategoryMotorcycle   Category = "motorcycle"
	CategoryTruck        Category = "truck"
	CategoryLargeVehicle Category = "large-vehicle"
)

// Categories lists every Category in display order.
var Categories = []Category{CategoryCar, CategoryMotorcycle, CategoryTruck, CategoryLargeVehicle}

func (c Category) Valid() bool {
	switch c {
	case CategoryCar, CategoryMotorcycle, CategoryTruck, CategoryLargeVehicle:
		return true
	}
	return false
}

// Condition of the vehicle as advertised.
type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionUsed    Condition = "used"
	ConditionDamaged Condition = "damaged"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionUsed, ConditionDamaged:
		return true
	}
	return false
}

type FuelType string

const (
	FuelGasoline FuelType = "gasoline"
	FuelDiesel   FuelType = "diesel"
	FuelElectric FuelType = "electric"
	FuelHybrid   FuelType = "hybrid"
	FuelLPG      FuelType = "lpg"
	FuelCNG      FuelType = "cng"
)

func (f FuelType) Valid() bool {
	switch f {
	case FuelGasoline, FuelDiesel, FuelElectric, FuelHybrid, FuelLPG, FuelCNG:
		return true
	}
	return false
}

type Transmission string

const (
	TransmissionManual    Transmission = "manual"
	TransmissionAutomatic Transmission = "automatic"
	TransmissionCVT       Transmission = "cvt"
)

func (t Transmission) Valid() bool {
	switch t {
	case TransmissionManual, TransmissionAutomatic, TransmissionCVT:
		return true
	}
	return false
}

// Seller is the denormalized seller summary carried by value on every vehicle.
type Seller struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Avatar       string  `json:"avatar,omitempty"`
	Rating       float64 `json:"rating"`
	ReviewCount  int     `json:"reviewCount"`
	IsVerified   bool    `json:"isVerified"`
	Location     string  `json:"location"`
	MemberSince  string  `json:"memberSince"`
	ResponseTime string  `json:"responseTime,omitempty"`
	Phone        string  `json:"phone,omitempty"`
}

// Vehicle is the canonical, fully defaulted listing record.
type Vehicle struct {
	ID           string       `json:"id"`
	SellerID     string       `json:"sellerId"`
	Seller       Seller       `json:"seller"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Category     Category     `json:"category"`
	Make         string       `json:"make"`
	Model        string       `json:"model"`
	Year         int          `json:"year"`
	Price        float64      `json:"price"`
	Currency     string       `json:"currency"`
	Condition    Condition    `json:"condition"`
	Mileage      int          `json:"mileage"`
	FuelType     FuelType     `json:"fuelType"`
	Transmission Transmission `json:"transmission"`
	Location     string       `json:"location"`
	Address      string       `json:"address,omitempty"`
	CountryID    *int         `json:"countryId,omitempty"`
	CityID       *int         `json:"cityId,omitempty"`
	Images       []string     `json:"images"`
	Features     []string     `json:"features"`
	IsPromoted   bool         `json:"isPromoted"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	Views        int          `json:"views"`

	// IsFavorited is never set by normalization; see services.ApplyFavorites.
	IsFavorited bool `json:"isFavorited"`
}

// Pagination mirrors the paging block of the listings endpoint.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	LastPage    int  `json:"lastPage"`
	PerPage     int  `json:"perPage"`
	Total       int  `json:"total"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// NewPagination derives the has-next/has-prev flags.
func NewPagination(current, last, perPage, total int) Pagination {
	return Pagination{
		CurrentPage: current,
		LastPage:    last,
		PerPage:     perPage,
		Total:       total,
		HasNextPage: current < last,
		HasPrevPage: current > 1,
	}
}

// PageResult is one normalized page of the listings endpoint.
type PageResult struct {
	Vehicles   []Vehicle  `json:"vehicles"`
	Pagination Pagination `json:"pagination"`
}
