package services

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"vehicle-market/models"
)

// DefaultPageSize is the number of vehicles shown per result page.
const DefaultPageSize = 12

type predicate func(*models.Vehicle) bool

// Filter returns the vehicles that satisfy every active dimension of filters
// and contain query (case-insensitively) in their title, make, model or
// address. Inactive dimensions and a blank query match everything. The input
// slice is never modified.
func Filter(vehicles []models.Vehicle, filters models.SearchFilters, query string) []models.Vehicle {
	preds := buildPredicates(filters, query, newFolder())

	out := make([]models.Vehicle, 0, len(vehicles))
	for i := range vehicles {
		v := &vehicles[i]
		if matchesAll(v, preds) {
			out = append(out, *v)
		}
	}
	return out
}

func matchesAll(v *models.Vehicle, preds []predicate) bool {
	for _, p := range preds {
		if !p(v) {
			return false
		}
	}
	return true
}

func buildPredicates(f models.SearchFilters, query string, fold func(string) string) []predicate {
	var preds []predicate

	if q := strings.TrimSpace(query); q != "" {
		needle := fold(q)
		preds = append(preds, func(v *models.Vehicle) bool {
			for _, field := range [...]string{v.Title, v.Make, v.Model, v.Address} {
				if strings.Contains(fold(field), needle) {
					return true
				}
			}
			return false
		})
	}

	equalFoldOn := func(want string, field func(*models.Vehicle) string) predicate {
		want = fold(want)
		return func(v *models.Vehicle) bool { return fold(field(v)) == want }
	}

	if f.Category != "" {
		preds = append(preds, func(v *models.Vehicle) bool { return v.Category == f.Category })
	}
	if f.CountryID != nil {
		want := *f.CountryID
		preds = append(preds, func(v *models.Vehicle) bool { return v.CountryID != nil && *v.CountryID == want })
	}
	if f.CityID != nil {
		want := *f.CityID
		preds = append(preds, func(v *models.Vehicle) bool { return v.CityID != nil && *v.CityID == want })
	}

	if f.MinPrice != nil || f.MaxPrice != nil {
		preds = append(preds, func(v *models.Vehicle) bool { return inRange(v.Price, f.MinPrice, f.MaxPrice) })
	}
	if f.MinYear != nil || f.MaxYear != nil {
		preds = append(preds, func(v *models.Vehicle) bool { return inRange(v.Year, f.MinYear, f.MaxYear) })
	}
	if f.MinMileage != nil || f.MaxMileage != nil {
		preds = append(preds, func(v *models.Vehicle) bool { return inRange(v.Mileage, f.MinMileage, f.MaxMileage) })
	}

	if f.Make != "" {
		preds = append(preds, equalFoldOn(f.Make, func(v *models.Vehicle) string { return v.Make }))
	}
	if f.Model != "" {
		preds = append(preds, equalFoldOn(f.Model, func(v *models.Vehicle) string { return v.Model }))
	}
	if f.Condition != "" {
		preds = append(preds, equalFoldOn(string(f.Condition), func(v *models.Vehicle) string { return string(v.Condition) }))
	}
	if f.FuelType != "" {
		preds = append(preds, equalFoldOn(string(f.FuelType), func(v *models.Vehicle) string { return string(v.FuelType) }))
	}
	if f.Transmission != "" {
		preds = append(preds, equalFoldOn(string(f.Transmission), func(v *models.Vehicle) string { return string(v.Transmission) }))
	}

	return preds
}

// inRange is inclusive on both bounds; a nil bound is open.
func inRange[T int | float64](value T, lo, hi *T) bool {
	if lo != nil && value < *lo {
		return false
	}
	if hi != nil && value > *hi {
		return false
	}
	return true
}

// newFolder returns a Unicode case-folding function backed by one Caser.
// A Caser is stateful, so the function must stay on one goroutine.
func newFolder() func(string) string {
	caser := cases.Fold()
	return caser.String
}

// Sort returns a stably sorted copy of vehicles. An empty key sorts newest
// first; an unknown key keeps the input order.
func Sort(vehicles []models.Vehicle, key models.SortKey) []models.Vehicle {
	sorted := make([]models.Vehicle, len(vehicles))
	copy(sorted, vehicles)

	if key == "" {
		key = models.SortNewest
	}

	var less func(a, b *models.Vehicle) bool
	switch key {
	case models.SortNewest:
		less = func(a, b *models.Vehicle) bool { return a.CreatedAt.After(b.CreatedAt) }
	case models.SortPriceAsc:
		less = func(a, b *models.Vehicle) bool { return a.Price < b.Price }
	case models.SortPriceDesc:
		less = func(a, b *models.Vehicle) bool { return a.Price > b.Price }
	case models.SortYearAsc:
		less = func(a, b *models.Vehicle) bool { return a.Year < b.Year }
	case models.SortYearDesc:
		less = func(a, b *models.Vehicle) bool { return a.Year > b.Year }
	case models.SortMileageAsc:
		less = func(a, b *models.Vehicle) bool { return a.Mileage < b.Mileage }
	case models.SortMileageDesc:
		less = func(a, b *models.Vehicle) bool { return a.Mileage > b.Mileage }
	default:
		return sorted
	}

	sort.SliceStable(sorted, func(i, j int) bool { return less(&sorted[i], &sorted[j]) })
	return sorted
}

// Summarize lists the active filter dimensions. A range counts once no matter
// how many of its bounds are set. Whether the dimension excludes anything is
// irrelevant.
func Summarize(f models.SearchFilters) models.FilterSummary {
	active := make([]string, 0, 11)
	add := func(on bool, name string) {
		if on {
			active = append(active, name)
		}
	}

	add(f.Category != "", "Category")
	add(f.CountryID != nil, "Country")
	add(f.CityID != nil, "Location")
	add(f.MinPrice != nil || f.MaxPrice != nil, "Price")
	add(f.MinYear != nil || f.MaxYear != nil, "Year")
	add(f.MinMileage != nil || f.MaxMileage != nil, "Mileage")
	add(f.Make != "", "Make")
	add(f.Model != "", "Model")
	add(f.Condition != "", "Condition")
	add(f.FuelType != "", "Fuel Type")
	add(f.Transmission != "", "Transmission")

	return models.FilterSummary{Count: len(active), ActiveFilters: active}
}

// Paginate slices one display page out of an already sorted result set.
// page is clamped into [1, lastPage]; perPage <= 0 uses DefaultPageSize.
func Paginate(vehicles []models.Vehicle, page, perPage int) ([]models.Vehicle, models.Pagination) {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	total := len(vehicles)
	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}
	if page < 1 {
		page = 1
	}
	if page > lastPage {
		page = lastPage
	}

	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}

	return vehicles[start:end], models.NewPagination(page, lastPage, perPage, total)
}

// FindByID returns the vehicle with the given id.
func FindByID(vehicles []models.Vehicle, id string) (*models.Vehicle, bool) {
	for i := range vehicles {
		if vehicles[i].ID == id {
			v := vehicles[i]
			return &v, true
		}
	}
	return nil, false
}
