package server

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"vehicle-market/models"
)

// searchRequest is a parsed GET /vehicles query.
type searchRequest struct {
	Filters models.SearchFilters
	Query   string
	Sort    models.SortKey
	Page    int
	PerPage int
}

// parseSearchRequest reads filters from query parameters. Blank values are
// treated as absent; malformed numbers are rejected.
func parseSearchRequest(q url.Values, defaultPerPage int) (searchRequest, error) {
	req := searchRequest{
		Query:   strings.TrimSpace(q.Get("q")),
		Sort:    models.SortKey(strings.TrimSpace(q.Get("sort"))),
		Page:    1,
		PerPage: defaultPerPage,
	}
	f := &req.Filters

	f.Category = models.Category(strings.TrimSpace(q.Get("category")))
	f.Make = strings.TrimSpace(q.Get("make"))
	f.Model = strings.TrimSpace(q.Get("model"))
	f.Condition = models.Condition(strings.TrimSpace(q.Get("condition")))
	f.FuelType = models.FuelType(strings.TrimSpace(q.Get("fuel_type")))
	f.Transmission = models.Transmission(strings.TrimSpace(q.Get("transmission")))

	var err error
	ints := []struct {
		key string
		dst **int
	}{
		{"country_id", &f.CountryID},
		{"city_id", &f.CityID},
		{"min_year", &f.MinYear},
		{"max_year", &f.MaxYear},
		{"min_mileage", &f.MinMileage},
		{"max_mileage", &f.MaxMileage},
	}
	for _, p := range ints {
		if *p.dst, err = optionalInt(q, p.key); err != nil {
			return req, err
		}
	}
	if f.MinPrice, err = optionalFloat(q, "min_price"); err != nil {
		return req, err
	}
	if f.MaxPrice, err = optionalFloat(q, "max_price"); err != nil {
		return req, err
	}

	page, err := optionalInt(q, "page")
	if err != nil {
		return req, err
	}
	if page != nil {
		req.Page = *page
	}
	perPage, err := optionalInt(q, "per_page")
	if err != nil {
		return req, err
	}
	if perPage != nil && *perPage > 0 {
		req.PerPage = *perPage
	}
	return req, nil
}

func optionalInt(q url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return &n, nil
}

func optionalFloat(q url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return &n, nil
}
