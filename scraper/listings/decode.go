package listings

import (
	"bytes"
	"encoding/json"
	"errors"

	"vehicle-market/models"
	"vehicle-market/utils"
)

var errInvalidJSON = errors.New("body is not valid JSON")

type envelope struct {
	Cars json.RawMessage `json:"cars"`
}

type carsBlock struct {
	Data        json.RawMessage    `json:"data"`
	CurrentPage models.OptionalInt `json:"current_page"`
	LastPage    models.OptionalInt `json:"last_page"`
	PerPage     models.OptionalInt `json:"per_page"`
	Total       models.OptionalInt `json:"total"`
}

// emptyPage is what a response without a usable cars.data array decodes to.
func emptyPage() *models.ListingsPage {
	return &models.ListingsPage{
		Items:       []*models.RawVehicle{},
		CurrentPage: 1,
		LastPage:    1,
		PerPage:     10,
	}
}

// DecodePage parses a listings response body. A body that is not JSON is a
// KindDecode error. A JSON body whose cars.data is missing or not an array
// yields an empty page and a warning. Array elements that are not objects
// are skipped.
func DecodePage(body []byte, logger *utils.Logger) (*models.ListingsPage, error) {
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	if !json.Valid(body) {
		return nil, &FetchError{Kind: KindDecode, Err: errInvalidJSON}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		logger.Warn("[listings] Response is not an object: %v", err)
		return emptyPage(), nil
	}

	var cars carsBlock
	if raw := bytes.TrimSpace(env.Cars); len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &cars); err != nil {
			return nil, &FetchError{Kind: KindDecode, Err: err}
		}
	}

	data := bytes.TrimSpace(cars.Data)
	if len(data) == 0 || data[0] != '[' {
		logger.Warn("[listings] No cars data found in API response")
		return emptyPage(), nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		logger.Warn("[listings] cars.data is not a decodable array: %v", err)
		return emptyPage(), nil
	}

	items := make([]*models.RawVehicle, 0, len(elems))
	for i, elem := range elems {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 || elem[0] != '{' {
			logger.Warn("[listings] Skipping item %d: not an object", i)
			continue
		}
		var rv models.RawVehicle
		if err := json.Unmarshal(elem, &rv); err != nil {
			logger.Warn("[listings] Skipping item %d: %v", i, err)
			continue
		}
		items = append(items, &rv)
	}

	page := &models.ListingsPage{
		Items:       items,
		CurrentPage: orDefault(cars.CurrentPage, 1),
		LastPage:    orDefault(cars.LastPage, 1),
		PerPage:     orDefault(cars.PerPage, len(items)),
		Total:       orDefault(cars.Total, len(items)),
	}
	if page.LastPage < page.CurrentPage {
		page.LastPage = page.CurrentPage
	}
	return page, nil
}

func orDefault(o models.OptionalInt, fallback int) int {
	if !o.Valid {
		return fallback
	}
	return o.Value
}
