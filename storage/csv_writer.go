package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"vehicle-market/models"
)

var rawHeader = []string{
	"id", "title", "brand", "year", "offer_price", "mileage", "transmission",
	"condition", "fuel_type", "address", "location", "country_id", "city_id",
	"thumb_image", "features", "created_at", "seller_id", "seller_name",
}

var _ RawVehicleWriter = (*CSVWriter)(nil)

// CSVWriter writes raw (unnormalized) vehicle records to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write(rawHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteRaw appends one row per raw record, exactly as received.
func (c *CSVWriter) WriteRaw(records []*models.RawVehicle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range records {
		if r == nil {
			continue
		}
		row := []string{
			r.ID.String(),
			r.Title.String(),
			r.Brand.Name.String(),
			r.Year.String(),
			r.OfferPrice.String(),
			r.Mileage.String(),
			r.Transmission.String(),
			r.Condition.String(),
			r.FuelType.String(),
			r.Address.String(),
			r.Location.String(),
			optionalInt(r.CountryID),
			optionalInt(r.CityID),
			r.ThumbImage.String(),
			strings.Join(r.Features, "|"),
			r.CreatedAt.String(),
			r.Seller.ID.String(),
			r.Seller.Name.String(),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func optionalInt(o models.OptionalInt) string {
	if !o.Valid {
		return ""
	}
	return strconv.Itoa(o.Value)
}
