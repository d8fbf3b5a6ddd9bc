package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"vehicle-market/models"
)

// vehicleColumns is the column order shared by inserts and FetchAll.
var vehicleColumns = []string{
	"id", "seller_id", "seller_name", "seller_rating", "seller_verified",
	"title", "description", "category", "make", "model", "year", "price", "currency",
	"condition", "mileage", "fuel_type", "transmission", "location", "address",
	"country_id", "city_id", "images", "features", "is_promoted", "views",
	"created_at", "updated_at",
}

var _ VehicleWriter = (*PostgresWriter)(nil)

// PostgresWriter persists snapshots of the normalized catalog to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(ctx context.Context, dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	return NewPostgresWriterWithDB(ctx, db)
}

// NewPostgresWriterWithDB wraps an already opened handle and migrates it.
func NewPostgresWriterWithDB(ctx context.Context, db *sql.DB) (*PostgresWriter, error) {
	pw := &PostgresWriter{db: db}
	if err := pw.migrate(ctx); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func (pw *PostgresWriter) migrate(ctx context.Context) error {
	_, err := pw.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS vehicles (
			id              TEXT          PRIMARY KEY,
			seller_id       TEXT          NOT NULL,
			seller_name     TEXT          NOT NULL DEFAULT '',
			seller_rating   NUMERIC(3,2)  NOT NULL DEFAULT 0,
			seller_verified BOOLEAN       NOT NULL DEFAULT FALSE,
			title           TEXT          NOT NULL,
			description     TEXT          NOT NULL DEFAULT '',
			category        VARCHAR(20)   NOT NULL,
			make            TEXT          NOT NULL,
			model           TEXT          NOT NULL,
			year            INTEGER       NOT NULL,
			price           NUMERIC(12,2) NOT NULL DEFAULT 0,
			currency        VARCHAR(3)    NOT NULL DEFAULT 'EUR',
			condition       VARCHAR(10)   NOT NULL,
			mileage         INTEGER       NOT NULL DEFAULT 0,
			fuel_type       VARCHAR(10)   NOT NULL,
			transmission    VARCHAR(10)   NOT NULL,
			location        TEXT          NOT NULL DEFAULT '',
			address         TEXT          NOT NULL DEFAULT '',
			country_id      INTEGER,
			city_id         INTEGER,
			images          TEXT[]        NOT NULL,
			features        TEXT[]        NOT NULL DEFAULT '{}',
			is_promoted     BOOLEAN       NOT NULL DEFAULT FALSE,
			views           INTEGER       NOT NULL DEFAULT 0,
			created_at      TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
			updated_at      TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		ALTER TABLE vehicles ADD COLUMN IF NOT EXISTS seller_rating   NUMERIC(3,2) NOT NULL DEFAULT 0;
		ALTER TABLE vehicles ADD COLUMN IF NOT EXISTS seller_verified BOOLEAN      NOT NULL DEFAULT FALSE;
		ALTER TABLE vehicles ADD COLUMN IF NOT EXISTS description     TEXT         NOT NULL DEFAULT '';
		ALTER TABLE vehicles ADD COLUMN IF NOT EXISTS currency        VARCHAR(3)   NOT NULL DEFAULT 'EUR';
		ALTER TABLE vehicles ADD COLUMN IF NOT EXISTS address         TEXT         NOT NULL DEFAULT '';
		ALTER TABLE vehicles ADD COLUMN IF NOT EXISTS is_promoted     BOOLEAN      NOT NULL DEFAULT FALSE;
		ALTER TABLE vehicles ADD COLUMN IF NOT EXISTS views           INTEGER      NOT NULL DEFAULT 0;
		ALTER TABLE vehicles ADD COLUMN IF NOT EXISTS updated_at      TIMESTAMPTZ  NOT NULL DEFAULT NOW();

		CREATE INDEX IF NOT EXISTS idx_vehicles_price    ON vehicles(price);
		CREATE INDEX IF NOT EXISTS idx_vehicles_category ON vehicles(category);
		CREATE INDEX IF NOT EXISTS idx_vehicles_make     ON vehicles(make);
		CREATE INDEX IF NOT EXISTS idx_vehicles_city     ON vehicles(city_id);
	`)
	return err
}

// Clear deletes all existing vehicles from the table.
func (pw *PostgresWriter) Clear(ctx context.Context) error {
	_, err := pw.db.ExecContext(ctx, "DELETE FROM vehicles")
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write replaces the stored snapshot with vehicles inside one transaction.
func (pw *PostgresWriter) Write(ctx context.Context, vehicles []models.Vehicle) error {
	if len(vehicles) == 0 {
		return nil
	}

	tx, err := pw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM vehicles"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}

	const batchSize = 50
	for i := 0; i < len(vehicles); i += batchSize {
		end := i + batchSize
		if end > len(vehicles) {
			end = len(vehicles)
		}
		if err := insertBatch(ctx, tx, vehicles[i:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func insertBatch(ctx context.Context, tx *sql.Tx, batch []models.Vehicle) error {
	width := len(vehicleColumns)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*width)

	for idx, v := range batch {
		base := idx * width
		placeholders := make([]string, width)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", base+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			v.ID, v.SellerID, v.Seller.Name, v.Seller.Rating, v.Seller.IsVerified,
			v.Title, v.Description, string(v.Category), v.Make, v.Model, v.Year, v.Price, v.Currency,
			string(v.Condition), v.Mileage, string(v.FuelType), string(v.Transmission), v.Location, v.Address,
			nullInt(v.CountryID), nullInt(v.CityID), pq.Array(v.Images), pq.Array(v.Features), v.IsPromoted, v.Views,
			v.CreatedAt, v.UpdatedAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO vehicles (%s)
		VALUES %s
		ON CONFLICT (id) DO NOTHING
	`, strings.Join(vehicleColumns, ", "), strings.Join(valueStrings, ","))

	if _, err := tx.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves the stored snapshot.
func (pw *PostgresWriter) FetchAll(ctx context.Context) ([]models.Vehicle, error) {
	rows, err := pw.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s
		FROM vehicles
		ORDER BY created_at DESC, id
	`, strings.Join(vehicleColumns, ", ")))
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var vehicles []models.Vehicle
	for rows.Next() {
		var (
			v                               models.Vehicle
			category, condition, fuel, gear string
			countryID, cityID               sql.NullInt64
		)
		if err := rows.Scan(
			&v.ID, &v.SellerID, &v.Seller.Name, &v.Seller.Rating, &v.Seller.IsVerified,
			&v.Title, &v.Description, &category, &v.Make, &v.Model, &v.Year, &v.Price, &v.Currency,
			&condition, &v.Mileage, &fuel, &gear, &v.Location, &v.Address,
			&countryID, &cityID, pq.Array(&v.Images), pq.Array(&v.Features), &v.IsPromoted, &v.Views,
			&v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		v.Seller.ID = v.SellerID
		v.Category = models.Category(category)
		v.Condition = models.Condition(condition)
		v.FuelType = models.FuelType(fuel)
		v.Transmission = models.Transmission(gear)
		v.CountryID = intPtr(countryID)
		v.CityID = intPtr(cityID)
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
