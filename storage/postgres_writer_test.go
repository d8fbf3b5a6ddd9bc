package storage

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-market/models"
)

func newMockWriter(t *testing.T) (*PostgresWriter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS vehicles").WillReturnResult(sqlmock.NewResult(0, 0))
	pw, err := NewPostgresWriterWithDB(context.Background(), db)
	require.NoError(t, err)
	return pw, mock
}

func TestPostgresWriter_WriteReplacesSnapshot(t *testing.T) {
	pw, mock := newMockWriter(t)

	city := 7
	vehicles := []models.Vehicle{
		{ID: "1", SellerID: "9", Title: "Audi A4", Category: models.CategoryCar, Make: "Audi", Model: "A4",
			Year: 2019, Price: 30000, Condition: models.ConditionUsed, FuelType: models.FuelDiesel,
			Transmission: models.TransmissionAutomatic, CityID: &city, Images: []string{"http://x/a.jpg"},
			CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "2", SellerID: "1", Title: "Vehicle", Category: models.CategoryCar, Make: "Unknown", Model: "Unknown",
			Year: 2020, Images: []string{"http://x/b.jpg"}},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM vehicles").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO vehicles").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, pw.Write(context.Background(), vehicles))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresWriter_WriteBatches(t *testing.T) {
	pw, mock := newMockWriter(t)

	vehicles := make([]models.Vehicle, 120)
	for i := range vehicles {
		vehicles[i] = models.Vehicle{ID: string(rune('a' + i%26)), Images: []string{"x"}}
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM vehicles").WillReturnResult(sqlmock.NewResult(0, 0))
	for i := 0; i < 3; i++ {
		mock.ExpectExec("INSERT INTO vehicles").WillReturnResult(sqlmock.NewResult(0, 50))
	}
	mock.ExpectCommit()

	require.NoError(t, pw.Write(context.Background(), vehicles))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresWriter_WriteRollsBackOnInsertError(t *testing.T) {
	pw, mock := newMockWriter(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM vehicles").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO vehicles").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := pw.Write(context.Background(), []models.Vehicle{{ID: "1"}})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresWriter_WriteEmptyIsNoop(t *testing.T) {
	pw, mock := newMockWriter(t)
	require.NoError(t, pw.Write(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func vehicleRow(v []driver.Value) *sqlmock.Rows {
	return sqlmock.NewRows(vehicleColumns).AddRow(v...)
}

func TestPostgresWriter_FetchAll(t *testing.T) {
	pw, mock := newMockWriter(t)

	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)
	mock.ExpectQuery("SELECT (.+) FROM vehicles").WillReturnRows(vehicleRow([]driver.Value{
		"1", "9", "Auto Sallon", 4.8, true,
		"Audi A4", "Clean", "car", "Audi", "A4", int64(2019), 30000.0, "EUR",
		"used", int64(120000), "diesel", "automatic", "Tiranë", "Rruga e Kavajës",
		int64(1), nil, "{http://x/a.jpg}", "{ABS,GPS}", false, int64(57),
		created, updated,
	}))

	got, err := pw.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)

	v := got[0]
	assert.Equal(t, "Audi A4", v.Title)
	assert.Equal(t, "Clean", v.Description)
	assert.Equal(t, models.CategoryCar, v.Category)
	assert.Equal(t, models.FuelDiesel, v.FuelType)
	assert.Equal(t, 30000.0, v.Price)
	assert.Equal(t, "EUR", v.Currency)
	assert.Equal(t, 120000, v.Mileage)
	assert.Equal(t, "Rruga e Kavajës", v.Address)
	assert.Equal(t, 57, v.Views)
	assert.Equal(t, "9", v.Seller.ID)
	assert.Equal(t, 4.8, v.Seller.Rating)
	assert.True(t, v.Seller.IsVerified)
	require.NotNil(t, v.CountryID)
	assert.Equal(t, 1, *v.CountryID)
	assert.Nil(t, v.CityID)
	assert.Equal(t, []string{"http://x/a.jpg"}, v.Images)
	assert.Equal(t, []string{"ABS", "GPS"}, v.Features)
	assert.True(t, v.CreatedAt.Equal(created))
	assert.True(t, v.UpdatedAt.Equal(updated))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresWriter_PromotedRoundTrip(t *testing.T) {
	pw, mock := newMockWriter(t)

	created := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	promoted := models.Vehicle{
		ID: "7", SellerID: "1", Title: "BMW X5", Category: models.CategoryCar, Make: "BMW", Model: "X5",
		Year: 2021, Price: 52000, Currency: "EUR", Condition: models.ConditionUsed,
		FuelType: models.FuelDiesel, Transmission: models.TransmissionAutomatic,
		Images: []string{"http://x/x5.jpg"}, IsPromoted: true, Views: 12,
		CreatedAt: created, UpdatedAt: created,
	}

	args := make([]driver.Value, len(vehicleColumns))
	for i, col := range vehicleColumns {
		switch col {
		case "id":
			args[i] = "7"
		case "is_promoted":
			args[i] = true
		case "views":
			args[i] = int64(12)
		default:
			args[i] = sqlmock.AnyArg()
		}
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM vehicles").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO vehicles").WithArgs(args...).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, pw.Write(context.Background(), []models.Vehicle{promoted}))

	mock.ExpectQuery("SELECT (.+) FROM vehicles").WillReturnRows(vehicleRow([]driver.Value{
		"7", "1", "", 0.0, false,
		"BMW X5", "", "car", "BMW", "X5", int64(2021), 52000.0, "EUR",
		"used", int64(0), "diesel", "automatic", "", "",
		nil, nil, "{http://x/x5.jpg}", "{}", true, int64(12),
		created, created,
	}))

	got, err := pw.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsPromoted)
	assert.Equal(t, 12, got[0].Views)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresWriter_Clear(t *testing.T) {
	pw, mock := newMockWriter(t)
	mock.ExpectExec("DELETE FROM vehicles").WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, pw.Clear(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
