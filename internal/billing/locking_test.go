package billing

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rental-service/internal/model"
)

// newMockDB opens gorm over a sqlmock connection with the postgres dialector,
// so the generated SQL matches what production runs. The in-memory sqlite used
// elsewhere drops locking clauses, which is exactly what these tests must see.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestApplyPaymentLocksInvoiceRow(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	// Both concurrent payments reading the same balance is only prevented
	// when the invoice read carries the row lock.
	mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE .+ FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "property_id", "customer_id", "amount", "amount_paid", "status"}).
			AddRow(1, 1, 1, 1, 1000.0, 0.0, "pending"))
	mock.ExpectQuery(`INSERT INTO "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM "payments"`).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(600.0))
	mock.ExpectExec(`UPDATE "invoices" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	got, err := ApplyPayment(db, 1, 600, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), "manual", "")
	require.NoError(t, err)
	assert.Equal(t, 600.0, got.AmountPaid)
	assert.Equal(t, model.InvoicePending, got.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingLocksPropertyRow(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "properties" WHERE .+ FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(7, 1))
	mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE property_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "invoices"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "invoices"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	invoice := model.Invoice{
		UserID:     1,
		PropertyID: 7,
		CustomerID: 1,
		Amount:     2000,
		StartDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		DueDate:    time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		Status:     model.InvoicePending,
	}
	conflict, err := CreateBooking(db, &invoice)
	require.NoError(t, err)
	assert.Nil(t, conflict)
	assert.Equal(t, uint(1), invoice.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingRollsBackOnOverlap(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "properties" WHERE .+ FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(7, 1))
	mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE property_id`).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "property_id", "start_date", "end_date", "status"}).
			AddRow(42, 7,
				time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
				time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC),
				"pending"))
	mock.ExpectRollback()

	invoice := model.Invoice{
		UserID:     1,
		PropertyID: 7,
		CustomerID: 1,
		Amount:     2000,
		StartDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		DueDate:    time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		Status:     model.InvoicePending,
	}
	conflict, err := CreateBooking(db, &invoice)
	assert.ErrorIs(t, err, ErrDatesUnavailable)
	require.NotNil(t, conflict)
	assert.Equal(t, uint(42), conflict.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
