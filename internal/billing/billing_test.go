package billing

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"rental-service/internal/model"
	"rental-service/prometheus"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Property{}, &model.Invoice{}, &model.Payment{}))
	return db
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestDays(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  int
	}{
		{"four nights", "2025-03-01", "2025-03-05", 4},
		{"single night", "2025-03-01", "2025-03-02", 1},
		{"same day counts as one", "2025-03-01", "2025-03-01", 1},
		{"full month", "2025-03-01", "2025-03-31", 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Days(date(t, tt.start), date(t, tt.end))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 string
		want           bool
	}{
		{"partial overlap", "2025-04-14", "2025-04-20", "2025-04-10", "2025-04-15", true},
		{"contained", "2025-04-01", "2025-04-30", "2025-04-10", "2025-04-15", true},
		{"back-to-back conflicts", "2025-04-01", "2025-04-10", "2025-04-10", "2025-04-20", true},
		{"disjoint before", "2025-04-01", "2025-04-05", "2025-04-06", "2025-04-10", false},
		{"disjoint after", "2025-04-11", "2025-04-20", "2025-04-01", "2025-04-10", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(date(t, tt.s1), date(t, tt.e1), date(t, tt.s2), date(t, tt.e2))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindConflict(t *testing.T) {
	db := newTestDB(t)

	existing := model.Invoice{
		UserID:     1,
		PropertyID: 7,
		CustomerID: 1,
		Amount:     3000,
		StartDate:  date(t, "2025-04-14"),
		EndDate:    date(t, "2025-04-20"),
		DueDate:    date(t, "2025-04-14"),
		Status:     model.InvoicePending,
	}
	require.NoError(t, db.Create(&existing).Error)

	t.Run("overlapping booking is rejected", func(t *testing.T) {
		conflict, err := FindConflict(db, 7, date(t, "2025-04-10"), date(t, "2025-04-15"), 0)
		require.NoError(t, err)
		require.NotNil(t, conflict)
		assert.Equal(t, existing.ID, conflict.ID)
	})

	t.Run("free range passes", func(t *testing.T) {
		conflict, err := FindConflict(db, 7, date(t, "2025-04-21"), date(t, "2025-04-25"), 0)
		require.NoError(t, err)
		assert.Nil(t, conflict)
	})

	t.Run("other property is independent", func(t *testing.T) {
		conflict, err := FindConflict(db, 8, date(t, "2025-04-10"), date(t, "2025-04-15"), 0)
		require.NoError(t, err)
		assert.Nil(t, conflict)
	})

	t.Run("cancelled bookings do not block", func(t *testing.T) {
		require.NoError(t, db.Model(&model.Invoice{}).
			Where("id = ?", existing.ID).
			Update("status", model.InvoiceCancelled).Error)
		conflict, err := FindConflict(db, 7, date(t, "2025-04-10"), date(t, "2025-04-15"), 0)
		require.NoError(t, err)
		assert.Nil(t, conflict)
	})

	t.Run("invalid range", func(t *testing.T) {
		_, err := FindConflict(db, 7, date(t, "2025-04-15"), date(t, "2025-04-10"), 0)
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("exclude id skips the booking itself", func(t *testing.T) {
		self := model.Invoice{
			UserID:     1,
			PropertyID: 9,
			CustomerID: 1,
			Amount:     500,
			StartDate:  date(t, "2025-05-01"),
			EndDate:    date(t, "2025-05-05"),
			DueDate:    date(t, "2025-05-01"),
			Status:     model.InvoicePending,
		}
		require.NoError(t, db.Create(&self).Error)

		conflict, err := FindConflict(db, 9, self.StartDate, self.EndDate, self.ID)
		require.NoError(t, err)
		assert.Nil(t, conflict)
	})
}

func TestApplyPayment(t *testing.T) {
	db := newTestDB(t)

	invoice := model.Invoice{
		UserID:     1,
		PropertyID: 1,
		CustomerID: 1,
		Amount:     1000,
		AmountPaid: 0,
		StartDate:  date(t, "2025-03-01"),
		EndDate:    date(t, "2025-03-05"),
		DueDate:    date(t, "2025-03-05"),
		Status:     model.InvoicePending,
	}
	require.NoError(t, db.Create(&invoice).Error)

	t.Run("partial payment keeps invoice pending", func(t *testing.T) {
		got, err := ApplyPayment(db, invoice.ID, 600, date(t, "2025-03-02"), "manual", "")
		require.NoError(t, err)
		assert.Equal(t, 600.0, got.AmountPaid)
		assert.Equal(t, model.InvoicePending, got.Status)
	})

	t.Run("final payment marks invoice paid", func(t *testing.T) {
		got, err := ApplyPayment(db, invoice.ID, 400, date(t, "2025-03-03"), "manual", "")
		require.NoError(t, err)
		assert.Equal(t, 1000.0, got.AmountPaid)
		assert.Equal(t, model.InvoicePaid, got.Status)
	})

	t.Run("payment on settled invoice is rejected", func(t *testing.T) {
		_, err := ApplyPayment(db, invoice.ID, 1, date(t, "2025-03-04"), "manual", "")
		assert.ErrorIs(t, err, ErrInvoiceClosed)
	})

	t.Run("amount_paid equals ledger sum", func(t *testing.T) {
		var total float64
		require.NoError(t, db.Model(&model.Payment{}).
			Where("invoice_id = ?", invoice.ID).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&total).Error)

		var reloaded model.Invoice
		require.NoError(t, db.First(&reloaded, invoice.ID).Error)
		assert.Equal(t, total, reloaded.AmountPaid)
	})
}

func TestApplyPaymentValidation(t *testing.T) {
	db := newTestDB(t)

	invoice := model.Invoice{
		UserID:     1,
		PropertyID: 1,
		CustomerID: 1,
		Amount:     500,
		StartDate:  date(t, "2025-06-01"),
		EndDate:    date(t, "2025-06-05"),
		DueDate:    date(t, "2025-06-05"),
		Status:     model.InvoicePending,
	}
	require.NoError(t, db.Create(&invoice).Error)

	assertUnchanged := func(t *testing.T) {
		t.Helper()
		var reloaded model.Invoice
		require.NoError(t, db.First(&reloaded, invoice.ID).Error)
		assert.Equal(t, 0.0, reloaded.AmountPaid)
		assert.Equal(t, model.InvoicePending, reloaded.Status)

		var count int64
		require.NoError(t, db.Model(&model.Payment{}).
			Where("invoice_id = ?", invoice.ID).Count(&count).Error)
		assert.Zero(t, count)
	}

	t.Run("zero amount", func(t *testing.T) {
		_, err := ApplyPayment(db, invoice.ID, 0, date(t, "2025-06-02"), "manual", "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assertUnchanged(t)
	})

	t.Run("negative amount", func(t *testing.T) {
		_, err := ApplyPayment(db, invoice.ID, -50, date(t, "2025-06-02"), "manual", "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assertUnchanged(t)
	})

	t.Run("amount above remaining balance", func(t *testing.T) {
		_, err := ApplyPayment(db, invoice.ID, 501, date(t, "2025-06-02"), "manual", "")
		assert.ErrorIs(t, err, ErrExceedsBalance)
		assertUnchanged(t)
	})

	t.Run("cancelled invoice rejects payments", func(t *testing.T) {
		cancelled := model.Invoice{
			UserID:     1,
			PropertyID: 2,
			CustomerID: 1,
			Amount:     500,
			StartDate:  date(t, "2025-07-01"),
			EndDate:    date(t, "2025-07-05"),
			DueDate:    date(t, "2025-07-05"),
			Status:     model.InvoiceCancelled,
		}
		require.NoError(t, db.Create(&cancelled).Error)

		_, err := ApplyPayment(db, cancelled.ID, 100, date(t, "2025-07-02"), "manual", "")
		assert.ErrorIs(t, err, ErrInvoiceClosed)
	})
}

func TestOpenInvoicesGauge(t *testing.T) {
	db := newTestDB(t)

	property := model.Property{UserID: 1, Name: "Harbor Loft", Address: "1 Pier Rd", DailyRate: 125}
	require.NoError(t, db.Create(&property).Error)

	book := func(start, end string) *model.Invoice {
		inv := &model.Invoice{
			UserID:     1,
			PropertyID: property.ID,
			CustomerID: 1,
			Amount:     500,
			StartDate:  date(t, start),
			EndDate:    date(t, end),
			DueDate:    date(t, end),
			Status:     model.InvoicePending,
		}
		conflict, err := CreateBooking(db, inv)
		require.NoError(t, err)
		require.Nil(t, conflict)
		return inv
	}

	first := book("2025-09-01", "2025-09-05")
	second := book("2025-09-10", "2025-09-15")
	assert.Equal(t, 2.0, testutil.ToFloat64(prometheus.OpenInvoicesGauge))

	_, err := ApplyPayment(db, first.ID, 500, date(t, "2025-09-02"), "manual", "")
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(prometheus.OpenInvoicesGauge))

	_, err = Cancel(db, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, testutil.ToFloat64(prometheus.OpenInvoicesGauge))
}

func TestCancel(t *testing.T) {
	db := newTestDB(t)

	mk := func(status model.InvoiceStatus) model.Invoice {
		inv := model.Invoice{
			UserID:     1,
			PropertyID: 1,
			CustomerID: 1,
			Amount:     100,
			StartDate:  date(t, "2025-08-01"),
			EndDate:    date(t, "2025-08-03"),
			DueDate:    date(t, "2025-08-03"),
			Status:     status,
		}
		require.NoError(t, db.Create(&inv).Error)
		return inv
	}

	t.Run("pending can be cancelled", func(t *testing.T) {
		inv := mk(model.InvoicePending)
		got, err := Cancel(db, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, model.InvoiceCancelled, got.Status)
	})

	t.Run("overdue can be cancelled", func(t *testing.T) {
		inv := mk(model.InvoiceOverdue)
		got, err := Cancel(db, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, model.InvoiceCancelled, got.Status)
	})

	t.Run("paid is terminal", func(t *testing.T) {
		inv := mk(model.InvoicePaid)
		_, err := Cancel(db, inv.ID)
		assert.ErrorIs(t, err, ErrInvoiceClosed)
	})

	t.Run("cancelled is terminal", func(t *testing.T) {
		inv := mk(model.InvoiceCancelled)
		_, err := Cancel(db, inv.ID)
		assert.ErrorIs(t, err, ErrInvoiceClosed)
	})
}
