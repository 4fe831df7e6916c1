// Package billing holds the booking and payment rules: day counting,
// date-range conflict detection, and ledger-based payment reconciliation.
package billing

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rental-service/internal/model"
	"rental-service/prometheus"
)

var (
	// ErrInvalidRange is returned when a booking's start date is after its end date
	ErrInvalidRange = errors.New("start date must not be after end date")

	// ErrInvalidAmount is returned for zero or negative payment amounts
	ErrInvalidAmount = errors.New("payment amount must be greater than zero")

	// ErrExceedsBalance is returned when a payment is larger than the remaining balance
	ErrExceedsBalance = errors.New("payment amount exceeds remaining balance")

	// ErrInvoiceClosed is returned when paying or cancelling a paid/cancelled invoice
	ErrInvoiceClosed = errors.New("invoice is not open")

	// ErrDatesUnavailable is returned when a booking's date range overlaps an
	// existing non-cancelled booking on the same property
	ErrDatesUnavailable = errors.New("property dates are unavailable")
)

// Days returns the number of billable days between start and end.
//
// Contract: the count is the number of whole days from check-in to check-out
// (the check-out day itself is not billed), with a minimum of one day so a
// same-day booking is still charged.
func Days(start, end time.Time) int {
	d := int(end.Sub(start).Hours() / 24)
	if d < 1 {
		return 1
	}
	return d
}

// Overlaps reports whether the inclusive date ranges [s1, e1] and [s2, e2]
// intersect. Bounds are inclusive, so back-to-back bookings where one ends on
// the day the other starts are treated as conflicting.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return !s1.After(e2) && !e1.Before(s2)
}

// FindConflict returns the first non-cancelled invoice on the property whose
// date range overlaps [start, end], or nil when the range is free.
// excludeID skips an invoice (used when re-checking an existing booking);
// pass 0 to check all.
//
// A query failure aborts the check: a booking must never be created without a
// successful conflict scan.
func FindConflict(db *gorm.DB, propertyID uint, start, end time.Time, excludeID uint) (*model.Invoice, error) {
	if start.After(end) {
		return nil, ErrInvalidRange
	}

	var existing []model.Invoice
	q := db.Where("property_id = ? AND status <> ?", propertyID, model.InvoiceCancelled)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Find(&existing).Error; err != nil {
		return nil, err
	}

	for i := range existing {
		if Overlaps(existing[i].StartDate, existing[i].EndDate, start, end) {
			return &existing[i], nil
		}
	}
	return nil, nil
}

// CreateBooking inserts a booking after verifying its date range is free.
// The conflict scan and the insert run in one transaction holding a row lock
// on the property, so two concurrent requests for the same property cannot
// both pass the scan. On overlap it returns the conflicting invoice together
// with ErrDatesUnavailable and nothing is written.
func CreateBooking(db *gorm.DB, invoice *model.Invoice) (*model.Invoice, error) {
	if invoice.StartDate.After(invoice.EndDate) {
		return nil, ErrInvalidRange
	}

	var conflict *model.Invoice
	err := db.Transaction(func(tx *gorm.DB) error {
		var property model.Property
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&property, invoice.PropertyID).Error; err != nil {
			return err
		}

		found, err := FindConflict(tx, invoice.PropertyID, invoice.StartDate, invoice.EndDate, 0)
		if err != nil {
			return err
		}
		if found != nil {
			conflict = found
			return ErrDatesUnavailable
		}

		return tx.Create(invoice).Error
	})
	if errors.Is(err, ErrDatesUnavailable) {
		return conflict, err
	}
	if err != nil {
		return nil, err
	}

	RefreshOpenInvoicesGauge(db)
	return nil, nil
}

// ApplyPayment records a payment against an invoice and reconciles its status
// inside a single transaction. The new amount_paid is recomputed as the sum of
// the full payment ledger rather than trusting a caller-supplied increment, so
// concurrent payments cannot lose updates. The status becomes "paid" once the
// ledger covers the invoice amount, otherwise "pending".
func ApplyPayment(db *gorm.DB, invoiceID uint, amount float64, date time.Time, method, notes string) (*model.Invoice, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var invoice model.Invoice
	err := db.Transaction(func(tx *gorm.DB) error {
		// The row lock serializes concurrent payments on one invoice: without
		// it, two transactions can both read the same remaining balance and
		// both pass the check below.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&invoice, invoiceID).Error; err != nil {
			return err
		}
		if !invoice.Open() {
			return ErrInvoiceClosed
		}
		if amount > invoice.Remaining() {
			return ErrExceedsBalance
		}

		payment := model.Payment{
			InvoiceID:   invoiceID,
			Amount:      amount,
			PaymentDate: date,
			Method:      method,
			Notes:       notes,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		// Reconcile from the ledger, not from the stale in-memory value.
		var total float64
		if err := tx.Model(&model.Payment{}).
			Where("invoice_id = ?", invoiceID).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&total).Error; err != nil {
			return err
		}

		status := model.InvoicePending
		if total >= invoice.Amount {
			status = model.InvoicePaid
		}

		if err := tx.Model(&invoice).Updates(map[string]interface{}{
			"amount_paid": total,
			"status":      status,
		}).Error; err != nil {
			return err
		}

		invoice.AmountPaid = total
		invoice.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	RefreshOpenInvoicesGauge(db)
	return &invoice, nil
}

// Cancel transitions a pending or overdue invoice to cancelled. Paid and
// already-cancelled invoices are terminal and cannot be cancelled.
func Cancel(db *gorm.DB, invoiceID uint) (*model.Invoice, error) {
	var invoice model.Invoice
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&invoice, invoiceID).Error; err != nil {
			return err
		}
		if !invoice.Open() {
			return ErrInvoiceClosed
		}
		if err := tx.Model(&invoice).Update("status", model.InvoiceCancelled).Error; err != nil {
			return err
		}
		invoice.Status = model.InvoiceCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	RefreshOpenInvoicesGauge(db)
	return &invoice, nil
}

// RefreshOpenInvoicesGauge recounts pending and overdue invoices and updates
// the open-invoices gauge. A failed count leaves the gauge at its last value.
func RefreshOpenInvoicesGauge(db *gorm.DB) {
	var open int64
	err := db.Model(&model.Invoice{}).
		Where("status IN ?", []model.InvoiceStatus{model.InvoicePending, model.InvoiceOverdue}).
		Count(&open).Error
	if err != nil {
		return
	}
	prometheus.OpenInvoicesGauge.Set(float64(open))
}
