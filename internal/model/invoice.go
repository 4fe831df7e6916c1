package model

import (
	"time"
)

// InvoiceStatus is the billing state of an invoice
type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "pending"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// Invoice is the combined booking-and-billing record: it reserves a property
// for a customer over a date range and tracks the money owed against it.
// Invoices are never hard-deleted; cancellation is a status change.
type Invoice struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	UserID      uint          `json:"user_id" gorm:"index;not null"`
	PropertyID  uint          `json:"property_id" gorm:"index;not null"`
	CustomerID  uint          `json:"customer_id" gorm:"index;not null"`
	Amount      float64       `json:"amount"`
	AmountPaid  float64       `json:"amount_paid"`
	DailyRate   float64       `json:"daily_rate"`
	DaysRented  int           `json:"days_rented"`
	StartDate   time.Time     `json:"start_date"`
	EndDate     time.Time     `json:"end_date"`
	DueDate     time.Time     `json:"due_date"`
	Status      InvoiceStatus `json:"status" gorm:"type:varchar(20);index;default:'pending'"`
	Description string        `json:"description" gorm:"type:text"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	Customer *Customer `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Payments []Payment `json:"payments,omitempty" gorm:"foreignKey:InvoiceID"`
}

// Remaining returns the unpaid balance of the invoice
func (i *Invoice) Remaining() float64 {
	return i.Amount - i.AmountPaid
}

// Open reports whether the invoice can still receive payments
func (i *Invoice) Open() bool {
	return i.Status == InvoicePending || i.Status == InvoiceOverdue
}
