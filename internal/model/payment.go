package model

import (
	"time"
)

// Payment records money received against an invoice. The payments table is an
// append-only ledger: the invoice's amount_paid is always recomputed from it.
type Payment struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	InvoiceID   uint      `json:"invoice_id" gorm:"index;not null"`
	Amount      float64   `json:"amount"`
	PaymentDate time.Time `json:"payment_date"`
	Method      string    `json:"payment_method" gorm:"type:varchar(50)"`
	Notes       string    `json:"notes" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}
