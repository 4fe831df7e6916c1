package model

import (
	"time"
)

// EmailLog records every outbound email attempt, successful or not
type EmailLog struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	InvoiceID      uint      `json:"invoice_id" gorm:"index"`
	RecipientEmail string    `json:"recipient_email" gorm:"type:varchar(100);not null"`
	EmailType      string    `json:"email_type" gorm:"type:varchar(50);not null"`
	Success        bool      `json:"success"`
	ErrorMessage   string    `json:"error_message" gorm:"type:text"`
	SentAt         time.Time `json:"sent_at"`
}
