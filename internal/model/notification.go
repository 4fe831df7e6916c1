package model

import (
	"time"
)

// NotificationStatus is the read state of an in-app notification
type NotificationStatus string

const (
	NotificationUnread NotificationStatus = "unread"
	NotificationRead   NotificationStatus = "read"
)

// Notification is an in-app message shown to the landlord, typically raised
// when an invoice goes overdue.
type Notification struct {
	ID        uint               `json:"id" gorm:"primaryKey"`
	UserID    uint               `json:"user_id" gorm:"index;not null"`
	InvoiceID uint               `json:"invoice_id" gorm:"index"`
	Message   string             `json:"message" gorm:"type:text;not null"`
	Status    NotificationStatus `json:"status" gorm:"type:varchar(10);default:'unread'"`
	CreatedAt time.Time          `json:"created_at"`
}
