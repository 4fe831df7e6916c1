package model

import (
	"time"

	"gorm.io/gorm"
)

// Customer represents a tenant tracked by a landlord
type Customer struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null"`
	Email       string         `json:"email" gorm:"type:varchar(100)"`
	Phone       string         `json:"phone" gorm:"type:varchar(30)"`
	City        string         `json:"city" gorm:"type:varchar(100)"`
	CompanyName string         `json:"company_name" gorm:"type:varchar(100)"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// CustomerStats is a derived, read-only aggregation of a customer's booking
// history. It is recomputed at query time and never stored.
type CustomerStats struct {
	ID              uint       `json:"id"`
	Name            string     `json:"name"`
	Phone           string     `json:"phone"`
	City            string     `json:"city"`
	CompanyName     string     `json:"company_name"`
	TotalBookings   int64      `json:"total_bookings"`
	TotalSpent      float64    `json:"total_spent"`
	LastBookingDate *time.Time `json:"last_booking_date"`
	CustomerStatus  string     `json:"customer_status"`
}
