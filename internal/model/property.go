package model

import (
	"time"

	"gorm.io/gorm"
)

// PropertyStatus is the rental availability of a property
type PropertyStatus string

const (
	PropertyAvailable PropertyStatus = "Available"
	PropertyRented    PropertyStatus = "Rented"
)

// PricingType selects which rate applies to a property
type PricingType string

const (
	PricingDaily   PricingType = "daily"
	PricingMonthly PricingType = "monthly"
)

// Property represents a rental unit owned by a landlord
type Property struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null"`
	Address     string         `json:"address" gorm:"type:varchar(255);not null"`
	City        string         `json:"city" gorm:"type:varchar(100)"`
	Status      PropertyStatus `json:"status" gorm:"type:varchar(20);default:'Available'"`
	PricingType PricingType    `json:"pricing_type" gorm:"type:varchar(10);default:'daily'"`
	DailyRate   float64        `json:"daily_rate"`
	MonthlyRate float64        `json:"monthly_rate"`
	NumBedrooms int            `json:"num_bedrooms"`
	ImageURL    string         `json:"image_url" gorm:"type:varchar(500)"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// ValidStatus reports whether s is a known property status
func ValidStatus(s PropertyStatus) bool {
	return s == PropertyAvailable || s == PropertyRented
}

// ValidPricingType reports whether p is a known pricing type
func ValidPricingType(p PricingType) bool {
	return p == PricingDaily || p == PricingMonthly
}
