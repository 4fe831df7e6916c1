package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User represents a landlord account stored in the database
type User struct {
	ID                   uint           `json:"id" gorm:"primaryKey"`
	Email                string         `json:"email" gorm:"type:varchar(100);uniqueIndex"`
	Password             string         `json:"-" gorm:"type:varchar(255)"`
	FullName             string         `json:"full_name" gorm:"type:varchar(100)"`
	Phone                string         `json:"phone" gorm:"type:varchar(30)"`
	City                 string         `json:"city" gorm:"type:varchar(100)"`
	CompanyName          string         `json:"company_name" gorm:"type:varchar(100)"`
	Notes                datatypes.JSON `json:"notes" gorm:"type:jsonb"`
	NotificationsEnabled bool           `json:"notifications_enabled" gorm:"default:true"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `json:"-" gorm:"index"`
}
