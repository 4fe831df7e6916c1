package model

import (
	"time"

	"gorm.io/gorm"
)

// ExpenseCategory classifies a property cost
type ExpenseCategory string

const (
	ExpenseMaintenance ExpenseCategory = "maintenance"
	ExpenseUtilities   ExpenseCategory = "utilities"
	ExpenseInsurance   ExpenseCategory = "insurance"
	ExpenseTaxes       ExpenseCategory = "taxes"
	ExpenseMortgage    ExpenseCategory = "mortgage"
	ExpenseOther       ExpenseCategory = "other"
)

// ValidExpenseCategory reports whether c is a known expense category
func ValidExpenseCategory(c ExpenseCategory) bool {
	switch c {
	case ExpenseMaintenance, ExpenseUtilities, ExpenseInsurance,
		ExpenseTaxes, ExpenseMortgage, ExpenseOther:
		return true
	}
	return false
}

// Expense is a property-scoped cost record, independent of the invoice and
// payment flow.
type Expense struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	UserID        uint            `json:"user_id" gorm:"index;not null"`
	PropertyID    uint            `json:"property_id" gorm:"index"`
	Amount        float64         `json:"amount"`
	Category      ExpenseCategory `json:"category" gorm:"type:varchar(20);not null"`
	Description   string          `json:"description" gorm:"type:text"`
	Date          time.Time       `json:"date"`
	PaymentMethod string          `json:"payment_method" gorm:"type:varchar(50)"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `json:"-" gorm:"index"`
}
