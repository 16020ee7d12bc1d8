package models

import "github.com/shopspring/decimal"

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Transaction represents a single income or expense movement against a
// budget. Its type must agree with the polarity of the referenced category.
type Transaction struct {
	Base
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	CategoryID  uint            `gorm:"not null" json:"category_id"`
	BudgetID    uint            `gorm:"not null" json:"budget_id"`
	Type        TransactionType `gorm:"not null" json:"type"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Description string          `json:"description,omitempty"`

	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Budget   Budget   `gorm:"foreignKey:BudgetID" json:"budget,omitempty"`
}
