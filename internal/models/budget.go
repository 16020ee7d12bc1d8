package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget represents a savings pot whose running balance stays consistent
// with the transactions that reference it. Current is mutated exclusively
// by the transaction service; goal and end date are either both set or
// both absent.
type Budget struct {
	Base
	UserID  uint             `gorm:"not null;index" json:"user_id"`
	Name    string           `gorm:"not null" json:"name"`
	Initial decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"initial"`
	Current decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"current"`
	Goal    *decimal.Decimal `gorm:"type:numeric(12,2)" json:"goal,omitempty"`
	EndAt   *time.Time       `gorm:"type:date" json:"end_at,omitempty"`

	Transactions []Transaction `gorm:"foreignKey:BudgetID" json:"transactions,omitempty"`
}
