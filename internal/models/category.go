package models

// CategoryType represents the polarity of a category
type CategoryType string

const (
	CategoryTypeIncomes  CategoryType = "incomes"
	CategoryTypeExpenses CategoryType = "expenses"
)

// Matches reports whether a transaction of the given type may reference
// a category of this polarity.
func (t CategoryType) Matches(txType TransactionType) bool {
	switch t {
	case CategoryTypeIncomes:
		return txType == TransactionTypeIncome
	case CategoryTypeExpenses:
		return txType == TransactionTypeExpense
	}
	return false
}

// Category represents a transaction category
type Category struct {
	Base
	UserID      uint         `gorm:"not null;index" json:"user_id"`
	Name        string       `gorm:"not null" json:"name"`
	Description string       `json:"description,omitempty"`
	Type        CategoryType `gorm:"not null" json:"type"`

	Transactions []Transaction `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
}
