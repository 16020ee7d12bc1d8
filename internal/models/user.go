package models

// UserRole represents the role claim carried in access tokens
type UserRole string

const (
	UserRoleDefault UserRole = "default"
	UserRolePremium UserRole = "premium"
	UserRoleAdmin   UserRole = "admin"
)

// User represents the user model in the database
type User struct {
	Base
	Username         string   `gorm:"uniqueIndex;not null" json:"username"`
	Email            string   `gorm:"uniqueIndex;not null" json:"email"`
	Password         string   `gorm:"not null" json:"-"`
	Role             UserRole `gorm:"not null;default:'default'" json:"role"`
	IsActive         bool     `gorm:"default:true" json:"is_active"`
	RefreshTokenHash string   `gorm:"size:64" json:"-"`

	Categories   []Category    `gorm:"foreignKey:UserID" json:"categories,omitempty"`
	Budgets      []Budget      `gorm:"foreignKey:UserID" json:"budgets,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
}
