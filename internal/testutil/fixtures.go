package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	n := nextID()
	return CreateTestUserWithEmail(t, db, fmt.Sprintf("user%d@test.com", n))
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Username: fmt.Sprintf("testuser%d", nextID()),
		Email:    email,
		Password: string(hash),
		Role:     models.UserRoleDefault,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID uint, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestBudget creates a budget with the given initial amount; the
// current amount starts equal to it.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID uint, initial decimal.Decimal) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:  userID,
		Name:    fmt.Sprintf("Test Budget %d", nextID()),
		Initial: initial,
		Current: initial,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestGoalBudget creates a budget configured with a savings goal and
// end date.
func CreateTestGoalBudget(t *testing.T, db *gorm.DB, userID uint, current, goal decimal.Decimal, endAt time.Time) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:  userID,
		Name:    fmt.Sprintf("Test Goal Budget %d", nextID()),
		Initial: current,
		Current: current,
		Goal:    &goal,
		EndAt:   &endAt,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test goal budget: %v", err)
	}
	return budget
}

// CreateTestTransaction creates a transaction row directly, bypassing the
// ledger. The budget's current amount is not adjusted.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, budgetID, categoryID uint, txType models.TransactionType, amount decimal.Decimal) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:     userID,
		BudgetID:   budgetID,
		CategoryID: categoryID,
		Type:       txType,
		Amount:     amount,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestTransactionAt creates a transaction row with a specific creation
// time, for history-dependent calculations.
func CreateTestTransactionAt(t *testing.T, db *gorm.DB, userID, budgetID, categoryID uint, txType models.TransactionType, amount decimal.Decimal, createdAt time.Time) *models.Transaction {
	t.Helper()

	tx := CreateTestTransaction(t, db, userID, budgetID, categoryID, txType, amount)
	if err := db.Model(tx).Update("created_at", createdAt).Error; err != nil {
		t.Fatalf("failed to backdate test transaction: %v", err)
	}
	tx.CreatedAt = createdAt
	return tx
}
