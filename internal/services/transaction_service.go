package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// maxTransactionAmount bounds a single transaction amount.
var maxTransactionAmount = decimal.NewFromInt(1_000_000)

// transactionService handles transaction-related business logic. It drives
// the budget ledger so that the transaction rows and the budget's running
// balance always move together.
type transactionService struct {
	db              *gorm.DB
	categoryService CategoryServicer
	budgetService   BudgetServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, categoryService CategoryServicer, budgetService BudgetServicer) TransactionServicer {
	return &transactionService{
		db:              db,
		categoryService: categoryService,
		budgetService:   budgetService,
	}
}

func validateTransactionAmount(amount decimal.Decimal) error {
	if amount.IsNegative() || amount.GreaterThan(maxTransactionAmount) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be between 0 and 1000000")
	}
	return nil
}

// reverseType returns the transaction type that undoes the given one.
func reverseType(t models.TransactionType) (models.TransactionType, error) {
	switch t {
	case models.TransactionTypeIncome:
		return models.TransactionTypeExpense, nil
	case models.TransactionTypeExpense:
		return models.TransactionTypeIncome, nil
	}
	return "", apperrors.ErrInvalidTransactionType
}

// CreateTransaction creates a transaction and applies its delta to the
// owning budget's balance in a single database transaction.
func (s *transactionService) CreateTransaction(
	userID, budgetID, categoryID uint,
	txType models.TransactionType,
	amount decimal.Decimal,
	description string,
	createdAt time.Time,
) (*models.Transaction, error) {
	if err := validateTransactionAmount(amount); err != nil {
		return nil, err
	}

	category, err := s.categoryService.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}
	if !category.Type.Matches(txType) {
		return nil, apperrors.ErrCategoryTypeMismatch
	}

	budget, err := s.budgetService.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	transaction := &models.Transaction{
		UserID:      userID,
		CategoryID:  category.ID,
		BudgetID:    budget.ID,
		Type:        txType,
		Amount:      amount,
		Description: description,
	}
	transaction.CreatedAt = createdAt

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.budgetService.ApplyDelta(tx, budget, txType, amount)
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}

// UpdateTransaction applies partial field changes to a transaction. The old
// delta is reversed and the new one applied against the budget, both inside
// one database transaction, so an update is equivalent to deleting the old
// transaction and creating the new one.
func (s *transactionService) UpdateTransaction(userID, transactionID uint, update TransactionUpdate) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	oldAmount := transaction.Amount
	oldType := transaction.Type

	newType := oldType
	if update.Type != nil {
		newType = *update.Type
	}

	newAmount := oldAmount
	if update.Amount != nil {
		if err := validateTransactionAmount(*update.Amount); err != nil {
			return nil, err
		}
		newAmount = *update.Amount
	}

	// The polarity invariant must hold against whichever category the
	// transaction ends up referencing.
	categoryID := transaction.CategoryID
	if update.CategoryID != nil {
		categoryID = *update.CategoryID
	}
	if update.CategoryID != nil || newType != oldType {
		category, err := s.categoryService.GetCategoryByID(userID, categoryID)
		if err != nil {
			return nil, err
		}
		if !category.Type.Matches(newType) {
			return nil, apperrors.ErrCategoryTypeMismatch
		}
	}

	budget, err := s.budgetService.GetBudgetByID(userID, transaction.BudgetID)
	if err != nil {
		return nil, err
	}

	undoType, err := reverseType(oldType)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"amount":      newAmount,
		"type":        newType,
		"category_id": categoryID,
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.CreatedAt != nil {
		updates["created_at"] = *update.CreatedAt
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Undo what the old amount/type contributed, then apply the new
		// contribution.
		if err := s.budgetService.ApplyDelta(tx, budget, undoType, oldAmount); err != nil {
			return err
		}
		if err := s.budgetService.ApplyDelta(tx, budget, newType, newAmount); err != nil {
			return err
		}
		if err := tx.Model(transaction).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTransactionByID(userID, transactionID)
}

// DeleteTransaction deletes a transaction and reverses its delta on the
// owning budget, atomically.
func (s *transactionService) DeleteTransaction(userID, transactionID uint) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	budget, err := s.budgetService.GetBudgetByID(userID, transaction.BudgetID)
	if err != nil {
		return err
	}

	undoType, err := reverseType(transaction.Type)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return s.budgetService.ApplyDelta(tx, budget, undoType, transaction.Amount)
	})
}

// GetUserTransactions retrieves a paginated list of the user's transactions,
// newest first.
func (s *transactionService) GetUserTransactions(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetTransactionByID retrieves a transaction by ID for a specific user.
func (s *transactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// GetBudgetTransactionsByType lists one budget's transactions of a given
// type, newest first, along with the total amount across all matching rows.
func (s *transactionService) GetBudgetTransactionsByType(
	userID, budgetID uint,
	txType models.TransactionType,
	page pagination.PageRequest,
) (*pagination.PageResponse[models.Transaction], decimal.Decimal, error) {
	// Verify the budget belongs to the user first.
	if _, err := s.budgetService.GetBudgetByID(userID, budgetID); err != nil {
		return nil, decimal.Zero, err
	}

	page.Defaults()

	// Pluck narrows the statement's SELECT clause, so every query below
	// runs on its own chain.
	filtered := func() *gorm.DB {
		return s.db.Model(&models.Transaction{}).
			Where("user_id = ? AND budget_id = ? AND type = ?", userID, budgetID, txType)
	}

	var totalItems int64
	if err := filtered().Count(&totalItems).Error; err != nil {
		return nil, decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var amounts []decimal.Decimal
	if err := filtered().Pluck("amount", &amounts).Error; err != nil {
		return nil, decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}

	var transactions []models.Transaction
	if err := filtered().Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, total, nil
}

// GetCategoryTransactions lists one category's transactions, newest first.
func (s *transactionService) GetCategoryTransactions(userID, categoryID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if _, err := s.categoryService.GetCategoryByID(userID, categoryID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ? AND category_id = ?", userID, categoryID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}
