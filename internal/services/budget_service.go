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

// maxBudgetAmount bounds initial, current, and goal amounts.
var maxBudgetAmount = decimal.NewFromInt(100_000_000)

// budgetService handles budget-related business logic and owns the running
// balance ledger.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// dateOnly strips the time-of-day component. UTC keeps day arithmetic exact
// across DST transitions.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// validateBudgetInput enforces the budget invariants: amount bounds, the
// goal/end-date pairing, goal covering current, and a non-past end date.
func validateBudgetInput(initial, current decimal.Decimal, goal *decimal.Decimal, createdAt time.Time, endAt *time.Time) error {
	if initial.IsNegative() || initial.GreaterThan(maxBudgetAmount) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "initial amount must be between 0 and 100000000")
	}
	if current.IsNegative() || current.GreaterThan(maxBudgetAmount) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "current amount must be between 0 and 100000000")
	}
	if (goal == nil) != (endAt == nil) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "goal and end date must be provided together")
	}
	if goal != nil {
		if goal.IsNegative() || goal.GreaterThan(maxBudgetAmount) {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "goal amount must be between 0 and 100000000")
		}
		if goal.LessThan(current) {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "goal amount must be greater than or equal to current amount")
		}
	}
	if endAt != nil {
		end := dateOnly(*endAt)
		if end.Before(dateOnly(createdAt)) {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "end date must be on or after the creation date")
		}
		if end.Before(dateOnly(time.Now())) {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "end date must be today or in the future")
		}
	}
	return nil
}

// CreateBudget creates a new budget. Current defaults to the initial amount
// when not supplied.
func (s *budgetService) CreateBudget(userID uint, input BudgetInput) (*models.Budget, error) {
	if input.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
	}

	current := input.Initial
	if input.Current != nil {
		current = *input.Current
	}

	createdAt := time.Now()
	if input.CreatedAt != nil {
		createdAt = *input.CreatedAt
	}

	if err := validateBudgetInput(input.Initial, current, input.Goal, createdAt, input.EndAt); err != nil {
		return nil, err
	}

	budget := &models.Budget{
		UserID:  userID,
		Name:    input.Name,
		Initial: input.Initial,
		Current: current,
		Goal:    input.Goal,
		EndAt:   input.EndAt,
	}
	budget.CreatedAt = createdAt

	if err := s.db.Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return budget, nil
}

// GetUserBudgets returns a paginated list of budgets for the user.
func (s *budgetService) GetUserBudgets(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Scopes(pagination.Paginate(page)).Order("created_at DESC").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget replaces a budget's fields with the supplied input, applying
// the same invariants as creation. This is the one path besides the ledger
// that may reset Current.
func (s *budgetService) UpdateBudget(userID, budgetID uint, input BudgetInput) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	if input.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget name is required")
	}

	current := input.Initial
	if input.Current != nil {
		current = *input.Current
	}

	createdAt := budget.CreatedAt
	if input.CreatedAt != nil {
		createdAt = *input.CreatedAt
	}

	if err := validateBudgetInput(input.Initial, current, input.Goal, createdAt, input.EndAt); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":       input.Name,
		"initial":    input.Initial,
		"current":    current,
		"goal":       input.Goal,
		"end_at":     input.EndAt,
		"created_at": createdAt,
	}

	if err := s.db.Model(budget).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetBudgetByID(userID, budgetID)
}

// DeleteBudget deletes a budget. Deletion is rejected while transactions
// still reference the budget.
func (s *budgetService) DeleteBudget(userID, budgetID uint) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	var refCount int64
	if err := s.db.Model(&models.Transaction{}).Where("budget_id = ?", budgetID).Count(&refCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if refCount > 0 {
		return apperrors.ErrBudgetInUse
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetTotalBalance sums Current across all of the user's budgets. An owner
// with no budgets at all is a distinct not-found outcome, not a zero total.
func (s *budgetService) GetTotalBalance(userID uint) (decimal.Decimal, error) {
	var budgets []models.Budget
	if err := s.db.Where("user_id = ?", userID).Find(&budgets).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if len(budgets) == 0 {
		return decimal.Zero, apperrors.WithMessage(apperrors.ErrBudgetNotFound, "No budgets found for the user")
	}

	total := decimal.Zero
	for i := range budgets {
		total = total.Add(budgets[i].Current)
	}
	return total, nil
}

// GetBudgetPlan computes the per-day savings rate required to reach the
// budget's goal by its end date.
func (s *budgetService) GetBudgetPlan(userID, budgetID uint) (*BudgetPlan, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	if budget.Goal == nil || budget.EndAt == nil {
		return nil, apperrors.ErrPlanNotConfigured
	}

	today := dateOnly(time.Now())
	endAt := dateOnly(*budget.EndAt)

	if today.After(endAt) {
		return nil, apperrors.ErrPlanDeadlinePassed
	}

	daysRemaining := int(endAt.Sub(today).Hours() / 24)
	if daysRemaining <= 0 {
		return nil, apperrors.ErrPlanNoDaysLeft
	}

	gap := budget.Goal.Sub(budget.Current)
	if gap.IsNegative() {
		return nil, apperrors.ErrPlanGoalExceeded
	}

	dailyPlan := gap.Div(decimal.NewFromInt(int64(daysRemaining))).Round(2)

	return &BudgetPlan{
		DailyPlan:     dailyPlan,
		DaysRemaining: daysRemaining,
		EndAt:         endAt,
		Goal:          *budget.Goal,
		Current:       budget.Current,
	}, nil
}

// ApplyDelta adjusts a budget's running balance for one transaction: income
// adds the amount, expense subtracts it. This is the sole mutation path for
// Current during transaction activity and must run inside the same database
// transaction as the transaction-row write.
func (s *budgetService) ApplyDelta(tx *gorm.DB, budget *models.Budget, txType models.TransactionType, amount decimal.Decimal) error {
	var newCurrent decimal.Decimal
	switch txType {
	case models.TransactionTypeIncome:
		newCurrent = budget.Current.Add(amount)
	case models.TransactionTypeExpense:
		newCurrent = budget.Current.Sub(amount)
	default:
		return apperrors.ErrInvalidTransactionType
	}

	if err := tx.Model(budget).Update("current", newCurrent).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	budget.Current = newCurrent
	return nil
}
