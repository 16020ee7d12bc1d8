package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(username, email, password string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	ChangePassword(userID uint, oldPassword, newPassword string) error
	UpdateProfile(userID uint, username, email string) (*models.User, error)
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID uint, name string, categoryType models.CategoryType, description string) (*models.Category, error)
	GetUserCategories(userID uint, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID uint) (*models.Category, error)
	UpdateCategory(userID, categoryID uint, name, description string) (*models.Category, error)
	DeleteCategory(userID, categoryID uint) error
}

// BudgetInput holds the full set of budget fields for create and update.
// Current defaults to Initial when nil; CreatedAt defaults to today.
type BudgetInput struct {
	Name      string
	Initial   decimal.Decimal
	Current   *decimal.Decimal
	Goal      *decimal.Decimal
	CreatedAt *time.Time
	EndAt     *time.Time
}

// BudgetPlan is the daily savings rate needed to close the gap between a
// budget's current amount and its goal by the end date.
type BudgetPlan struct {
	DailyPlan     decimal.Decimal `json:"daily_plan"`
	DaysRemaining int             `json:"days_remaining"`
	EndAt         time.Time       `json:"end_at"`
	Goal          decimal.Decimal `json:"goal"`
	Current       decimal.Decimal `json:"current"`
}

// BudgetServicer defines the contract for budget-related business logic,
// including the ledger operations that keep Budget.Current consistent.
type BudgetServicer interface {
	CreateBudget(userID uint, input BudgetInput) (*models.Budget, error)
	GetUserBudgets(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID uint) (*models.Budget, error)
	UpdateBudget(userID, budgetID uint, input BudgetInput) (*models.Budget, error)
	DeleteBudget(userID, budgetID uint) error
	GetTotalBalance(userID uint) (decimal.Decimal, error)
	GetBudgetPlan(userID, budgetID uint) (*BudgetPlan, error)
	ApplyDelta(tx *gorm.DB, budget *models.Budget, txType models.TransactionType, amount decimal.Decimal) error
}

// TransactionUpdate holds optional field changes for an existing transaction.
// Nil fields are left unchanged.
type TransactionUpdate struct {
	Amount      *decimal.Decimal
	Type        *models.TransactionType
	CategoryID  *uint
	Description *string
	CreatedAt   *time.Time
}

// TransactionServicer defines the contract for transaction-related business
// logic. Every mutation keeps the owning budget's running balance in step
// with the transaction rows, atomically.
type TransactionServicer interface {
	CreateTransaction(userID, budgetID, categoryID uint, txType models.TransactionType, amount decimal.Decimal, description string, createdAt time.Time) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID uint, update TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) error
	GetUserTransactions(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	GetBudgetTransactionsByType(userID, budgetID uint, txType models.TransactionType, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], decimal.Decimal, error)
	GetCategoryTransactions(userID, categoryID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
}

// SavingsInput holds parameters for the savings growth calculation.
type SavingsInput struct {
	InitialSum decimal.Decimal
	AnnualRate decimal.Decimal
	TermMonths int
}

// CreditInput holds parameters for the credit amortization calculation.
type CreditInput struct {
	Principal  decimal.Decimal
	AnnualRate decimal.Decimal
	TermMonths int
}

// CreditScheduleRow is one month of an amortization schedule. Values are
// rounded per row; rounding is not carried forward.
type CreditScheduleRow struct {
	Month            int             `json:"month"`
	MonthlyPayment   decimal.Decimal `json:"monthly_payment"`
	PrincipalPayment decimal.Decimal `json:"principal_payment"`
	InterestPayment  decimal.Decimal `json:"interest_payment"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
}

// CreditResult is the full output of the credit calculator.
type CreditResult struct {
	MonthlyPayment   decimal.Decimal     `json:"monthly_payment"`
	TotalPayment     decimal.Decimal     `json:"total_payment"`
	TotalOverpayment decimal.Decimal     `json:"total_overpayment"`
	Schedule         []CreditScheduleRow `json:"payment_schedule"`
}

// PensionInput holds parameters for the pension accumulation calculation.
type PensionInput struct {
	InitialSum          decimal.Decimal
	MonthlyContribution decimal.Decimal
	AnnualRate          decimal.Decimal
	TermYears           int
}

// TaxInput holds parameters for the flat-rate tax calculation. The group
// value doubles as the percentage rate.
type TaxInput struct {
	Income                    decimal.Decimal
	TaxGroup                  int
	UnifiedSocialContribution *decimal.Decimal
}

// TaxResult is the output of the tax calculator. The contribution and the
// combined total are present only when a contribution was supplied.
type TaxResult struct {
	TaxAmount                 decimal.Decimal  `json:"tax_amount"`
	UnifiedSocialContribution *decimal.Decimal `json:"unified_social_contribution,omitempty"`
	TotalTax                  *decimal.Decimal `json:"total_tax,omitempty"`
}

// BalanceForecast projects the user's total budget balance forward using
// the average monthly surplus derived from transaction history.
type BalanceForecast struct {
	CurrentBalance    decimal.Decimal `json:"current_balance"`
	AvgMonthlyIncome  decimal.Decimal `json:"avg_monthly_income"`
	AvgMonthlyExpense decimal.Decimal `json:"avg_monthly_expense"`
	MonthlySurplus    decimal.Decimal `json:"monthly_surplus"`
	ForecastedBalance decimal.Decimal `json:"forecasted_balance"`
}

// CalculatorServicer defines the contract for the financial calculators.
// All operations are deterministic; ForecastBalance is the only one that
// reads stored data.
type CalculatorServicer interface {
	CalculateSavings(in SavingsInput) (decimal.Decimal, error)
	CalculateCredit(in CreditInput) (*CreditResult, error)
	CalculatePension(in PensionInput) (decimal.Decimal, error)
	CalculateTaxFOP(in TaxInput) (*TaxResult, error)
	ForecastBalance(userID uint, forecastMonths int) (*BalanceForecast, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
}
