package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

var (
	decimalOne     = decimal.NewFromInt(1)
	decimalHundred = decimal.NewFromInt(100)
	monthsPerYear  = decimal.NewFromInt(12)
)

// calculatorService implements the financial calculators. All arithmetic is
// fixed-precision decimal; exponents are always whole month counts, so Pow
// stays exact.
type calculatorService struct {
	db            *gorm.DB
	budgetService BudgetServicer
}

// NewCalculatorService creates a new CalculatorServicer.
func NewCalculatorService(db *gorm.DB, budgetService BudgetServicer) CalculatorServicer {
	return &calculatorService{db: db, budgetService: budgetService}
}

// monthlyRate converts an annual percentage rate to a monthly fraction.
func monthlyRate(annualRate decimal.Decimal) decimal.Decimal {
	return annualRate.Div(decimalHundred).Div(monthsPerYear)
}

func validateRateAndTerm(rate decimal.Decimal, term int) error {
	if rate.IsNegative() || rate.GreaterThan(decimalHundred) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "rate must be between 0 and 100")
	}
	if term <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "term must be positive")
	}
	return nil
}

// CalculateSavings compounds an initial deposit monthly at the given annual
// rate and returns the final amount rounded to two decimal places.
func (s *calculatorService) CalculateSavings(in SavingsInput) (decimal.Decimal, error) {
	if in.InitialSum.IsNegative() {
		return decimal.Zero, apperrors.WithMessage(apperrors.ErrInvalidInput, "initial sum must not be negative")
	}
	if err := validateRateAndTerm(in.AnnualRate, in.TermMonths); err != nil {
		return decimal.Zero, err
	}

	growth := decimalOne.Add(monthlyRate(in.AnnualRate)).Pow(decimal.NewFromInt(int64(in.TermMonths)))
	return in.InitialSum.Mul(growth).Round(2), nil
}

// CalculateCredit computes the annuity payment for a loan and the full
// month-by-month amortization schedule. Each row is rounded independently;
// the running balance itself stays unrounded so errors do not accumulate.
func (s *calculatorService) CalculateCredit(in CreditInput) (*CreditResult, error) {
	if !in.Principal.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "principal must be greater than 0")
	}
	if err := validateRateAndTerm(in.AnnualRate, in.TermMonths); err != nil {
		return nil, err
	}

	n := decimal.NewFromInt(int64(in.TermMonths))
	r := monthlyRate(in.AnnualRate)

	var payment decimal.Decimal
	if r.IsZero() {
		payment = in.Principal.Div(n)
	} else {
		// payment = P * r * (1+r)^n / ((1+r)^n - 1)
		compound := decimalOne.Add(r).Pow(n)
		payment = in.Principal.Mul(r).Mul(compound).Div(compound.Sub(decimalOne))
	}

	schedule := make([]CreditScheduleRow, 0, in.TermMonths)
	balance := in.Principal
	for month := 1; month <= in.TermMonths; month++ {
		interest := balance.Mul(r)
		principalPart := payment.Sub(interest)
		balance = balance.Sub(principalPart)
		shownBalance := balance
		if shownBalance.IsNegative() {
			// Rounding residue can push the final balance a hair below zero.
			shownBalance = decimal.Zero
		}
		schedule = append(schedule, CreditScheduleRow{
			Month:            month,
			MonthlyPayment:   payment.Round(2),
			PrincipalPayment: principalPart.Round(2),
			InterestPayment:  interest.Round(2),
			RemainingBalance: shownBalance.Round(2),
		})
	}

	totalPayment := payment.Mul(n)
	return &CreditResult{
		MonthlyPayment:   payment.Round(2),
		TotalPayment:     totalPayment.Round(2),
		TotalOverpayment: totalPayment.Sub(in.Principal).Round(2),
		Schedule:         schedule,
	}, nil
}

// CalculatePension projects a retirement fund: the initial sum compounds
// monthly, and each monthly contribution grows as an ordinary annuity.
func (s *calculatorService) CalculatePension(in PensionInput) (decimal.Decimal, error) {
	if in.InitialSum.IsNegative() || in.MonthlyContribution.IsNegative() {
		return decimal.Zero, apperrors.WithMessage(apperrors.ErrInvalidInput, "amounts must not be negative")
	}
	if err := validateRateAndTerm(in.AnnualRate, in.TermYears); err != nil {
		return decimal.Zero, err
	}

	months := decimal.NewFromInt(int64(in.TermYears) * 12)
	r := monthlyRate(in.AnnualRate)

	if r.IsZero() {
		return in.InitialSum.Add(in.MonthlyContribution.Mul(months)).Round(2), nil
	}

	compound := decimalOne.Add(r).Pow(months)
	fromInitial := in.InitialSum.Mul(compound)
	// contribution * ((1+r)^n - 1) / r
	fromContributions := in.MonthlyContribution.Mul(compound.Sub(decimalOne)).Div(r)
	return fromInitial.Add(fromContributions).Round(2), nil
}

// CalculateTaxFOP computes the flat tax for a private entrepreneur. The tax
// group number doubles as the percentage rate. When a unified social
// contribution is supplied it is added into the combined total.
func (s *calculatorService) CalculateTaxFOP(in TaxInput) (*TaxResult, error) {
	if in.Income.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "income must not be negative")
	}
	if in.TaxGroup != 3 && in.TaxGroup != 5 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "tax group must be 3 or 5")
	}

	taxAmount := in.Income.Mul(decimal.NewFromInt(int64(in.TaxGroup))).Div(decimalHundred).Round(2)
	result := &TaxResult{TaxAmount: taxAmount}

	if in.UnifiedSocialContribution != nil {
		if in.UnifiedSocialContribution.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unified social contribution must not be negative")
		}
		usc := in.UnifiedSocialContribution.Round(2)
		total := taxAmount.Add(usc)
		result.UnifiedSocialContribution = &usc
		result.TotalTax = &total
	}

	return result, nil
}

type monthKey struct {
	year  int
	month time.Month
}

// ForecastBalance projects the user's combined budget balance forward by
// forecastMonths using the average monthly income and expense across the
// user's transaction history. Months with no transactions of a given type do
// not count toward that type's average. A user with no budgets forecasts
// from a zero balance.
func (s *calculatorService) ForecastBalance(userID uint, forecastMonths int) (*BalanceForecast, error) {
	if forecastMonths <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "forecast months must be positive")
	}

	balance, err := s.budgetService.GetTotalBalance(userID)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok && appErr.Code == apperrors.ErrBudgetNotFound.Code {
			balance = decimal.Zero
		} else {
			return nil, err
		}
	}

	var transactions []models.Transaction
	if err := s.db.Where("user_id = ?", userID).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Group amounts by calendar month per type; the grouping is done here
	// rather than in SQL to stay dialect-independent.
	incomeByMonth := make(map[monthKey]decimal.Decimal)
	expenseByMonth := make(map[monthKey]decimal.Decimal)
	for i := range transactions {
		t := &transactions[i]
		key := monthKey{year: t.CreatedAt.Year(), month: t.CreatedAt.Month()}
		switch t.Type {
		case models.TransactionTypeIncome:
			incomeByMonth[key] = incomeByMonth[key].Add(t.Amount)
		case models.TransactionTypeExpense:
			expenseByMonth[key] = expenseByMonth[key].Add(t.Amount)
		}
	}

	avgIncome := averageByMonth(incomeByMonth)
	avgExpense := averageByMonth(expenseByMonth)
	surplus := avgIncome.Sub(avgExpense)
	forecasted := balance.Add(surplus.Mul(decimal.NewFromInt(int64(forecastMonths)))).Round(2)

	return &BalanceForecast{
		CurrentBalance:    balance,
		AvgMonthlyIncome:  avgIncome,
		AvgMonthlyExpense: avgExpense,
		MonthlySurplus:    surplus.Round(2),
		ForecastedBalance: forecasted,
	}, nil
}

func averageByMonth(byMonth map[monthKey]decimal.Decimal) decimal.Decimal {
	if len(byMonth) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, sum := range byMonth {
		total = total.Add(sum)
	}
	return total.Div(decimal.NewFromInt(int64(len(byMonth)))).Round(2)
}
