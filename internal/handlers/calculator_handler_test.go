package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// --- mock calculator service ---

type mockCalculatorService struct {
	calculateSavingsFn func(in services.SavingsInput) (decimal.Decimal, error)
	calculateCreditFn  func(in services.CreditInput) (*services.CreditResult, error)
	calculatePensionFn func(in services.PensionInput) (decimal.Decimal, error)
	calculateTaxFOPFn  func(in services.TaxInput) (*services.TaxResult, error)
	forecastBalanceFn  func(userID uint, forecastMonths int) (*services.BalanceForecast, error)
}

func (m *mockCalculatorService) CalculateSavings(in services.SavingsInput) (decimal.Decimal, error) {
	if m.calculateSavingsFn != nil {
		return m.calculateSavingsFn(in)
	}
	return decimal.Zero, nil
}

func (m *mockCalculatorService) CalculateCredit(in services.CreditInput) (*services.CreditResult, error) {
	if m.calculateCreditFn != nil {
		return m.calculateCreditFn(in)
	}
	return &services.CreditResult{}, nil
}

func (m *mockCalculatorService) CalculatePension(in services.PensionInput) (decimal.Decimal, error) {
	if m.calculatePensionFn != nil {
		return m.calculatePensionFn(in)
	}
	return decimal.Zero, nil
}

func (m *mockCalculatorService) CalculateTaxFOP(in services.TaxInput) (*services.TaxResult, error) {
	if m.calculateTaxFOPFn != nil {
		return m.calculateTaxFOPFn(in)
	}
	return &services.TaxResult{}, nil
}

func (m *mockCalculatorService) ForecastBalance(userID uint, forecastMonths int) (*services.BalanceForecast, error) {
	if m.forecastBalanceFn != nil {
		return m.forecastBalanceFn(userID, forecastMonths)
	}
	return &services.BalanceForecast{}, nil
}

var _ services.CalculatorServicer = (*mockCalculatorService)(nil)

func setupCalculatorRouter(handler *CalculatorHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(1))
	auth.POST("/calculators/savings", handler.CalculateSavings)
	auth.POST("/calculators/credit", handler.CalculateCredit)
	auth.POST("/calculators/pension", handler.CalculatePension)
	auth.POST("/calculators/tax-fop", handler.CalculateTaxFOP)
	auth.POST("/calculators/balance-forecast", handler.ForecastBalance)
	return r
}

func TestCalculatorHandler_CalculateSavings(t *testing.T) {
	t.Run("returns final amount", func(t *testing.T) {
		svc := &mockCalculatorService{
			calculateSavingsFn: func(in services.SavingsInput) (decimal.Decimal, error) {
				if in.TermMonths != 12 {
					t.Errorf("expected 12 months, got %d", in.TermMonths)
				}
				return decimal.RequireFromString("1126.83"), nil
			},
		}
		handler := NewCalculatorHandler(svc)
		r := setupCalculatorRouter(handler)

		rec := doRequest(r, "POST", "/calculators/savings",
			`{"initial_sum":"1000","annual_rate":"12","term_months":12}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["final_amount"] != "1126.83" {
			t.Errorf("expected 1126.83, got %v", result["final_amount"])
		}
	})

	t.Run("returns 400 on term over limit", func(t *testing.T) {
		handler := NewCalculatorHandler(&mockCalculatorService{})
		r := setupCalculatorRouter(handler)

		rec := doRequest(r, "POST", "/calculators/savings",
			`{"initial_sum":"1000","annual_rate":"12","term_months":121}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on negative rate", func(t *testing.T) {
		svc := &mockCalculatorService{
			calculateSavingsFn: func(_ services.SavingsInput) (decimal.Decimal, error) {
				return decimal.Zero, apperrors.WithMessage(apperrors.ErrInvalidInput, "rate must be between 0 and 100")
			},
		}
		handler := NewCalculatorHandler(svc)
		r := setupCalculatorRouter(handler)

		rec := doRequest(r, "POST", "/calculators/savings",
			`{"initial_sum":"1000","annual_rate":"-1","term_months":12}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestCalculatorHandler_CalculateCredit(t *testing.T) {
	t.Run("returns schedule", func(t *testing.T) {
		svc := &mockCalculatorService{
			calculateCreditFn: func(in services.CreditInput) (*services.CreditResult, error) {
				return &services.CreditResult{
					MonthlyPayment:   decimal.RequireFromString("1066.19"),
					TotalPayment:     decimal.RequireFromString("12794.28"),
					TotalOverpayment: decimal.RequireFromString("794.28"),
					Schedule: []services.CreditScheduleRow{
						{Month: 1, MonthlyPayment: decimal.RequireFromString("1066.19")},
					},
				}, nil
			},
		}
		handler := NewCalculatorHandler(svc)
		r := setupCalculatorRouter(handler)

		rec := doRequest(r, "POST", "/calculators/credit",
			`{"principal":"12000","annual_rate":"12","term_months":12}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["monthly_payment"] != "1066.19" {
			t.Errorf("expected payment 1066.19, got %v", result["monthly_payment"])
		}
		schedule := result["payment_schedule"].([]interface{})
		if len(schedule) != 1 {
			t.Errorf("expected 1 schedule row, got %d", len(schedule))
		}
	})

	t.Run("returns 400 on missing term", func(t *testing.T) {
		handler := NewCalculatorHandler(&mockCalculatorService{})
		r := setupCalculatorRouter(handler)

		rec := doRequest(r, "POST", "/calculators/credit",
			`{"principal":"12000","annual_rate":"12"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on zero principal", func(t *testing.T) {
		svc := &mockCalculatorService{
			calculateCreditFn: func(_ services.CreditInput) (*services.CreditResult, error) {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "principal must be positive")
			},
		}
		handler := NewCalculatorHandler(svc)
		r := setupCalculatorRouter(handler)

		rec := doRequest(r, "POST", "/calculators/credit",
			`{"principal":"0","annual_rate":"12","term_months":12}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestCalculatorHandler_CalculatePension(t *testing.T) {
	t.Run("returns final amount", func(t *testing.T) {
		svc := &mockCalculatorService{
			calculatePensionFn: func(in services.PensionInput) (decimal.Decimal, error) {
				if in.TermYears != 2 {
					t.Errorf("expected 2 years, got %d", in.TermYears)
				}
				return decimal.RequireFromString("3400"), nil
			},
		}
		handler := NewCalculatorHandler(svc)
		r := setupCalculatorRouter(handler)

		rec := doRequest(r, "POST", "/calculators/pension",
			`{"initial_sum":"1000","monthly_contribution":"100","annual_rate":"0","term_years":2}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["final_amount"] != "3400" {
			t.Errorf("expected 3400, got %v", result["final_amount"])
		}
	})

	t.Run("returns 400 on years over limit", func(t *testing.T) {
		handler := NewCalculatorHandler(&mockCalculatorService{})
		r := setupCalculatorRouter(handler)

		rec := doRequest(r, "POST", "/calculators/pension",
			`{"initial_sum":"1000","monthly_contribution":"100","annual_rate":"5","term_years":61}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestCalculatorHandler_CalculateTaxFOP(t *testing.T) {
	t.Run("returns tax amounts", func(t *testing.T) {
		usc := decimal.RequireFromString("1430")
		total := decimal.RequireFromString("1930")
		svc := &mockCalculatorService{
			calculateTaxFOPFn: func(in services.TaxInput) (*services.TaxResult, error) {
				if in.TaxGroup != 5 {
					t.Errorf("expected group 5, got %d", in.TaxGroup)
				}
				return &services.TaxResult{
					TaxAmount:                 decimal.RequireFromString("500"),
					UnifiedSocialContribution: &usc,
					TotalTax:                  &total,
				}, nil
			},
		}
		handler := NewCalculatorHandler(svc)
		r := setupCalculatorRouter(handler)

		rec := doRequest(r, "POST", "/calculators/tax-fop",
			`{"income":"10000","tax_group":5,"unified_social_contribution":"1430"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["tax_amount"] != "500" {
			t.Errorf("expected tax 500, got %v", result["tax_amount"])
		}
		if result["total_tax"] != "1930" {
			t.Errorf("expected total 1930, got %v", result["total_tax"])
		}
	})

	t.Run("returns 400 on unsupported group", func(t *testing.T) {
		handler := NewCalculatorHandler(&mockCalculatorService{})
		r := setupCalculatorRouter(handler)

		rec := doRequest(r, "POST", "/calculators/tax-fop",
			`{"income":"10000","tax_group":4}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestCalculatorHandler_ForecastBalance(t *testing.T) {
	t.Run("passes user and horizon", func(t *testing.T) {
		var gotUserID uint
		var gotMonths int
		svc := &mockCalculatorService{
			forecastBalanceFn: func(userID uint, forecastMonths int) (*services.BalanceForecast, error) {
				gotUserID = userID
				gotMonths = forecastMonths
				return &services.BalanceForecast{
					CurrentBalance:    decimal.RequireFromString("500"),
					MonthlySurplus:    decimal.RequireFromString("90"),
					ForecastedBalance: decimal.RequireFromString("770"),
				}, nil
			},
		}
		handler := NewCalculatorHandler(svc)
		r := setupCalculatorRouter(handler)

		rec := doRequest(r, "POST", "/calculators/balance-forecast",
			`{"forecast_months":3}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotUserID != 1 || gotMonths != 3 {
			t.Errorf("expected user 1 horizon 3, got %d and %d", gotUserID, gotMonths)
		}
		result := parseJSON(t, rec)
		if result["forecasted_balance"] != "770" {
			t.Errorf("expected 770, got %v", result["forecasted_balance"])
		}
	})

	t.Run("returns 400 on zero horizon", func(t *testing.T) {
		handler := NewCalculatorHandler(&mockCalculatorService{})
		r := setupCalculatorRouter(handler)

		rec := doRequest(r, "POST", "/calculators/balance-forecast",
			`{"forecast_months":0}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
