package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// CalculatorHandler handles financial calculator requests.
type CalculatorHandler struct {
	calculatorService services.CalculatorServicer
}

// NewCalculatorHandler creates a new CalculatorHandler.
func NewCalculatorHandler(calculatorService services.CalculatorServicer) *CalculatorHandler {
	return &CalculatorHandler{calculatorService: calculatorService}
}

// SavingsRequest represents the savings calculator payload.
type SavingsRequest struct {
	InitialSum decimal.Decimal `json:"initial_sum"`
	AnnualRate decimal.Decimal `json:"annual_rate"`
	TermMonths int             `json:"term_months" binding:"required,min=1,max=120"`
}

// CreditRequest represents the credit calculator payload.
type CreditRequest struct {
	Principal  decimal.Decimal `json:"principal"`
	AnnualRate decimal.Decimal `json:"annual_rate"`
	TermMonths int             `json:"term_months" binding:"required,min=1"`
}

// PensionRequest represents the pension calculator payload.
type PensionRequest struct {
	InitialSum          decimal.Decimal `json:"initial_sum"`
	MonthlyContribution decimal.Decimal `json:"monthly_contribution"`
	AnnualRate          decimal.Decimal `json:"annual_rate"`
	TermYears           int             `json:"term_years" binding:"required,min=1,max=60"`
}

// TaxFOPRequest represents the FOP tax calculator payload.
type TaxFOPRequest struct {
	Income                    decimal.Decimal  `json:"income"`
	TaxGroup                  int              `json:"tax_group" binding:"required,tax_group"`
	UnifiedSocialContribution *decimal.Decimal `json:"unified_social_contribution"`
}

// BalanceForecastRequest represents the balance forecast payload.
type BalanceForecastRequest struct {
	ForecastMonths int `json:"forecast_months" binding:"required,min=1,max=120"`
}

// CalculateSavings handles the savings growth calculation.
// @Summary     Calculate savings growth
// @Description Compound an initial sum monthly over the given term
// @Tags        calculators
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SavingsRequest true "Savings parameters"
// @Success     200 {object} map[string]string "Final amount"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /calculators/savings [post]
func (h *CalculatorHandler) CalculateSavings(c *gin.Context) {
	var req SavingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	final, err := h.calculatorService.CalculateSavings(services.SavingsInput{
		InitialSum: req.InitialSum,
		AnnualRate: req.AnnualRate,
		TermMonths: req.TermMonths,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"final_amount": final})
}

// CalculateCredit handles the credit amortization calculation.
// @Summary     Calculate credit
// @Description Compute the annuity payment and full amortization schedule
// @Tags        calculators
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreditRequest true "Credit parameters"
// @Success     200 {object} services.CreditResult "Payment, totals, and schedule"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /calculators/credit [post]
func (h *CalculatorHandler) CalculateCredit(c *gin.Context) {
	var req CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.calculatorService.CalculateCredit(services.CreditInput{
		Principal:  req.Principal,
		AnnualRate: req.AnnualRate,
		TermMonths: req.TermMonths,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CalculatePension handles the pension accumulation calculation.
// @Summary     Calculate pension savings
// @Description Project a retirement fund from an initial sum and monthly contributions
// @Tags        calculators
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body PensionRequest true "Pension parameters"
// @Success     200 {object} map[string]string "Final amount"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /calculators/pension [post]
func (h *CalculatorHandler) CalculatePension(c *gin.Context) {
	var req PensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	final, err := h.calculatorService.CalculatePension(services.PensionInput{
		InitialSum:          req.InitialSum,
		MonthlyContribution: req.MonthlyContribution,
		AnnualRate:          req.AnnualRate,
		TermYears:           req.TermYears,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"final_amount": final})
}

// CalculateTaxFOP handles the flat-rate tax calculation.
// @Summary     Calculate FOP tax
// @Description Compute the flat tax for a private entrepreneur in group 3 or 5
// @Tags        calculators
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TaxFOPRequest true "Tax parameters"
// @Success     200 {object} services.TaxResult "Tax amounts"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /calculators/tax-fop [post]
func (h *CalculatorHandler) CalculateTaxFOP(c *gin.Context) {
	var req TaxFOPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.calculatorService.CalculateTaxFOP(services.TaxInput{
		Income:                    req.Income,
		TaxGroup:                  req.TaxGroup,
		UnifiedSocialContribution: req.UnifiedSocialContribution,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ForecastBalance handles the balance forecast calculation.
// @Summary     Forecast balance
// @Description Project the combined budget balance forward using average monthly surplus
// @Tags        calculators
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BalanceForecastRequest true "Forecast horizon"
// @Success     200 {object} services.BalanceForecast "Forecast details"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /calculators/balance-forecast [post]
func (h *CalculatorHandler) ForecastBalance(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BalanceForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	forecast, err := h.calculatorService.ForecastBalance(userID, req.ForecastMonths)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, forecast)
}
