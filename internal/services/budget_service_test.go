package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/testutil"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestCreateBudget(t *testing.T) {
	t.Run("current_defaults_to_initial", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		budget, err := svc.CreateBudget(user.ID, BudgetInput{Name: "Vacation", Initial: dec("500")})
		testutil.AssertNoError(t, err)

		if budget.ID == 0 {
			t.Fatal("expected non-zero budget ID")
		}
		testutil.AssertDecimalEqual(t, dec("500"), budget.Current)
	})

	t.Run("explicit_current", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		budget, err := svc.CreateBudget(user.ID, BudgetInput{Name: "Vacation", Initial: dec("500"), Current: decPtr("250")})
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, dec("250"), budget.Current)
	})

	t.Run("missing_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, BudgetInput{Initial: dec("500")})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("negative_initial", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, BudgetInput{Name: "Bad", Initial: dec("-1")})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("initial_over_limit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, BudgetInput{Name: "Bad", Initial: dec("100000000.01")})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("goal_without_end_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, BudgetInput{Name: "Bad", Initial: dec("100"), Goal: decPtr("1000")})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("end_date_without_goal", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		end := time.Now().AddDate(0, 1, 0)
		_, err := svc.CreateBudget(user.ID, BudgetInput{Name: "Bad", Initial: dec("100"), EndAt: &end})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("goal_below_current", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		end := time.Now().AddDate(0, 1, 0)
		_, err := svc.CreateBudget(user.ID, BudgetInput{Name: "Bad", Initial: dec("500"), Goal: decPtr("100"), EndAt: &end})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("end_date_in_past", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		end := time.Now().AddDate(0, 0, -1)
		_, err := svc.CreateBudget(user.ID, BudgetInput{Name: "Bad", Initial: dec("100"), Goal: decPtr("1000"), EndAt: &end})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("valid_goal_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		end := time.Now().AddDate(0, 1, 0)
		budget, err := svc.CreateBudget(user.ID, BudgetInput{Name: "Savings", Initial: dec("200"), Goal: decPtr("1000"), EndAt: &end})
		testutil.AssertNoError(t, err)
		if budget.Goal == nil || budget.EndAt == nil {
			t.Fatal("expected goal and end date to be set")
		}
	})
}

func TestGetBudgetByID(t *testing.T) {
	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.GetBudgetByID(user.ID, 99999)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})

	t.Run("wrong_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, owner.ID, dec("100"))

		_, err := svc.GetBudgetByID(other.ID, budget.ID)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestUpdateBudget(t *testing.T) {
	t.Run("clears_goal_and_end_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		end := time.Now().AddDate(0, 1, 0)
		budget := testutil.CreateTestGoalBudget(t, db, user.ID, dec("100"), dec("1000"), end)

		updated, err := svc.UpdateBudget(user.ID, budget.ID, BudgetInput{Name: "No goal", Initial: dec("100")})
		testutil.AssertNoError(t, err)
		if updated.Goal != nil || updated.EndAt != nil {
			t.Errorf("expected goal and end date to be cleared, got %v / %v", updated.Goal, updated.EndAt)
		}
	})

	t.Run("resets_current", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, dec("100"))

		updated, err := svc.UpdateBudget(user.ID, budget.ID, BudgetInput{Name: budget.Name, Initial: dec("100"), Current: decPtr("42.50")})
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, dec("42.50"), updated.Current)
	})

	t.Run("invalid_input_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, dec("100"))

		_, err := svc.UpdateBudget(user.ID, budget.ID, BudgetInput{Name: budget.Name, Initial: dec("100"), Goal: decPtr("1000")})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestDeleteBudget(t *testing.T) {
	t.Run("deletes_unreferenced", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, dec("100"))

		testutil.AssertNoError(t, svc.DeleteBudget(user.ID, budget.ID))

		_, err := svc.GetBudgetByID(user.ID, budget.ID)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})

	t.Run("blocked_while_referenced", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, dec("100"))
		category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpenses)
		tx := testutil.CreateTestTransaction(t, db, user.ID, budget.ID, category.ID, models.TransactionTypeExpense, dec("10"))

		err := svc.DeleteBudget(user.ID, budget.ID)
		testutil.AssertAppError(t, err, "BUDGET_IN_USE")

		// Budget and transaction both survive the rejected delete.
		kept, err := svc.GetBudgetByID(user.ID, budget.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, dec("100"), kept.Current)

		var count int64
		db.Model(&models.Transaction{}).Where("id = ?", tx.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected transaction to survive, count = %d", count)
		}
	})
}

func TestGetTotalBalance(t *testing.T) {
	t.Run("sums_all_budgets", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestBudget(t, db, user.ID, dec("100.25"))
		testutil.CreateTestBudget(t, db, user.ID, dec("49.75"))

		total, err := svc.GetTotalBalance(user.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, dec("150"), total)
	})

	t.Run("no_budgets", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.GetTotalBalance(user.ID)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})

	t.Run("other_users_excluded", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		testutil.CreateTestBudget(t, db, user.ID, dec("100"))
		testutil.CreateTestBudget(t, db, other.ID, dec("900"))

		total, err := svc.GetTotalBalance(user.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, dec("100"), total)
	})
}

func TestGetBudgetPlan(t *testing.T) {
	t.Run("thirty_day_plan", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		end := time.Now().AddDate(0, 0, 30)
		budget := testutil.CreateTestGoalBudget(t, db, user.ID, dec("200"), dec("1000"), end)

		plan, err := svc.GetBudgetPlan(user.ID, budget.ID)
		testutil.AssertNoError(t, err)

		if plan.DaysRemaining != 30 {
			t.Errorf("expected 30 days remaining, got %d", plan.DaysRemaining)
		}
		testutil.AssertDecimalEqual(t, dec("26.67"), plan.DailyPlan)
	})

	t.Run("no_goal_configured", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, dec("100"))

		_, err := svc.GetBudgetPlan(user.ID, budget.ID)
		testutil.AssertAppError(t, err, "PLAN_NOT_CONFIGURED")
	})

	t.Run("deadline_passed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		end := time.Now().AddDate(0, 0, -5)
		budget := testutil.CreateTestGoalBudget(t, db, user.ID, dec("200"), dec("1000"), end)

		_, err := svc.GetBudgetPlan(user.ID, budget.ID)
		testutil.AssertAppError(t, err, "PLAN_DEADLINE_PASSED")
	})

	t.Run("end_date_today", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestGoalBudget(t, db, user.ID, dec("200"), dec("1000"), time.Now())

		_, err := svc.GetBudgetPlan(user.ID, budget.ID)
		testutil.AssertAppError(t, err, "PLAN_NO_DAYS_LEFT")
	})

	t.Run("goal_already_exceeded", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		end := time.Now().AddDate(0, 0, 10)
		// The fixture writes directly, so current can sit above goal the way
		// it would after ledger activity.
		budget := testutil.CreateTestGoalBudget(t, db, user.ID, dec("1500"), dec("1000"), end)

		_, err := svc.GetBudgetPlan(user.ID, budget.ID)
		testutil.AssertAppError(t, err, "PLAN_GOAL_EXCEEDED")
	})

	t.Run("gap_zero_gives_zero_plan", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		end := time.Now().AddDate(0, 0, 10)
		budget := testutil.CreateTestGoalBudget(t, db, user.ID, dec("1000"), dec("1000"), end)

		plan, err := svc.GetBudgetPlan(user.ID, budget.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimalEqual(t, dec("0"), plan.DailyPlan)
	})
}

func TestGetUserBudgets(t *testing.T) {
	t.Run("paginated", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		for i := 0; i < 5; i++ {
			testutil.CreateTestBudget(t, db, user.ID, dec("10"))
		}

		page, err := svc.GetUserBudgets(user.ID, pagination.PageRequest{Page: 1, PageSize: 3})
		testutil.AssertNoError(t, err)
		if len(page.Data) != 3 {
			t.Errorf("expected 3 budgets on page, got %d", len(page.Data))
		}
		if page.TotalItems != 5 {
			t.Errorf("expected 5 total items, got %d", page.TotalItems)
		}
	})

	t.Run("empty_list", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		page, err := svc.GetUserBudgets(user.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if len(page.Data) != 0 || page.TotalItems != 0 {
			t.Errorf("expected empty page, got %d items", page.TotalItems)
		}
	})
}
