package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"savvy/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *SQLiteRepository, id string) core.User {
	t.Helper()
	u := core.User{
		ID:           id,
		Email:        id + "@example.com",
		PasswordHash: "x",
		Currency:     "USD",
		CreatedAt:    time.Now(),
	}
	if err := repo.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestUsers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, repo, "u1")

	got, err := repo.GetUserByEmail(ctx, u.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != u.ID || got.Currency != "USD" {
		t.Fatalf("got user %+v", got)
	}

	if _, err := repo.GetUserByID(ctx, "u1"); err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if _, err := repo.GetUserByEmail(ctx, "nobody@example.com"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	dup := u
	dup.ID = "u1-dup"
	if err := repo.CreateUser(ctx, dup); err != ErrDuplicateEmail {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestTransactionCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1")

	tx := core.Transaction{
		ID:          "t1",
		UserID:      "u1",
		Kind:        core.Expense,
		Amount:      core.Money{Cents: -1250},
		Category:    "groceries",
		Description: "weekly shop",
		Date:        core.NewDate(2026, 3, 15),
		Currency:    "USD",
		CreatedAt:   time.Now(),
	}
	if err := repo.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	got, err := repo.GetTransaction(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if got.Amount.Cents != -1250 || got.Category != "groceries" {
		t.Fatalf("got %+v", got)
	}
	if got.Date.Key() != "2026-03-15" {
		t.Fatalf("date round trip: got %q", got.Date.Key())
	}

	got.Amount.Cents = -2000
	got.Category = "dining"
	if err := repo.UpdateTransaction(ctx, got); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}

	list, err := repo.ListTransactions(ctx, "u1")
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(list) != 1 || list[0].Category != "dining" {
		t.Fatalf("list after update: %+v", list)
	}

	if err := repo.DeleteTransaction(ctx, "u1", "t1"); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if err := repo.DeleteTransaction(ctx, "u1", "t1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestTransactionUserIsolation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1")
	seedUser(t, repo, "u2")

	tx := core.Transaction{
		ID:        "t1",
		UserID:    "u1",
		Kind:      core.Income,
		Amount:    core.Money{Cents: 500000},
		Category:  "salary",
		Date:      core.NewDate(2026, 3, 1),
		Currency:  "USD",
		CreatedAt: time.Now(),
	}
	if err := repo.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}

	if _, err := repo.GetTransaction(ctx, "u2", "t1"); err != ErrNotFound {
		t.Fatalf("cross-user get: expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteTransaction(ctx, "u2", "t1"); err != ErrNotFound {
		t.Fatalf("cross-user delete: expected ErrNotFound, got %v", err)
	}

	list, err := repo.ListTransactions(ctx, "u2")
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("u2 sees %d transactions, want 0", len(list))
	}
}

func TestListTransactionsOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1")

	days := []int{20, 5, 12}
	for i, day := range days {
		tx := core.Transaction{
			ID:        "t" + string(rune('a'+i)),
			UserID:    "u1",
			Kind:      core.Expense,
			Amount:    core.Money{Cents: -100},
			Category:  "misc",
			Date:      core.NewDate(2026, 4, day),
			Currency:  "USD",
			CreatedAt: time.Now(),
		}
		if err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	list, err := repo.ListTransactions(ctx, "u1")
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].Date.Before(list[i-1].Date.Time) {
			t.Fatalf("transactions not in ascending date order: %v then %v",
				list[i-1].Date.Key(), list[i].Date.Key())
		}
	}
}

func TestMirrorTracking(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1")

	for _, id := range []string{"t1", "t2"} {
		tx := core.Transaction{
			ID:        id,
			UserID:    "u1",
			Kind:      core.Expense,
			Amount:    core.Money{Cents: -100},
			Category:  "misc",
			Date:      core.NewDate(2026, 5, 1),
			Currency:  "USD",
			CreatedAt: time.Now(),
		}
		if err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
	}

	pending, err := repo.ListUnmirrored(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnmirrored: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}

	if err := repo.MarkMirrored(ctx, "t1"); err != nil {
		t.Fatalf("MarkMirrored: %v", err)
	}

	pending, err = repo.ListUnmirrored(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnmirrored: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "t2" {
		t.Fatalf("pending after mark: %+v", pending)
	}

	// Updating a transaction queues it for mirroring again
	tx, err := repo.GetTransaction(ctx, "u1", "t1")
	if err != nil {
		t.Fatalf("GetTransaction: %v", err)
	}
	if err := repo.UpdateTransaction(ctx, tx); err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	pending, err = repo.ListUnmirrored(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnmirrored: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending after update = %d, want 2", len(pending))
	}
}

func TestBudgetCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1")

	now := time.Now()
	b := core.Budget{
		ID:        "b1",
		UserID:    "u1",
		Amount:    core.Money{Cents: 150000},
		Period:    core.Monthly,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.CreateBudget(ctx, b); err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}

	list, err := repo.ListBudgets(ctx, "u1")
	if err != nil {
		t.Fatalf("ListBudgets: %v", err)
	}
	if len(list) != 1 || list[0].Period != core.Monthly {
		t.Fatalf("list = %+v", list)
	}

	b.Amount.Cents = 200000
	b.Period = core.Weekly
	b.UpdatedAt = time.Now()
	if err := repo.UpdateBudget(ctx, b); err != nil {
		t.Fatalf("UpdateBudget: %v", err)
	}

	list, err = repo.ListBudgets(ctx, "u1")
	if err != nil {
		t.Fatalf("ListBudgets: %v", err)
	}
	if list[0].Amount.Cents != 200000 || list[0].Period != core.Weekly {
		t.Fatalf("after update: %+v", list[0])
	}

	if err := repo.DeleteBudget(ctx, "u1", "b1"); err != nil {
		t.Fatalf("DeleteBudget: %v", err)
	}
	if err := repo.DeleteBudget(ctx, "u1", "b1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGoalCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1")

	g := core.Goal{
		ID:            "g1",
		UserID:        "u1",
		Name:          "Emergency fund",
		TargetAmount:  core.Money{Cents: 1000000},
		CurrentAmount: core.Money{Cents: 250000},
		TargetDate:    core.NewDate(2027, 1, 1),
		Category:      "savings",
		Priority:      core.PriorityHigh,
	}
	if err := repo.CreateGoal(ctx, g); err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}

	list, err := repo.ListGoals(ctx, "u1")
	if err != nil {
		t.Fatalf("ListGoals: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len = %d, want 1", len(list))
	}
	got := list[0]
	if got.Name != "Emergency fund" || got.Priority != core.PriorityHigh {
		t.Fatalf("got %+v", got)
	}
	if got.TargetDate.Key() != "2027-01-01" {
		t.Fatalf("target date round trip: %q", got.TargetDate.Key())
	}

	got.CurrentAmount.Cents = 300000
	if err := repo.UpdateGoal(ctx, got); err != nil {
		t.Fatalf("UpdateGoal: %v", err)
	}

	if err := repo.DeleteGoal(ctx, "u1", "g1"); err != nil {
		t.Fatalf("DeleteGoal: %v", err)
	}
	if err := repo.DeleteGoal(ctx, "u1", "g1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
