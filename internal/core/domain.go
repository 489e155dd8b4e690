package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense TransactionKind = "expense"
	Income  TransactionKind = "income"
)

const (
	Weekly  BudgetPeriod = "weekly"
	Monthly BudgetPeriod = "monthly"
	Yearly  BudgetPeriod = "yearly"
)

const (
	PriorityLow    GoalPriority = "low"
	PriorityMedium GoalPriority = "medium"
	PriorityHigh   GoalPriority = "high"
)

type (
	TransactionKind string
	BudgetPeriod    string
	GoalPriority    string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single income or expense record. Expense amounts
	// are stored as negative cents, income amounts as positive cents.
	Transaction struct {
		ID          string
		UserID      string
		Kind        TransactionKind
		Amount      Money
		Category    string // income "source" shares this field
		Description string
		Date        Date
		Currency    string // ISO code, display only
		CreatedAt   time.Time
	}

	Budget struct {
		ID        string
		UserID    string
		Amount    Money // always >= 0
		Period    BudgetPeriod
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	Goal struct {
		ID            string
		UserID        string
		Name          string
		TargetAmount  Money
		CurrentAmount Money
		TargetDate    Date
		Category      string
		Priority      GoalPriority
	}

	User struct {
		ID           string
		Email        string
		PasswordHash string
		Currency     string // preferred display currency
		CreatedAt    time.Time
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrInvalidPeriod    = errors.New("invalid budget period")
	ErrInvalidPriority  = errors.New("invalid goal priority")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyEmail       = errors.New("empty email")
	ErrSignConvention   = errors.New("amount sign does not match transaction kind")
	ErrDescriptionLimit = errors.New("description too long (max 200 characters)")
)

// NewDate creates a Date at midnight local time.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Key returns the ISO calendar-day key (YYYY-MM-DD).
func (d Date) Key() string {
	return d.Format("2006-01-02")
}

// MonthKey returns the ISO calendar-month key (YYYY-MM).
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

func (k TransactionKind) Valid() bool {
	return k == Expense || k == Income
}

func (p BudgetPeriod) Valid() bool {
	return p == Weekly || p == Monthly || p == Yearly
}

func (p GoalPriority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Abs returns the magnitude of the amount in cents.
func (m Money) Abs() int64 {
	if m.Cents < 0 {
		return -m.Cents
	}
	return m.Cents
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.Amount.Cents == 0 {
		return ErrInvalidAmount
	}
	// Expenses are stored negative, income positive.
	if t.Kind == Expense && t.Amount.Cents > 0 {
		return ErrSignConvention
	}
	if t.Kind == Income && t.Amount.Cents < 0 {
		return ErrSignConvention
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 200 {
		return ErrDescriptionLimit
	}
	return nil
}

func (b Budget) Validate() error {
	if b.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if !b.Period.Valid() {
		return ErrInvalidPeriod
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.TargetAmount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if g.CurrentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	if g.Priority != "" && !g.Priority.Valid() {
		return ErrInvalidPriority
	}
	return nil
}
