package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"savvy/internal/core"
	"savvy/internal/realtime"
	"savvy/internal/storage"
)

// PlanningService owns budgets and savings goals.
type PlanningService struct {
	storage *storage.SQLiteRepository
	hub     *realtime.Hub
}

func NewPlanningService(storage *storage.SQLiteRepository, hub *realtime.Hub) *PlanningService {
	return &PlanningService{storage: storage, hub: hub}
}

func (s *PlanningService) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.ID = uuid.NewString()
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if err := s.storage.CreateBudget(ctx, b); err != nil {
		return core.Budget{}, err
	}

	s.notify(b.UserID, realtime.TableBudgets)
	return b, nil
}

func (s *PlanningService) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.UpdatedAt = time.Now()

	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if err := s.storage.UpdateBudget(ctx, b); err != nil {
		return core.Budget{}, err
	}

	s.notify(b.UserID, realtime.TableBudgets)
	return b, nil
}

func (s *PlanningService) DeleteBudget(ctx context.Context, userID, id string) error {
	if err := s.storage.DeleteBudget(ctx, userID, id); err != nil {
		return err
	}
	s.notify(userID, realtime.TableBudgets)
	return nil
}

func (s *PlanningService) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	return s.storage.ListBudgets(ctx, userID)
}

func (s *PlanningService) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	g.ID = uuid.NewString()
	if g.Priority == "" {
		g.Priority = core.PriorityMedium
	}

	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if err := s.storage.CreateGoal(ctx, g); err != nil {
		return core.Goal{}, err
	}

	s.notify(g.UserID, realtime.TableGoals)
	return g, nil
}

func (s *PlanningService) UpdateGoal(ctx context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if err := s.storage.UpdateGoal(ctx, g); err != nil {
		return err
	}

	s.notify(g.UserID, realtime.TableGoals)
	return nil
}

func (s *PlanningService) DeleteGoal(ctx context.Context, userID, id string) error {
	if err := s.storage.DeleteGoal(ctx, userID, id); err != nil {
		return err
	}
	s.notify(userID, realtime.TableGoals)
	return nil
}

func (s *PlanningService) ListGoals(ctx context.Context, userID string) ([]core.Goal, error) {
	return s.storage.ListGoals(ctx, userID)
}

func (s *PlanningService) notify(userID, table string) {
	if s.hub != nil {
		s.hub.Notify(userID, table)
	}
}
