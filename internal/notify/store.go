package notify

import (
	"becoming_backend/internal/model"
	"becoming_backend/internal/repository"
	"context"
)

// Store 调度器需要的数据访问
type Store interface {
	FindDue(ctx context.Context, slot model.Slot) ([]model.DueUser, error)
	Goals(ctx context.Context, userID uint) ([]model.Goal, error)
	RecentSignals(ctx context.Context, userID uint, limit int) ([]model.Signal, error)
	SaveSignal(ctx context.Context, signal *model.Signal) error
}

type repositoryStore struct {
	due     *repository.DueUserRepository
	goals   *repository.GoalRepository
	signals *repository.SignalRepository
}

func NewRepositoryStore(due *repository.DueUserRepository, goals *repository.GoalRepository, signals *repository.SignalRepository) Store {
	return &repositoryStore{due: due, goals: goals, signals: signals}
}

func (s *repositoryStore) FindDue(ctx context.Context, slot model.Slot) ([]model.DueUser, error) {
	return s.due.FindDue(ctx, slot)
}

func (s *repositoryStore) Goals(ctx context.Context, userID uint) ([]model.Goal, error) {
	return s.goals.ListByUser(ctx, userID)
}

func (s *repositoryStore) RecentSignals(ctx context.Context, userID uint, limit int) ([]model.Signal, error) {
	return s.signals.RecentByUser(ctx, userID, limit)
}

func (s *repositoryStore) SaveSignal(ctx context.Context, signal *model.Signal) error {
	return s.signals.Create(ctx, signal)
}
