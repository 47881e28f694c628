package users

import (
	"context"
	"log/slog"

	"github.com/userdir/userdir/internal/metrics"
)

// Service manages the user directory. It performs no field validation: whatever
// the store accepts is kept.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new user directory service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create stores one candidate and returns the record with its assigned id.
func (s *Service) Create(ctx context.Context, candidate Candidate) (User, error) {
	user, err := s.repo.Create(ctx, candidate)
	if err != nil {
		metrics.RecordStoreError("create")
		s.logger.Warn("users.create failed", slog.Any("error", err))
		return User{}, err
	}
	metrics.RecordUserCreated()
	s.logger.Debug("users.create completed", slog.String("user_id", user.ID))
	return user, nil
}

// List returns all stored users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		metrics.RecordStoreError("list")
		s.logger.Warn("users.list failed", slog.Any("error", err))
		return nil, err
	}
	return list, nil
}

// Ping reports whether the backing store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
