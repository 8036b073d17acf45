// Package identity is the narrow contract to the user/verification service.
// The core resolves users and checks verification through it and depends on
// nothing else about credentials.
package identity

import (
	"context"

	"github.com/zephyros1603/urbanup/internal/models"
	repository "github.com/zephyros1603/urbanup/internal/repositories"
)

type Service interface {
	ResolveUser(ctx context.Context, userID string) (*models.User, error)
	IsVerified(ctx context.Context, userID string) (bool, error)
}

// RepositoryService backs the contract with the shared user table. A remote
// identity provider would implement the same interface.
type RepositoryService struct {
	users *repository.UserRepository
}

func NewRepositoryService(users *repository.UserRepository) *RepositoryService {
	return &RepositoryService{users: users}
}

func (s *RepositoryService) ResolveUser(ctx context.Context, userID string) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *RepositoryService) IsVerified(ctx context.Context, userID string) (bool, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsVerified(), nil
}
