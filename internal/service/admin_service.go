package service

import (
	"context"
	"fmt"

	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/domain"
	"github.com/techizeBuilder/wellness-full-backend-sub002/internal/repository"
)

// AdminService serves the admin-only read surface.
type AdminService interface {
	ListPermissions(ctx context.Context) ([]domain.Permission, error)
}

type adminService struct {
	permissions repository.PermissionRepository
}

func NewAdminService(permissions repository.PermissionRepository) AdminService {
	return &adminService{permissions: permissions}
}

func (s *adminService) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	perms, err := s.permissions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return perms, nil
}
