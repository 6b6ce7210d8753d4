package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gridspace-io/gridspace/internal/modules/repo"
)

// Guard answers membership questions. A user can access a workspace, and every table in it,
// iff a membership row exists.
type Guard interface {
	CanAccessWorkspace(ctx context.Context, userID string, workspaceID uuid.UUID) (bool, error)
	CanAccessTable(ctx context.Context, userID string, tableID uuid.UUID) (bool, error)
}

type guard struct{ r repo.WorkspaceRepo }

func NewGuard(r repo.WorkspaceRepo) Guard {
	return &guard{r: r}
}

func (g *guard) CanAccessWorkspace(ctx context.Context, userID string, workspaceID uuid.UUID) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return g.r.IsMember(ctx, workspaceID, userID)
}

func (g *guard) CanAccessTable(ctx context.Context, userID string, tableID uuid.UUID) (bool, error) {
	if userID == "" {
		return false, nil
	}
	return g.r.IsTableMember(ctx, tableID, userID)
}

func requireWorkspace(ctx context.Context, g Guard, userID string, workspaceID uuid.UUID) error {
	ok, err := g.CanAccessWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return fmt.Errorf("check workspace access: %w", err)
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func requireTable(ctx context.Context, g Guard, userID string, tableID uuid.UUID) error {
	ok, err := g.CanAccessTable(ctx, userID, tableID)
	if err != nil {
		return fmt.Errorf("check table access: %w", err)
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
