package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/gridspace-io/gridspace/internal/modules/model"
	"github.com/gridspace-io/gridspace/internal/modules/repo"
	"go.uber.org/zap"
)

type WorkspaceService interface {
	Create(ctx context.Context, userID string, in CreateWorkspaceInput) (*model.Workspace, error)
	List(ctx context.Context, userID string) ([]model.Workspace, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (*model.Workspace, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

type CreateWorkspaceInput struct {
	Name        string
	Description *string
}

type workspaceService struct {
	r      repo.WorkspaceRepo
	guard  Guard
	limits Limits
	log    *zap.Logger
}

func NewWorkspaceService(r repo.WorkspaceRepo, guard Guard, limits Limits, log *zap.Logger) WorkspaceService {
	return &workspaceService{r: r, guard: guard, limits: limits, log: log}
}

func (s *workspaceService) Create(ctx context.Context, userID string, in CreateWorkspaceInput) (*model.Workspace, error) {
	v := &ValidationError{}
	name := checkName(v, "name", in.Name)
	if err := v.Err(); err != nil {
		return nil, err
	}

	plan, pl, err := s.limits.For(ctx, userID)
	if err != nil {
		return nil, err
	}

	ws := &model.Workspace{
		Name:        name,
		Description: trimmedOrNil(in.Description),
		OwnerID:     userID,
	}
	if err := s.r.Create(ctx, ws, pl.Workspaces); err != nil {
		if errors.Is(err, repo.ErrLimitReached) {
			return nil, planLimitErr(plan, "workspaces", pl.Workspaces)
		}
		return nil, err
	}

	s.log.Sugar().Infow("workspace created", "workspace_id", ws.ID, "user_id", userID)
	return ws, nil
}

func (s *workspaceService) List(ctx context.Context, userID string) ([]model.Workspace, error) {
	return s.r.ListByMember(ctx, userID)
}

func (s *workspaceService) Get(ctx context.Context, userID string, id uuid.UUID) (*model.Workspace, error) {
	if err := requireWorkspace(ctx, s.guard, userID, id); err != nil {
		return nil, err
	}
	ws, err := s.r.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrForbidden
	}
	return ws, err
}

// Delete removes the workspace and everything in it. Only the owner may do this.
func (s *workspaceService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	ws, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if ws.OwnerID != userID {
		return ErrForbidden
	}

	if err := s.r.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrForbidden
		}
		return err
	}

	s.log.Sugar().Infow("workspace deleted", "workspace_id", id, "user_id", userID)
	return nil
}
