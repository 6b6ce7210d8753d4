package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gridspace-io/gridspace/internal/modules/model"
	"gorm.io/gorm"
)

type WorkspaceRepo interface {
	// Create inserts the workspace with its owner membership. limit caps the number of
	// workspaces the owner holds (negative means unlimited).
	Create(ctx context.Context, ws *model.Workspace, limit int) error
	Get(ctx context.Context, id uuid.UUID) (*model.Workspace, error)
	ListByMember(ctx context.Context, userID string) ([]model.Workspace, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IsMember(ctx context.Context, workspaceID uuid.UUID, userID string) (bool, error)
	IsTableMember(ctx context.Context, tableID uuid.UUID, userID string) (bool, error)
	// OwnerOfTable returns the owner id of the workspace holding tableID.
	OwnerOfTable(ctx context.Context, tableID uuid.UUID) (string, error)
}

type workspaceRepo struct{ db *gorm.DB }

func NewWorkspaceRepo(db *gorm.DB) WorkspaceRepo {
	return &workspaceRepo{db: db}
}

// Create counts and inserts under a transaction-scoped advisory lock keyed on the owner,
// so concurrent creates by one user cannot both pass the quota.
func (r *workspaceRepo) Create(ctx context.Context, ws *model.Workspace, limit int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if limit >= 0 {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "workspaces:"+ws.OwnerID).Error; err != nil {
				return fmt.Errorf("lock owner: %w", err)
			}
			var n int64
			if err := tx.Model(&model.Workspace{}).Where("owner_id = ?", ws.OwnerID).Count(&n).Error; err != nil {
				return fmt.Errorf("count workspaces: %w", err)
			}
			if !model.Allows(limit, n, 1) {
				return ErrLimitReached
			}
		}

		if err := tx.Omit("Members", "Tables").Create(ws).Error; err != nil {
			return fmt.Errorf("create workspace: %w", err)
		}

		member := model.WorkspaceMember{WorkspaceID: ws.ID, UserID: ws.OwnerID}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("create owner membership: %w", err)
		}

		ws.Members = []model.WorkspaceMember{member}
		return nil
	})
}

func (r *workspaceRepo) Get(ctx context.Context, id uuid.UUID) (*model.Workspace, error) {
	var ws model.Workspace
	err := r.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", id).
		First(&ws).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &ws, nil
}

func (r *workspaceRepo) ListByMember(ctx context.Context, userID string) ([]model.Workspace, error) {
	var items []model.Workspace
	err := r.db.WithContext(ctx).
		Select("workspaces.*, (SELECT COUNT(*) FROM tables t WHERE t.workspace_id = workspaces.id) AS table_count").
		Joins("JOIN workspace_members wm ON wm.workspace_id = workspaces.id AND wm.user_id = ?", userID).
		Order("workspaces.created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *workspaceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Workspace{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *workspaceRepo) IsMember(ctx context.Context, workspaceID uuid.UUID, userID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}

// IsTableMember reports whether userID belongs to the workspace owning tableID.
// A missing table reports false.
func (r *workspaceRepo) IsTableMember(ctx context.Context, tableID uuid.UUID, userID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Table{}).
		Joins("JOIN workspace_members wm ON wm.workspace_id = tables.workspace_id").
		Where("tables.id = ? AND wm.user_id = ?", tableID, userID).
		Limit(1).
		Count(&n).Error
	return n > 0, err
}

func (r *workspaceRepo) OwnerOfTable(ctx context.Context, tableID uuid.UUID) (string, error) {
	var owner string
	err := r.db.WithContext(ctx).Model(&model.Table{}).
		Select("w.owner_id").
		Joins("JOIN workspaces w ON w.id = tables.workspace_id").
		Where("tables.id = ?", tableID).
		Limit(1).
		Scan(&owner).Error
	if err != nil {
		return "", err
	}
	if owner == "" {
		return "", ErrNotFound
	}
	return owner, nil
}
