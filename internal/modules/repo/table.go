package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gridspace-io/gridspace/internal/modules/model"
	"github.com/gridspace-io/gridspace/internal/pkg/ordering"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TableRepo interface {
	// Create inserts the table and its columns. Columns get orders 0..n-1 in slice order.
	// limit caps the number of tables in the workspace (negative means unlimited).
	Create(ctx context.Context, t *model.Table, limit int) error
	Get(ctx context.Context, id uuid.UUID) (*model.Table, error)
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.Table, error)
	CountByWorkspace(ctx context.Context, workspaceID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Columns(ctx context.Context, tableID uuid.UUID) ([]model.Column, error)
	// AddColumn appends col after the table's last column.
	AddColumn(ctx context.Context, col *model.Column) error
	DeleteColumn(ctx context.Context, tableID, columnID uuid.UUID) error
}

type tableRepo struct{ db *gorm.DB }

func NewTableRepo(db *gorm.DB) TableRepo {
	return &tableRepo{db: db}
}

func orderedColumns(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC")
}

// lockTable takes a row lock on the table so sibling order allocation is serialized.
func lockTable(tx *gorm.DB, tableID uuid.UUID) error {
	var t model.Table
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", tableID).
		First(&t).Error
	return notFound(err)
}

// maxOrder returns MAX(sort_order) of model's rows under tableID, nil when there are none.
func maxOrder(tx *gorm.DB, m any, tableID uuid.UUID) (*int, error) {
	var max *int
	err := tx.Model(m).Where("table_id = ?", tableID).Select("MAX(sort_order)").Row().Scan(&max)
	return max, err
}

func (r *tableRepo) Create(ctx context.Context, t *model.Table, limit int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ws model.Workspace
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", t.WorkspaceID).
			First(&ws).Error; err != nil {
			return notFound(err)
		}

		var n int64
		if err := tx.Model(&model.Table{}).Where("workspace_id = ?", t.WorkspaceID).Count(&n).Error; err != nil {
			return fmt.Errorf("count tables: %w", err)
		}
		if !model.Allows(limit, n, 1) {
			return ErrLimitReached
		}

		for i, o := range ordering.Span(nil, len(t.Columns)) {
			t.Columns[i].Order = o
		}

		if err := tx.Create(t).Error; err != nil {
			return fmt.Errorf("create table: %w", duplicate(err))
		}
		return nil
	})
}

func (r *tableRepo) Get(ctx context.Context, id uuid.UUID) (*model.Table, error) {
	var t model.Table
	err := r.db.WithContext(ctx).
		Preload("Columns", orderedColumns).
		Where("id = ?", id).
		First(&t).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *tableRepo) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.Table, error) {
	var items []model.Table
	err := r.db.WithContext(ctx).
		Select("tables.*, (SELECT COUNT(*) FROM rows r WHERE r.table_id = tables.id) AS row_count").
		Preload("Columns", orderedColumns).
		Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (r *tableRepo) CountByWorkspace(ctx context.Context, workspaceID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Table{}).Where("workspace_id = ?", workspaceID).Count(&n).Error
	return n, err
}

// Delete removes the table; columns, rows and cells go with it via ON DELETE CASCADE.
func (r *tableRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Table{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tableRepo) Columns(ctx context.Context, tableID uuid.UUID) ([]model.Column, error) {
	var cols []model.Column
	err := orderedColumns(r.db.WithContext(ctx)).Where("table_id = ?", tableID).Find(&cols).Error
	return cols, err
}

func (r *tableRepo) AddColumn(ctx context.Context, col *model.Column) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockTable(tx, col.TableID); err != nil {
			return err
		}

		max, err := maxOrder(tx, &model.Column{}, col.TableID)
		if err != nil {
			return fmt.Errorf("max column order: %w", err)
		}
		col.Order = ordering.Next(max)

		if err := tx.Create(col).Error; err != nil {
			return fmt.Errorf("create column: %w", duplicate(err))
		}
		return nil
	})
}

// DeleteColumn removes the column and, via cascade, its cells. Remaining orders keep their gaps.
func (r *tableRepo) DeleteColumn(ctx context.Context, tableID, columnID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND table_id = ?", columnID, tableID).Delete(&model.Column{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
