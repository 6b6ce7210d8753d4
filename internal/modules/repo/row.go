package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gridspace-io/gridspace/internal/modules/model"
	"github.com/gridspace-io/gridspace/internal/pkg/ordering"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RowRepo interface {
	// Create appends row after the table's last row. limit caps the rows in the table
	// (negative means unlimited). It returns the columns the row was stored against.
	Create(ctx context.Context, row *model.Row, limit int) ([]model.Column, error)
	// CreateBatch appends rows in slice order, all or nothing.
	CreateBatch(ctx context.Context, tableID uuid.UUID, rows []*model.Row, limit int) error
	Get(ctx context.Context, tableID, rowID uuid.UUID) (*model.Row, error)
	List(ctx context.Context, tableID uuid.UUID, offset, limit int) ([]model.Row, error)
	Count(ctx context.Context, tableID uuid.UUID) (int64, error)
	// UpsertCells writes cells of an existing row and touches its updated_at.
	UpsertCells(ctx context.Context, tableID, rowID uuid.UUID, cells []model.Cell) error
	Delete(ctx context.Context, tableID, rowID uuid.UUID) error
}

type rowRepo struct{ db *gorm.DB }

func NewRowRepo(db *gorm.DB) RowRepo {
	return &rowRepo{db: db}
}

const insertBatchSize = 500

func (r *rowRepo) Create(ctx context.Context, row *model.Row, limit int) ([]model.Column, error) {
	var columns []model.Column
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		columns, err = createRows(tx, row.TableID, []*model.Row{row}, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return columns, nil
}

func (r *rowRepo) CreateBatch(ctx context.Context, tableID uuid.UUID, rows []*model.Row, limit int) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := createRows(tx, tableID, rows, limit)
		return err
	})
}

// createRows inserts rows under the table lock. Cells are aligned to the columns read
// under that lock, so a column added or dropped since the caller validated is honored.
func createRows(tx *gorm.DB, tableID uuid.UUID, rows []*model.Row, limit int) ([]model.Column, error) {
	if err := lockTable(tx, tableID); err != nil {
		return nil, err
	}

	var n int64
	if err := tx.Model(&model.Row{}).Where("table_id = ?", tableID).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}
	if !model.Allows(limit, n, len(rows)) {
		return nil, ErrLimitReached
	}

	var columns []model.Column
	if err := tx.Scopes(orderedColumns).Where("table_id = ?", tableID).Find(&columns).Error; err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}

	max, err := maxOrder(tx, &model.Row{}, tableID)
	if err != nil {
		return nil, fmt.Errorf("max row order: %w", err)
	}
	for i, o := range ordering.Span(max, len(rows)) {
		rows[i].TableID = tableID
		rows[i].Order = o
		rows[i].Cells = alignCells(columns, rows[i].Cells)
	}

	if err := tx.Omit("Table").CreateInBatches(rows, insertBatchSize).Error; err != nil {
		return nil, fmt.Errorf("create rows: %w", err)
	}
	return columns, nil
}

// alignCells returns one cell per column in column order. Cells of unknown columns are
// dropped and columns without a cell get a null value.
func alignCells(columns []model.Column, cells []model.Cell) []model.Cell {
	byID := make(map[uuid.UUID]*string, len(cells))
	for _, c := range cells {
		byID[c.ColumnID] = c.Value
	}
	out := make([]model.Cell, 0, len(columns))
	for _, col := range columns {
		out = append(out, model.Cell{ColumnID: col.ID, Value: byID[col.ID]})
	}
	return out
}

func (r *rowRepo) Get(ctx context.Context, tableID, rowID uuid.UUID) (*model.Row, error) {
	var row model.Row
	err := r.db.WithContext(ctx).
		Preload("Cells").
		Where("id = ? AND table_id = ?", rowID, tableID).
		First(&row).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &row, nil
}

func (r *rowRepo) List(ctx context.Context, tableID uuid.UUID, offset, limit int) ([]model.Row, error) {
	var items []model.Row
	err := r.db.WithContext(ctx).
		Preload("Cells").
		Where("table_id = ?", tableID).
		Order("sort_order ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *rowRepo) Count(ctx context.Context, tableID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Row{}).Where("table_id = ?", tableID).Count(&n).Error
	return n, err
}

func (r *rowRepo) UpsertCells(ctx context.Context, tableID, rowID uuid.UUID, cells []model.Cell) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Row{}).
			Where("id = ? AND table_id = ?", rowID, tableID).
			Update("updated_at", time.Now())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		if len(cells) == 0 {
			return nil
		}
		for i := range cells {
			cells[i].RowID = rowID
		}

		return tx.Omit("Row", "Column").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "row_id"}, {Name: "column_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&cells).Error
	})
}

func (r *rowRepo) Delete(ctx context.Context, tableID, rowID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND table_id = ?", rowID, tableID).Delete(&model.Row{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
