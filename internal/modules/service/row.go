package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/gridspace-io/gridspace/internal/modules/model"
	"github.com/gridspace-io/gridspace/internal/modules/repo"
	"github.com/gridspace-io/gridspace/internal/pkg/paging"
	"go.uber.org/zap"
)

type RowService interface {
	List(ctx context.Context, userID string, tableID uuid.UUID, page, limit int) (*RowPage, error)
	Create(ctx context.Context, userID string, tableID uuid.UUID, cells map[string]string) (*model.FlatRow, error)
	// Update writes the given cells; names that match no column are ignored.
	Update(ctx context.Context, userID string, tableID, rowID uuid.UUID, cells map[string]string) (*model.FlatRow, error)
	Delete(ctx context.Context, userID string, tableID, rowID uuid.UUID) error
}

type RowPage struct {
	Rows       []model.FlatRow   `json:"rows"`
	Pagination paging.Pagination `json:"pagination"`
}

type RowOptions struct {
	Policy          model.CellTypePolicy
	DefaultPageSize int
	MaxPageSize     int
}

type rowService struct {
	r          repo.RowRepo
	tables     repo.TableRepo
	workspaces repo.WorkspaceRepo
	guard      Guard
	limits     Limits
	opts       RowOptions
	log        *zap.Logger
}

func NewRowService(r repo.RowRepo, tables repo.TableRepo, workspaces repo.WorkspaceRepo, guard Guard, limits Limits, opts RowOptions, log *zap.Logger) RowService {
	return &rowService{
		r:          r,
		tables:     tables,
		workspaces: workspaces,
		guard:      guard,
		limits:     limits,
		opts:       opts,
		log:        log,
	}
}

// buildCells turns name-keyed values into cells. With all set, every column gets a cell and
// missing names become null; otherwise only named columns are returned. Empty strings are
// stored as null.
func buildCells(columns []model.Column, values map[string]string, policy model.CellTypePolicy, all bool, v *ValidationError, fieldPrefix string) []model.Cell {
	cells := make([]model.Cell, 0, len(columns))
	for _, col := range columns {
		raw, ok := values[col.Name]
		if !ok && !all {
			continue
		}

		var value *string
		if raw != "" {
			if policy == model.CellTypeStrict {
				if err := model.ValidateCellValue(col.Type, raw); err != nil {
					v.Add(fieldPrefix+col.Name, "%s", err.Error())
					continue
				}
			}
			val := raw
			value = &val
		}
		cells = append(cells, model.Cell{ColumnID: col.ID, Value: value})
	}
	return cells
}

// rowLimit returns the row quota that applies to tableID.
func rowLimit(ctx context.Context, workspaces repo.WorkspaceRepo, limits Limits, tableID uuid.UUID) (model.Plan, int, error) {
	owner, err := workspaces.OwnerOfTable(ctx, tableID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", 0, ErrForbidden
		}
		return "", 0, fmt.Errorf("resolve table owner: %w", err)
	}
	plan, pl, err := limits.For(ctx, owner)
	if err != nil {
		return "", 0, err
	}
	return plan, pl.RowsPerTable, nil
}

func (s *rowService) List(ctx context.Context, userID string, tableID uuid.UUID, page, limit int) (*RowPage, error) {
	if err := requireTable(ctx, s.guard, userID, tableID); err != nil {
		return nil, err
	}
	p := paging.Normalize(page, limit, s.opts.DefaultPageSize, s.opts.MaxPageSize)

	columns, err := s.tables.Columns(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	total, err := s.r.Count(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}
	rows, err := s.r.List(ctx, tableID, p.Offset(), p.Limit)
	if err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}

	out := &RowPage{Rows: make([]model.FlatRow, 0, len(rows)), Pagination: p.With(total)}
	for i := range rows {
		out.Rows = append(out.Rows, rows[i].Flatten(columns))
	}
	return out, nil
}

func (s *rowService) Create(ctx context.Context, userID string, tableID uuid.UUID, values map[string]string) (*model.FlatRow, error) {
	if err := requireTable(ctx, s.guard, userID, tableID); err != nil {
		return nil, err
	}

	columns, err := s.tables.Columns(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	v := &ValidationError{}
	cells := buildCells(columns, values, s.opts.Policy, true, v, "cells.")
	if err := v.Err(); err != nil {
		return nil, err
	}

	plan, limit, err := rowLimit(ctx, s.workspaces, s.limits, tableID)
	if err != nil {
		return nil, err
	}

	row := &model.Row{TableID: tableID, Cells: cells}
	columns, err = s.r.Create(ctx, row, limit)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrLimitReached):
			return nil, planLimitErr(plan, "rows per table", limit)
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrForbidden
		}
		return nil, err
	}

	flat := row.Flatten(columns)
	return &flat, nil
}

func (s *rowService) Update(ctx context.Context, userID string, tableID, rowID uuid.UUID, values map[string]string) (*model.FlatRow, error) {
	if err := requireTable(ctx, s.guard, userID, tableID); err != nil {
		return nil, err
	}

	columns, err := s.tables.Columns(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	v := &ValidationError{}
	cells := buildCells(columns, values, s.opts.Policy, false, v, "cells.")
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := s.r.UpsertCells(ctx, tableID, rowID, cells); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	row, err := s.r.Get(ctx, tableID, rowID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	flat := row.Flatten(columns)
	return &flat, nil
}

func (s *rowService) Delete(ctx context.Context, userID string, tableID, rowID uuid.UUID) error {
	if err := requireTable(ctx, s.guard, userID, tableID); err != nil {
		return err
	}
	if err := s.r.Delete(ctx, tableID, rowID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
