package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/gridspace-io/gridspace/internal/modules/model"
	"github.com/gridspace-io/gridspace/internal/modules/repo"
	"go.uber.org/zap"
)

type TableService interface {
	Create(ctx context.Context, userID string, workspaceID uuid.UUID, in CreateTableInput) (*model.Table, error)
	List(ctx context.Context, userID string, workspaceID uuid.UUID) ([]model.Table, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (*model.Table, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
	AddColumn(ctx context.Context, userID string, tableID uuid.UUID, in ColumnInput) (*model.Column, error)
	DeleteColumn(ctx context.Context, userID string, tableID, columnID uuid.UUID) error
}

type CreateTableInput struct {
	Name        string
	Description *string
	Columns     []ColumnInput
}

type ColumnInput struct {
	Name string
	// Type defaults to text when empty.
	Type string
}

type tableService struct {
	r          repo.TableRepo
	workspaces repo.WorkspaceRepo
	guard      Guard
	limits     Limits
	log        *zap.Logger
}

func NewTableService(r repo.TableRepo, workspaces repo.WorkspaceRepo, guard Guard, limits Limits, log *zap.Logger) TableService {
	return &tableService{r: r, workspaces: workspaces, guard: guard, limits: limits, log: log}
}

func checkColumn(v *ValidationError, prefix string, in ColumnInput) model.Column {
	field := func(f string) string {
		if prefix == "" {
			return f
		}
		return prefix + "." + f
	}

	name := checkName(v, field("name"), in.Name)
	typ := in.Type
	if typ == "" {
		typ = model.ColumnTypeText
	}
	if !model.IsValidColumnType(typ) {
		v.Add(field("type"), "must be one of %v", model.ColumnTypes)
	}
	return model.Column{Name: name, Type: typ}
}

func (s *tableService) Create(ctx context.Context, userID string, workspaceID uuid.UUID, in CreateTableInput) (*model.Table, error) {
	if err := requireWorkspace(ctx, s.guard, userID, workspaceID); err != nil {
		return nil, err
	}

	v := &ValidationError{}
	name := checkName(v, "name", in.Name)
	if len(in.Columns) == 0 {
		v.Add("columns", "at least one column is required")
	}
	cols := make([]model.Column, 0, len(in.Columns))
	seen := make(map[string]bool, len(in.Columns))
	for i, c := range in.Columns {
		field := fmt.Sprintf("columns[%d]", i)
		col := checkColumn(v, field, c)
		if col.Name != "" && seen[col.Name] {
			v.Add(field+".name", "duplicate column name %q", col.Name)
		}
		seen[col.Name] = true
		cols = append(cols, col)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	ws, err := s.workspaces.Get(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	plan, pl, err := s.limits.For(ctx, ws.OwnerID)
	if err != nil {
		return nil, err
	}

	t := &model.Table{
		WorkspaceID: workspaceID,
		Name:        name,
		Description: trimmedOrNil(in.Description),
		Columns:     cols,
	}
	if err := s.r.Create(ctx, t, pl.Tables); err != nil {
		switch {
		case errors.Is(err, repo.ErrLimitReached):
			return nil, planLimitErr(plan, "tables per workspace", pl.Tables)
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrForbidden
		}
		return nil, err
	}

	s.log.Sugar().Infow("table created", "table_id", t.ID, "workspace_id", workspaceID, "columns", len(cols))
	return t, nil
}

func (s *tableService) List(ctx context.Context, userID string, workspaceID uuid.UUID) ([]model.Table, error) {
	if err := requireWorkspace(ctx, s.guard, userID, workspaceID); err != nil {
		return nil, err
	}
	return s.r.ListByWorkspace(ctx, workspaceID)
}

func (s *tableService) Get(ctx context.Context, userID string, id uuid.UUID) (*model.Table, error) {
	if err := requireTable(ctx, s.guard, userID, id); err != nil {
		return nil, err
	}
	t, err := s.r.Get(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrForbidden
	}
	return t, err
}

func (s *tableService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if err := requireTable(ctx, s.guard, userID, id); err != nil {
		return err
	}
	if err := s.r.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrForbidden
		}
		return err
	}
	s.log.Sugar().Infow("table deleted", "table_id", id, "user_id", userID)
	return nil
}

func (s *tableService) AddColumn(ctx context.Context, userID string, tableID uuid.UUID, in ColumnInput) (*model.Column, error) {
	if err := requireTable(ctx, s.guard, userID, tableID); err != nil {
		return nil, err
	}

	v := &ValidationError{}
	col := checkColumn(v, "", in)
	if err := v.Err(); err != nil {
		return nil, err
	}
	col.TableID = tableID

	if err := s.r.AddColumn(ctx, &col); err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicate):
			return nil, invalid("name", "column %q already exists", col.Name)
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrForbidden
		}
		return nil, err
	}
	return &col, nil
}

func (s *tableService) DeleteColumn(ctx context.Context, userID string, tableID, columnID uuid.UUID) error {
	if err := requireTable(ctx, s.guard, userID, tableID); err != nil {
		return err
	}
	if err := s.r.DeleteColumn(ctx, tableID, columnID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
