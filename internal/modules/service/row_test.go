package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/gridspace-io/gridspace/internal/modules/model"
	"github.com/gridspace-io/gridspace/internal/modules/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type rowFixture struct {
	ws      *MockWorkspaceRepo
	tables  *MockTableRepo
	rows    *MockRowRepo
	tableID uuid.UUID
	columns []model.Column
}

func newRowFixture(t *testing.T) *rowFixture {
	t.Helper()
	tableID := uuid.New()
	f := &rowFixture{
		ws:      &MockWorkspaceRepo{},
		tables:  &MockTableRepo{},
		rows:    &MockRowRepo{},
		tableID: tableID,
		columns: []model.Column{
			{ID: uuid.New(), TableID: tableID, Name: "Name", Type: model.ColumnTypeText, Order: 0},
			{ID: uuid.New(), TableID: tableID, Name: "Age", Type: model.ColumnTypeNumber, Order: 1},
		},
	}
	f.ws.On("IsTableMember", mock.Anything, tableID, "u1").Return(true, nil).Maybe()
	f.ws.On("IsTableMember", mock.Anything, tableID, "stranger").Return(false, nil).Maybe()
	f.tables.On("Columns", mock.Anything, tableID).Return(f.columns, nil).Maybe()
	return f
}

func (f *rowFixture) svc(policy model.CellTypePolicy) RowService {
	return NewRowService(f.rows, f.tables, f.ws, NewGuard(f.ws), freeLimits, RowOptions{
		Policy:          policy,
		DefaultPageSize: 50,
		MaxPageSize:     500,
	}, zap.NewNop())
}

func TestRowService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("one cell per column", func(t *testing.T) {
		f := newRowFixture(t)
		f.ws.On("OwnerOfTable", ctx, f.tableID).Return("u1", nil)
		f.rows.On("Create", ctx, mock.MatchedBy(func(r *model.Row) bool {
			return len(r.Cells) == 2 &&
				*r.Cells[0].Value == "Ann" &&
				r.Cells[1].Value == nil
		}), 100).Run(func(args mock.Arguments) {
			args.Get(1).(*model.Row).Order = 0
		}).Return(f.columns, nil)

		row, err := f.svc(model.CellTypeHint).Create(ctx, "u1", f.tableID, map[string]string{"Name": "Ann", "Age": "", "Ghost": "x"})
		require.NoError(t, err)
		assert.Equal(t, 0, row.Order)
		assert.Equal(t, "Ann", *row.Data["Name"])
		assert.Nil(t, row.Data["Age"])
		assert.NotContains(t, row.Data, "Ghost")
	})

	t.Run("renders against columns seen at insert", func(t *testing.T) {
		f := newRowFixture(t)
		f.ws.On("OwnerOfTable", ctx, f.tableID).Return("u1", nil)
		city := model.Column{ID: uuid.New(), TableID: f.tableID, Name: "City", Type: model.ColumnTypeText, Order: 2}
		current := []model.Column{f.columns[0], city}
		f.rows.On("Create", ctx, mock.Anything, 100).Return(current, nil)

		row, err := f.svc(model.CellTypeHint).Create(ctx, "u1", f.tableID, map[string]string{"Name": "Ann", "Age": "30"})
		require.NoError(t, err)
		assert.Contains(t, row.Data, "City")
		assert.NotContains(t, row.Data, "Age")
	})

	t.Run("hint policy stores any string", func(t *testing.T) {
		f := newRowFixture(t)
		f.ws.On("OwnerOfTable", ctx, f.tableID).Return("u1", nil)
		f.rows.On("Create", ctx, mock.Anything, 100).Return(f.columns, nil)

		_, err := f.svc(model.CellTypeHint).Create(ctx, "u1", f.tableID, map[string]string{"Age": "thirty"})
		assert.NoError(t, err)
	})

	t.Run("strict policy rejects", func(t *testing.T) {
		f := newRowFixture(t)

		_, err := f.svc(model.CellTypeStrict).Create(ctx, "u1", f.tableID, map[string]string{"Age": "thirty"})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "cells.Age", ve.Fields[0].Field)
		f.rows.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("row limit", func(t *testing.T) {
		f := newRowFixture(t)
		f.ws.On("OwnerOfTable", ctx, f.tableID).Return("u1", nil)
		f.rows.On("Create", ctx, mock.Anything, 100).Return(nil, repo.ErrLimitReached)

		_, err := f.svc(model.CellTypeHint).Create(ctx, "u1", f.tableID, nil)
		assert.ErrorIs(t, err, ErrPlanLimit)
	})

	t.Run("non-member", func(t *testing.T) {
		f := newRowFixture(t)

		_, err := f.svc(model.CellTypeHint).Create(ctx, "stranger", f.tableID, nil)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestRowService_List(t *testing.T) {
	ctx := context.Background()
	f := newRowFixture(t)
	ann := "Ann"
	age := "30"
	rows := []model.Row{{
		ID:    uuid.New(),
		Order: 0,
		Cells: []model.Cell{
			{ColumnID: f.columns[0].ID, Value: &ann},
			{ColumnID: f.columns[1].ID, Value: &age},
		},
	}}
	f.rows.On("Count", ctx, f.tableID).Return(int64(1), nil)
	f.rows.On("List", ctx, f.tableID, 0, 50).Return(rows, nil)

	page, err := f.svc(model.CellTypeHint).List(ctx, "u1", f.tableID, 0, 0)
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, 0, page.Rows[0].Order)
	assert.Equal(t, "Ann", *page.Rows[0].Data["Name"])
	assert.Equal(t, "30", *page.Rows[0].Data["Age"])
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, 50, page.Pagination.Limit)
	assert.Equal(t, int64(1), page.Pagination.Total)
	assert.Equal(t, int64(1), page.Pagination.TotalPages)
}

func TestRowService_Update(t *testing.T) {
	ctx := context.Background()
	rowID := uuid.New()

	t.Run("idempotent upsert of known columns", func(t *testing.T) {
		f := newRowFixture(t)
		bob := "Bob"
		f.rows.On("UpsertCells", ctx, f.tableID, rowID, mock.MatchedBy(func(cells []model.Cell) bool {
			return len(cells) == 1 && cells[0].ColumnID == f.columns[0].ID && *cells[0].Value == "Bob"
		})).Return(nil).Twice()
		f.rows.On("Get", ctx, f.tableID, rowID).Return(&model.Row{
			ID:    rowID,
			Cells: []model.Cell{{ColumnID: f.columns[0].ID, Value: &bob}},
		}, nil).Twice()

		svc := f.svc(model.CellTypeHint)
		first, err := svc.Update(ctx, "u1", f.tableID, rowID, map[string]string{"Name": "Bob", "Unknown": "x"})
		require.NoError(t, err)
		second, err := svc.Update(ctx, "u1", f.tableID, rowID, map[string]string{"Name": "Bob", "Unknown": "x"})
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, "Bob", *second.Data["Name"])
		f.rows.AssertExpectations(t)
	})

	t.Run("missing row", func(t *testing.T) {
		f := newRowFixture(t)
		f.rows.On("UpsertCells", ctx, f.tableID, rowID, mock.Anything).Return(repo.ErrNotFound)

		_, err := f.svc(model.CellTypeHint).Update(ctx, "u1", f.tableID, rowID, map[string]string{"Name": "x"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRowService_Delete(t *testing.T) {
	ctx := context.Background()
	rowID := uuid.New()

	f := newRowFixture(t)
	f.rows.On("Delete", ctx, f.tableID, rowID).Return(nil).Once()
	f.rows.On("Delete", ctx, f.tableID, rowID).Return(repo.ErrNotFound).Once()
	svc := f.svc(model.CellTypeHint)

	assert.NoError(t, svc.Delete(ctx, "u1", f.tableID, rowID))
	assert.ErrorIs(t, svc.Delete(ctx, "u1", f.tableID, rowID), ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "stranger", f.tableID, rowID), ErrForbidden)
}
