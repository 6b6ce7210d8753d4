package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gridspace-io/gridspace/internal/modules/model"
	"github.com/gridspace-io/gridspace/internal/modules/service"
)

func TestTableHandler_CreateTable(t *testing.T) {
	wsID := uuid.New()

	tests := []struct {
		name           string
		body           string
		setup          func(*MockTableService)
		expectedStatus int
		expectedFields []string
	}{
		{
			name: "columns passed in order",
			body: `{"name":"Contacts","columns":[{"name":"email","type":"text"},{"name":"age","type":"number"}]}`,
			setup: func(m *MockTableService) {
				in := service.CreateTableInput{
					Name:    "Contacts",
					Columns: []service.ColumnInput{{Name: "email", Type: "text"}, {Name: "age", Type: "number"}},
				}
				m.On("Create", mock.Anything, testUserID, wsID, in).Return(&model.Table{
					ID:   uuid.New(),
					Name: "Contacts",
					Columns: []model.Column{
						{Name: "email", Type: "text", Order: 0},
						{Name: "age", Type: "number", Order: 1},
					},
				}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "service validation",
			body: `{"name":"Contacts","columns":[]}`,
			setup: func(m *MockTableService) {
				m.On("Create", mock.Anything, testUserID, wsID, mock.Anything).Return(nil,
					&service.ValidationError{Fields: []service.FieldError{{Field: "columns", Message: "at least one column is required"}}})
			},
			expectedStatus: http.StatusBadRequest,
			expectedFields: []string{"columns"},
		},
		{
			name: "table limit",
			body: `{"name":"Fourth","columns":[{"name":"a"}]}`,
			setup: func(m *MockTableService) {
				m.On("Create", mock.Anything, testUserID, wsID, mock.Anything).Return(nil, service.ErrPlanLimit)
			},
			expectedStatus: http.StatusPaymentRequired,
		},
		{
			name:           "malformed json",
			body:           `{"name":`,
			setup:          func(*MockTableService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockTableService{}
			tt.setup(svc)
			r := setupRouter(true)
			r.POST("/workspaces/:workspace_id/tables", NewTableHandler(svc).CreateTable)

			req := httptest.NewRequest(http.MethodPost, "/workspaces/"+wsID.String()+"/tables", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := do(r, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedFields != nil {
				assert.Equal(t, tt.expectedFields, decode(t, w).detailFields())
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestTableHandler_GetTable(t *testing.T) {
	tableID := uuid.New()
	svc := &MockTableService{}
	svc.On("Get", mock.Anything, testUserID, tableID).Return(&model.Table{
		ID:      tableID,
		Name:    "Contacts",
		Columns: []model.Column{{Name: "email", Order: 0}, {Name: "age", Order: 1}},
	}, nil)
	r := setupRouter(true)
	r.GET("/tables/:table_id", NewTableHandler(svc).GetTable)

	w := do(r, httptest.NewRequest(http.MethodGet, "/tables/"+tableID.String(), nil))

	require.Equal(t, http.StatusOK, w.Code)
	var tbl model.Table
	require.NoError(t, sonic.Unmarshal(decode(t, w).Data, &tbl))
	require.Len(t, tbl.Columns, 2)
	assert.Equal(t, "email", tbl.Columns[0].Name)
	assert.Equal(t, 1, tbl.Columns[1].Order)
}

func TestTableHandler_AddColumn(t *testing.T) {
	tableID := uuid.New()
	svc := &MockTableService{}
	svc.On("AddColumn", mock.Anything, testUserID, tableID, service.ColumnInput{Name: "phone"}).
		Return(&model.Column{ID: uuid.New(), TableID: tableID, Name: "phone", Type: "text", Order: 2}, nil)
	r := setupRouter(true)
	r.POST("/tables/:table_id/columns", NewTableHandler(svc).AddColumn)

	req := httptest.NewRequest(http.MethodPost, "/tables/"+tableID.String()+"/columns", bytes.NewBufferString(`{"name":"phone"}`))
	req.Header.Set("Content-Type", "application/json")
	w := do(r, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var col model.Column
	require.NoError(t, sonic.Unmarshal(decode(t, w).Data, &col))
	assert.Equal(t, 2, col.Order)
	svc.AssertExpectations(t)
}

func TestTableHandler_DeleteColumn(t *testing.T) {
	tableID, columnID := uuid.New(), uuid.New()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "deleted", expectedStatus: http.StatusOK},
		{name: "missing column", err: service.ErrNotFound, expectedStatus: http.StatusNotFound},
		{name: "no access", err: service.ErrForbidden, expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockTableService{}
			svc.On("DeleteColumn", mock.Anything, testUserID, tableID, columnID).Return(tt.err)
			r := setupRouter(true)
			r.DELETE("/tables/:table_id/columns/:column_id", NewTableHandler(svc).DeleteColumn)

			w := do(r, httptest.NewRequest(http.MethodDelete, "/tables/"+tableID.String()+"/columns/"+columnID.String(), nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestTableHandler_ListAndDelete(t *testing.T) {
	wsID, tableID := uuid.New(), uuid.New()
	svc := &MockTableService{}
	svc.On("List", mock.Anything, testUserID, wsID).Return([]model.Table{{ID: tableID, Name: "Contacts", RowCount: 7}}, nil)
	svc.On("Delete", mock.Anything, testUserID, tableID).Return(nil)
	h := NewTableHandler(svc)
	r := setupRouter(true)
	r.GET("/workspaces/:workspace_id/tables", h.ListTables)
	r.DELETE("/tables/:table_id", h.DeleteTable)

	w := do(r, httptest.NewRequest(http.MethodGet, "/workspaces/"+wsID.String()+"/tables", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list []model.Table
	require.NoError(t, sonic.Unmarshal(decode(t, w).Data, &list))
	require.Len(t, list, 1)
	assert.EqualValues(t, 7, list[0].RowCount)

	w = do(r, httptest.NewRequest(http.MethodDelete, "/tables/"+tableID.String(), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
