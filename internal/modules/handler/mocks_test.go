package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gridspace-io/gridspace/internal/middleware"
	"github.com/gridspace-io/gridspace/internal/modules/model"
	"github.com/gridspace-io/gridspace/internal/modules/service"
)

const testUserID = "user_1"

type MockWorkspaceService struct{ mock.Mock }

func (m *MockWorkspaceService) Create(ctx context.Context, userID string, in service.CreateWorkspaceInput) (*model.Workspace, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workspace), args.Error(1)
}

func (m *MockWorkspaceService) List(ctx context.Context, userID string) ([]model.Workspace, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Workspace), args.Error(1)
}

func (m *MockWorkspaceService) Get(ctx context.Context, userID string, id uuid.UUID) (*model.Workspace, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workspace), args.Error(1)
}

func (m *MockWorkspaceService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

type MockTableService struct{ mock.Mock }

func (m *MockTableService) Create(ctx context.Context, userID string, workspaceID uuid.UUID, in service.CreateTableInput) (*model.Table, error) {
	args := m.Called(ctx, userID, workspaceID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Table), args.Error(1)
}

func (m *MockTableService) List(ctx context.Context, userID string, workspaceID uuid.UUID) ([]model.Table, error) {
	args := m.Called(ctx, userID, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Table), args.Error(1)
}

func (m *MockTableService) Get(ctx context.Context, userID string, id uuid.UUID) (*model.Table, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Table), args.Error(1)
}

func (m *MockTableService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockTableService) AddColumn(ctx context.Context, userID string, tableID uuid.UUID, in service.ColumnInput) (*model.Column, error) {
	args := m.Called(ctx, userID, tableID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Column), args.Error(1)
}

func (m *MockTableService) DeleteColumn(ctx context.Context, userID string, tableID, columnID uuid.UUID) error {
	return m.Called(ctx, userID, tableID, columnID).Error(0)
}

type MockRowService struct{ mock.Mock }

func (m *MockRowService) List(ctx context.Context, userID string, tableID uuid.UUID, page, limit int) (*service.RowPage, error) {
	args := m.Called(ctx, userID, tableID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RowPage), args.Error(1)
}

func (m *MockRowService) Create(ctx context.Context, userID string, tableID uuid.UUID, cells map[string]string) (*model.FlatRow, error) {
	args := m.Called(ctx, userID, tableID, cells)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FlatRow), args.Error(1)
}

func (m *MockRowService) Update(ctx context.Context, userID string, tableID, rowID uuid.UUID, cells map[string]string) (*model.FlatRow, error) {
	args := m.Called(ctx, userID, tableID, rowID, cells)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FlatRow), args.Error(1)
}

func (m *MockRowService) Delete(ctx context.Context, userID string, tableID, rowID uuid.UUID) error {
	return m.Called(ctx, userID, tableID, rowID).Error(0)
}

type MockImportService struct{ mock.Mock }

func (m *MockImportService) ImportCSV(ctx context.Context, userID string, tableID uuid.UUID, filename string, data []byte) (*service.ImportResult, error) {
	args := m.Called(ctx, userID, tableID, filename, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ImportResult), args.Error(1)
}

type MockBillingService struct{ mock.Mock }

func (m *MockBillingService) Checkout(ctx context.Context, userID, email, plan string) (string, error) {
	args := m.Called(ctx, userID, email, plan)
	return args.String(0), args.Error(1)
}

func (m *MockBillingService) HandleEvent(ctx context.Context, payload []byte, signature string) error {
	return m.Called(ctx, payload, signature).Error(0)
}

func (m *MockBillingService) Subscription(ctx context.Context, userID string) (*service.SubscriptionSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubscriptionSummary), args.Error(1)
}

// setupRouter returns a test router; when authed it injects the test principal the way SessionAuth does.
func setupRouter(authed bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if authed {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.PrincipalKey, &model.Principal{UserID: testUserID, Email: "ann@example.com"})
			c.Next()
		})
	}
	return r
}

type testResponse struct {
	Code    int             `json:"code"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
	Details any             `json:"details"`
}

// detailFields returns the field names of a validation response.
func (r testResponse) detailFields() []string {
	list, _ := r.Details.([]any)
	out := make([]string, 0, len(list))
	for _, d := range list {
		if m, ok := d.(map[string]any); ok {
			if f, ok := m["field"].(string); ok {
				out = append(out, f)
			}
		}
	}
	return out
}

func decode(t *testing.T, w *httptest.ResponseRecorder) testResponse {
	t.Helper()
	var resp testResponse
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func do(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
