package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/gridspace-io/gridspace/internal/infra/payments"
	"github.com/gridspace-io/gridspace/internal/modules/model"
	"github.com/stretchr/testify/mock"
)

// MockWorkspaceRepo is a mock implementation of WorkspaceRepo
type MockWorkspaceRepo struct {
	mock.Mock
}

func (m *MockWorkspaceRepo) Create(ctx context.Context, ws *model.Workspace, limit int) error {
	args := m.Called(ctx, ws, limit)
	return args.Error(0)
}

func (m *MockWorkspaceRepo) Get(ctx context.Context, id uuid.UUID) (*model.Workspace, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepo) ListByMember(ctx context.Context, userID string) ([]model.Workspace, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Workspace), args.Error(1)
}

func (m *MockWorkspaceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWorkspaceRepo) IsMember(ctx context.Context, workspaceID uuid.UUID, userID string) (bool, error) {
	args := m.Called(ctx, workspaceID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockWorkspaceRepo) IsTableMember(ctx context.Context, tableID uuid.UUID, userID string) (bool, error) {
	args := m.Called(ctx, tableID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockWorkspaceRepo) OwnerOfTable(ctx context.Context, tableID uuid.UUID) (string, error) {
	args := m.Called(ctx, tableID)
	return args.String(0), args.Error(1)
}

// MockTableRepo is a mock implementation of TableRepo
type MockTableRepo struct {
	mock.Mock
}

func (m *MockTableRepo) Create(ctx context.Context, t *model.Table, limit int) error {
	args := m.Called(ctx, t, limit)
	return args.Error(0)
}

func (m *MockTableRepo) Get(ctx context.Context, id uuid.UUID) (*model.Table, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Table), args.Error(1)
}

func (m *MockTableRepo) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.Table, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Table), args.Error(1)
}

func (m *MockTableRepo) CountByWorkspace(ctx context.Context, workspaceID uuid.UUID) (int64, error) {
	args := m.Called(ctx, workspaceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTableRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTableRepo) Columns(ctx context.Context, tableID uuid.UUID) ([]model.Column, error) {
	args := m.Called(ctx, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Column), args.Error(1)
}

func (m *MockTableRepo) AddColumn(ctx context.Context, col *model.Column) error {
	args := m.Called(ctx, col)
	return args.Error(0)
}

func (m *MockTableRepo) DeleteColumn(ctx context.Context, tableID, columnID uuid.UUID) error {
	args := m.Called(ctx, tableID, columnID)
	return args.Error(0)
}

// MockRowRepo is a mock implementation of RowRepo
type MockRowRepo struct {
	mock.Mock
}

func (m *MockRowRepo) Create(ctx context.Context, row *model.Row, limit int) ([]model.Column, error) {
	args := m.Called(ctx, row, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Column), args.Error(1)
}

func (m *MockRowRepo) CreateBatch(ctx context.Context, tableID uuid.UUID, rows []*model.Row, limit int) error {
	args := m.Called(ctx, tableID, rows, limit)
	return args.Error(0)
}

func (m *MockRowRepo) Get(ctx context.Context, tableID, rowID uuid.UUID) (*model.Row, error) {
	args := m.Called(ctx, tableID, rowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Row), args.Error(1)
}

func (m *MockRowRepo) List(ctx context.Context, tableID uuid.UUID, offset, limit int) ([]model.Row, error) {
	args := m.Called(ctx, tableID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Row), args.Error(1)
}

func (m *MockRowRepo) Count(ctx context.Context, tableID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tableID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRowRepo) UpsertCells(ctx context.Context, tableID, rowID uuid.UUID, cells []model.Cell) error {
	args := m.Called(ctx, tableID, rowID, cells)
	return args.Error(0)
}

func (m *MockRowRepo) Delete(ctx context.Context, tableID, rowID uuid.UUID) error {
	args := m.Called(ctx, tableID, rowID)
	return args.Error(0)
}

// MockSubscriptionRepo is a mock implementation of SubscriptionRepo
type MockSubscriptionRepo struct {
	mock.Mock
}

func (m *MockSubscriptionRepo) GetByUserID(ctx context.Context, userID string) (*model.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepo) Upsert(ctx context.Context, s *model.Subscription, columns ...string) error {
	args := m.Called(ctx, s, columns)
	return args.Error(0)
}

func (m *MockSubscriptionRepo) HasEvent(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubscriptionRepo) RecordEvent(ctx context.Context, ev *model.BillingEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

// MockProvider is a mock implementation of payments.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CreateCustomer(ctx context.Context, email, userID string) (string, error) {
	args := m.Called(ctx, email, userID)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) CreateCheckoutSession(ctx context.Context, in payments.CheckoutInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) GetSubscription(ctx context.Context, id string) (*payments.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Subscription), args.Error(1)
}

func (m *MockProvider) GetCustomer(ctx context.Context, id string) (*payments.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Customer), args.Error(1)
}

func (m *MockProvider) ConstructEvent(payload []byte, signature, secret string) (*payments.Event, error) {
	args := m.Called(payload, signature, secret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.Event), args.Error(1)
}

// MockPublisher is a mock implementation of EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, v any) error {
	args := m.Called(ctx, routingKey, v)
	return args.Error(0)
}

// MockArchiver is a mock implementation of Archiver
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) Archive(ctx context.Context, tableID, filename string, data []byte) (string, error) {
	args := m.Called(ctx, tableID, filename, data)
	return args.String(0), args.Error(1)
}

// stubLimits returns fixed quotas.
type stubLimits struct {
	plan model.Plan
	pl   model.PlanLimits
	err  error
}

func (s stubLimits) For(context.Context, string) (model.Plan, model.PlanLimits, error) {
	return s.plan, s.pl, s.err
}

func (s stubLimits) Of(model.Plan) model.PlanLimits { return s.pl }

var freeLimits = stubLimits{plan: model.PlanFree, pl: model.PlanLimits{Workspaces: 1, Tables: 3, RowsPerTable: 100}}
