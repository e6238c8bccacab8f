package handler

import (
	"context"

	"github.com/google/uuid"
	orderapp "github.com/ikkasa/orderhub/internal/application/order"
	"github.com/ikkasa/orderhub/internal/domain/order"
	"github.com/ikkasa/orderhub/internal/infrastructure/ekart"
	"github.com/stretchr/testify/mock"
)

// MockOrderService implements OrderService for testing
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, input order.Patch) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.OrderResponse), args.Error(1)
}

func (m *MockOrderService) Get(ctx context.Context, id uuid.UUID) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.OrderResponse), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, page, limit int) (*orderapp.ListResponse, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.ListResponse), args.Error(1)
}

func (m *MockOrderService) Update(ctx context.Context, id uuid.UUID, input order.Patch) (*orderapp.OrderResponse, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.OrderResponse), args.Error(1)
}

func (m *MockOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockImportService implements ImportService for testing
type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) ImportFile(ctx context.Context, path, originalName string, mode orderapp.ImportMode) (*orderapp.ImportResult, error) {
	args := m.Called(ctx, path, originalName, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.ImportResult), args.Error(1)
}

// MockSyncService implements SyncService for testing
type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) Sync(ctx context.Context, api string, mode orderapp.SyncMode) (*orderapp.SyncResult, error) {
	args := m.Called(ctx, api, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.SyncResult), args.Error(1)
}

// MockReturnService implements ReturnService for testing
type MockReturnService struct {
	mock.Mock
}

func (m *MockReturnService) CreateReturn(ctx context.Context, req ekart.ReturnRequest) (*orderapp.ReturnResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*orderapp.ReturnResult), args.Error(1)
}

var (
	_ OrderService  = (*MockOrderService)(nil)
	_ ImportService = (*MockImportService)(nil)
	_ SyncService   = (*MockSyncService)(nil)
	_ ReturnService = (*MockReturnService)(nil)
)
