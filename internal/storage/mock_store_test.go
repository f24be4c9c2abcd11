package storage

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/scid-pd-engine/internal/domain"
)

// MockStore is a testify mock of Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveProfile(ctx context.Context, profile *domain.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockStore) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockStore) ListProfiles(ctx context.Context, limit, offset int) ([]*domain.Profile, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Profile), args.Error(1)
}

func (m *MockStore) CountProfiles(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) DeleteProfile(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	return m.Called(ctx, writer).Error(0)
}

func (m *MockStore) ImportJSON(ctx context.Context, reader io.Reader) (int, int, error) {
	args := m.Called(ctx, reader)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockStore) Close() error {
	return m.Called().Error(0)
}
