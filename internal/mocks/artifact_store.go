package mocks

import (
	"context"

	"floodmap.app/internal/ports"
	"github.com/stretchr/testify/mock"
)

// ArtifactStore is a mock of ports.ArtifactStore
type ArtifactStore struct {
	mock.Mock
}

func (m *ArtifactStore) Has(ctx context.Context, productID string) (bool, error) {
	args := m.Called(ctx, productID)
	return args.Bool(0), args.Error(1)
}

func (m *ArtifactStore) Put(ctx context.Context, artifact ports.Artifact) (*ports.IndexEntry, error) {
	args := m.Called(ctx, artifact)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.IndexEntry), args.Error(1)
}

func (m *ArtifactStore) Get(ctx context.Context, productID string, kind ports.GeometryKind) ([]byte, error) {
	args := m.Called(ctx, productID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *ArtifactStore) IndexSnapshot(ctx context.Context) ([]ports.IndexEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.IndexEntry), args.Error(1)
}

var _ ports.ArtifactStore = (*ArtifactStore)(nil)
