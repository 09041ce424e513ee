// Package mocks holds testify doubles for the ports interfaces.
package mocks

import (
	"context"
	"time"

	"floodmap.app/internal/ports"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/mock"
)

// RemoteAoiClient is a mock of ports.RemoteAoiClient
type RemoteAoiClient struct {
	mock.Mock
}

func (m *RemoteAoiClient) Login(ctx context.Context) (ports.Session, error) {
	args := m.Called(ctx)
	return args.Get(0).(ports.Session), args.Error(1)
}

func (m *RemoteAoiClient) ListAOIs(ctx context.Context) ([]ports.AOIData, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.AOIData), args.Error(1)
}

func (m *RemoteAoiClient) CreateAOI(ctx context.Context, name string, polygon orb.Polygon) (*ports.AOIData, error) {
	args := m.Called(ctx, name, polygon)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.AOIData), args.Error(1)
}

func (m *RemoteAoiClient) DeleteAOI(ctx context.Context, aoiID string) error {
	args := m.Called(ctx, aoiID)
	return args.Error(0)
}

func (m *RemoteAoiClient) ListProducts(ctx context.Context, aoiID string, from, to time.Time) ([]ports.ProductData, error) {
	args := m.Called(ctx, aoiID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.ProductData), args.Error(1)
}

func (m *RemoteAoiClient) GetDownloadLink(ctx context.Context, productID string) (string, error) {
	args := m.Called(ctx, productID)
	return args.String(0), args.Error(1)
}

func (m *RemoteAoiClient) DownloadArchive(ctx context.Context, link string) ([]byte, error) {
	args := m.Called(ctx, link)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

var _ ports.RemoteAoiClient = (*RemoteAoiClient)(nil)

// CredentialStore is a mock of ports.CredentialStore
type CredentialStore struct {
	mock.Mock
}

func (m *CredentialStore) Token(ctx context.Context) (ports.Session, error) {
	args := m.Called(ctx)
	return args.Get(0).(ports.Session), args.Error(1)
}

func (m *CredentialStore) ForceRefresh(ctx context.Context) (ports.Session, error) {
	args := m.Called(ctx)
	return args.Get(0).(ports.Session), args.Error(1)
}

var _ ports.CredentialStore = (*CredentialStore)(nil)

// AreaDirectory is a mock of ports.AreaDirectory
type AreaDirectory struct {
	mock.Mock
}

func (m *AreaDirectory) AreaNames(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

var _ ports.AreaDirectory = (*AreaDirectory)(nil)
