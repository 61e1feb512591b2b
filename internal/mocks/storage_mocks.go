// Package mocks holds testify mocks of the repository, storage and service
// interfaces.
package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
	"github.com/welldanyogia/webrana-teammail-backend/internal/storage"
)

// MockFileStorage implements storage.FileStorage
type MockFileStorage struct {
	mock.Mock
}

// Save stores content and returns where it went
func (m *MockFileStorage) Save(ctx context.Context, filename string, content io.Reader) (storage.Object, error) {
	args := m.Called(ctx, filename, content)
	return args.Get(0).(storage.Object), args.Error(1)
}

// Open retrieves a file by its path
func (m *MockFileStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// Delete removes a file by its path
func (m *MockFileStorage) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}
