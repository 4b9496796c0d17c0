package testutil

import (
	"context"

	"github.com/arthur-debert/appbox/pkg/execution"
	"github.com/stretchr/testify/mock"
)

// MockRunner implements execution.Runner for testing
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, cmd execution.Command) (execution.Result, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(execution.Result), args.Error(1)
}

// MockCleaner implements the installer's Cleaner for testing
type MockCleaner struct {
	mock.Mock
}

func (m *MockCleaner) RemoveAll(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}
