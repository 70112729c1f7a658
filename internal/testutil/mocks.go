// Package testutil provides shared helpers and mock implementations for
// tests across the module.
package testutil

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/stackvity/eol-converter/pkg/eol"
)

// MockHooks provides a mock implementation of the eol.Hooks interface.
// Configure expectations using testify/mock methods (e.g.
// .On("OnFileDiscovered", ...).Return(...)). The engine invokes hooks from
// multiple workers, so assertions on call state must happen after Run
// returns.
type MockHooks struct {
	mock.Mock
}

// OnFileDiscovered mocks the OnFileDiscovered method.
func (m *MockHooks) OnFileDiscovered(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

// OnFileStatusUpdate mocks the OnFileStatusUpdate method.
func (m *MockHooks) OnFileStatusUpdate(path string, status eol.Status, message string, duration time.Duration) error {
	args := m.Called(path, status, message, duration)
	return args.Error(0)
}

// OnRunComplete mocks the OnRunComplete method.
func (m *MockHooks) OnRunComplete(report eol.Report) error {
	args := m.Called(report)
	return args.Error(0)
}

var _ eol.Hooks = (*MockHooks)(nil)
