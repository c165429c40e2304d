package mock

import (
	"github.com/stretchr/testify/mock"
)

// MockTarget is a mock implementation of the maintenance Target interface.
type MockTarget struct {
	mock.Mock
}

// Size mocks the Size method.
func (m *MockTarget) Size() int {
	return m.Called().Int(0)
}

// Capacity mocks the Capacity method.
func (m *MockTarget) Capacity() int {
	return m.Called().Int(0)
}

// SlotLength mocks the SlotLength method.
func (m *MockTarget) SlotLength() int {
	return m.Called().Int(0)
}

// ClearOrphanEntries mocks the ClearOrphanEntries method.
func (m *MockTarget) ClearOrphanEntries() int {
	return m.Called().Int(0)
}

// CleanUp mocks the CleanUp method.
func (m *MockTarget) CleanUp() int {
	return m.Called().Int(0)
}

// Shrink mocks the Shrink method.
func (m *MockTarget) Shrink() bool {
	return m.Called().Bool(0)
}

// ExpectShape sets up Size, Capacity and SlotLength to report a fixed table.
func (m *MockTarget) ExpectShape(size, capacity, slotLength int) {
	m.On("Size").Return(size)
	m.On("Capacity").Return(capacity)
	m.On("SlotLength").Return(slotLength)
}
