package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MockWarehouse records the statements a run would send to the cluster
type MockWarehouse struct {
	mu sync.Mutex

	// Connection state
	Connected    bool
	ConnectCount int
	CloseCount   int

	// Execution tracking
	ExecutedQueries []ExecutedQuery

	// Behavior control
	ConnectError error
	// FailOn fails the first statement containing the substring
	FailOn    string
	FailError error
}

// ExecutedQuery represents a committed statement
type ExecutedQuery struct {
	Query     string
	Timestamp time.Time
}

// NewMockWarehouse creates a new mock warehouse
func NewMockWarehouse() *MockWarehouse {
	return &MockWarehouse{
		ExecutedQueries: make([]ExecutedQuery, 0),
	}
}

// Connect simulates opening the session
func (m *MockWarehouse) Connect(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ConnectCount++
	if m.ConnectError != nil {
		return m.ConnectError
	}

	m.Connected = true
	return nil
}

// ExecCommit simulates executing and committing a statement
func (m *MockWarehouse) ExecCommit(_ context.Context, query string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.Connected {
		return fmt.Errorf("not connected")
	}

	if m.FailOn != "" && strings.Contains(query, m.FailOn) {
		if m.FailError != nil {
			return m.FailError
		}
		return fmt.Errorf("statement failed: %s", m.FailOn)
	}

	m.ExecutedQueries = append(m.ExecutedQueries, ExecutedQuery{
		Query:     query,
		Timestamp: time.Now(),
	})
	return nil
}

// Close simulates releasing the session
func (m *MockWarehouse) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CloseCount++
	m.Connected = false
	return nil
}

// Queries returns the executed statements in order
func (m *MockWarehouse) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	queries := make([]string, 0, len(m.ExecutedQueries))
	for _, q := range m.ExecutedQueries {
		queries = append(queries, q.Query)
	}
	return queries
}

// Reset clears all recorded state
func (m *MockWarehouse) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Connected = false
	m.ConnectCount = 0
	m.CloseCount = 0
	m.ExecutedQueries = make([]ExecutedQuery, 0)
	m.ConnectError = nil
	m.FailOn = ""
	m.FailError = nil
}
