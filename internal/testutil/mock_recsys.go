// Package testutil provides testing utilities for the feed batch cache.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// GenerateRequest mirrors the recommendation service wire request, so tests
// can assert on what the adapter sent.
type GenerateRequest struct {
	OwnerID    string   `json:"owner_id"`
	Limit      int      `json:"limit"`
	ExcludeIDs []string `json:"exclude_ids"`
	Language   string   `json:"language"`
	Category   string   `json:"category"`
}

// MockRecsys is a configurable mock recommendation service for testing.
type MockRecsys struct {
	server *httptest.Server
	mu     sync.RWMutex

	contentIDs []string
	statusCode int
	delay      time.Duration

	// Tracking
	RequestCount int
	LastRequest  *GenerateRequest
}

// NewMockRecsys creates a mock recommendation service that returns a
// sequential batch of the requested size by default.
func NewMockRecsys() *MockRecsys {
	mock := &MockRecsys{statusCode: http.StatusOK}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequest = &req
		ids := mock.contentIDs
		status := mock.statusCode
		delay := mock.delay
		mock.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}

		if status != http.StatusOK {
			http.Error(w, "mock recsys error", status)
			return
		}

		if ids == nil {
			ids = make([]string, req.Limit)
			for i := range ids {
				ids[i] = fmt.Sprintf("content-%d", i)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string][]string{"content_ids": ids})
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockRecsys) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockRecsys) Close() {
	m.server.Close()
}

// Reset clears tracking counters and configured behavior.
func (m *MockRecsys) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequest = nil
	m.contentIDs = nil
	m.statusCode = http.StatusOK
	m.delay = 0
}

// SetContentIDs fixes the IDs returned for every generation. An empty
// non-nil slice simulates an empty generation.
func (m *MockRecsys) SetContentIDs(ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contentIDs = ids
}

// SetStatusCode makes the mock fail with the given HTTP status.
func (m *MockRecsys) SetStatusCode(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCode = status
}

// SetDelay adds artificial latency to every response.
func (m *MockRecsys) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// GetRequestCount returns how many generation requests were served.
func (m *MockRecsys) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetLastRequest returns the most recent generation request, or nil.
func (m *MockRecsys) GetLastRequest() *GenerateRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequest
}
