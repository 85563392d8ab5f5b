package completion

import (
	"context"
	"strings"
	"sync"
)

// MockClient is a scripted Client for tests. Replies are matched by prompt
// substring in registration order; unmatched prompts get the default reply.
type MockClient struct {
	mu       sync.Mutex
	rules    []mockRule
	fallback string
	err      error
	calls    []Request
}

type mockRule struct {
	substring string
	reply     string
}

// NewMockClient builds a mock that answers everything with defaultReply.
func NewMockClient(defaultReply string) *MockClient {
	return &MockClient{fallback: defaultReply}
}

// Reply registers a scripted reply for prompts containing substring.
func (m *MockClient) Reply(substring, reply string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, mockRule{substring: substring, reply: reply})
	return m
}

// Fail makes every call return err.
func (m *MockClient) Fail(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Complete implements Client.
func (m *MockClient) Complete(_ context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	if m.err != nil {
		return "", m.err
	}
	for _, rule := range m.rules {
		if strings.Contains(req.Prompt, rule.substring) {
			return rule.reply, nil
		}
	}
	return m.fallback, nil
}

// Calls returns the requests seen so far.
func (m *MockClient) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}
