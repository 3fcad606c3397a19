package threadstore

import (
	"context"
	"sync"

	"github.com/soothe-labs/advicebot/internal/domain"
)

// Memory holds bindings in process memory. Bindings do not survive a
// restart; it backs dev runs without a database and the test suite.
type Memory struct {
	mu       sync.RWMutex
	bindings map[string]string
}

func NewMemory() *Memory {
	return &Memory{bindings: make(map[string]string)}
}

func (s *Memory) Get(_ context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	threadID, ok := s.bindings[sessionID]
	if !ok {
		return "", domain.ErrBindingNotFound
	}
	return threadID, nil
}

func (s *Memory) Put(_ context.Context, sessionID, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bindings[sessionID] = threadID
	return nil
}

// Len reports the number of stored bindings.
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.bindings)
}
