// ABOUTME: Conversation message stores: interface, factory, and in-memory backend
// ABOUTME: Every appended message is durable before the caller observes it

package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/litigantportal/agentkit/pkg/llm"
)

// ErrNotFound reports a conversation ID with no stored messages.
var ErrNotFound = errors.New("conversation not found")

// Info summarizes a stored conversation for listing.
type Info struct {
	ID       string    `json:"id"`
	Started  time.Time `json:"started"`
	Messages int       `json:"messages"`
}

// Store persists conversation message logs. Append must be durable
// before it returns; Load replays the full log in append order.
type Store interface {
	Append(conversationID string, msg llm.Message) error
	Load(conversationID string) ([]llm.Message, error)
	List() ([]Info, error)
	Close() error
}

// Open builds a store by kind: "jsonl" (default), "sqlite", or "memory".
func Open(kind string) (Store, error) {
	switch kind {
	case "", "jsonl":
		return NewJSONLStore()
	case "sqlite":
		return NewSQLiteStore()
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store %q (jsonl, sqlite, memory)", kind)
	}
}

// MemoryStore keeps conversations in process memory. Used by tests and
// one-shot runs that should leave no files behind.
type MemoryStore struct {
	mu      sync.RWMutex
	logs    map[string][]llm.Message
	started map[string]time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		logs:    make(map[string][]llm.Message),
		started: make(map[string]time.Time),
	}
}

func (m *MemoryStore) Append(conversationID string, msg llm.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.logs[conversationID]; !ok {
		m.started[conversationID] = time.Now().UTC()
	}
	m.logs[conversationID] = append(m.logs[conversationID], msg)
	return nil
}

func (m *MemoryStore) Load(conversationID string) ([]llm.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs, ok := m.logs[conversationID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]llm.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (m *MemoryStore) List() ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]Info, 0, len(m.logs))
	for id, msgs := range m.logs {
		infos = append(infos, Info{ID: id, Started: m.started[id], Messages: len(msgs)})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Started.After(infos[j].Started) })
	return infos, nil
}

func (m *MemoryStore) Close() error { return nil }
