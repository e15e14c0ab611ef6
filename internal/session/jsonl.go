// ABOUTME: JSONL conversation store with append-only writes
// ABOUTME: One file per conversation; crash-safe via O_APPEND, open-per-write

package session

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/litigantportal/agentkit/internal/config"
	"github.com/litigantportal/agentkit/pkg/llm"
)

// Record is the envelope for every JSONL line.
type Record struct {
	Version int             `json:"v"`
	Type    string          `json:"type"`
	TS      string          `json:"ts"`
	Data    json.RawMessage `json:"data,omitempty"`
}

const recordMessage = "message"

// JSONLStore writes one .jsonl file per conversation.
type JSONLStore struct {
	dir string
	mu  sync.Mutex
}

// NewJSONLStore creates the store under the default conversations dir.
func NewJSONLStore() (*JSONLStore, error) {
	return NewJSONLStoreAt(config.ConversationsDir())
}

// NewJSONLStoreAt creates the store rooted at dir.
func NewJSONLStoreAt(dir string) (*JSONLStore, error) {
	if err := config.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("creating conversations dir: %w", err)
	}
	return &JSONLStore{dir: dir}, nil
}

func (s *JSONLStore) path(conversationID string) string {
	return filepath.Join(s.dir, conversationID+".jsonl")
}

// Append writes one message record. The file is opened per write with
// O_APPEND so a crash can lose at most the line being written.
func (s *JSONLStore) Append(conversationID string, msg llm.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}
	line, err := json.Marshal(Record{
		Version: 1,
		Type:    recordMessage,
		TS:      time.Now().UTC().Format(time.RFC3339),
		Data:    data,
	})
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path(conversationID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("opening conversation file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	return f.Sync()
}

// Load replays the conversation log. Malformed lines are skipped.
func (s *JSONLStore) Load(conversationID string) ([]llm.Message, error) {
	f, err := os.Open(s.path(conversationID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("opening conversation %s: %w", conversationID, err)
	}
	defer f.Close()

	var msgs []llm.Message
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)

	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		if rec.Type != recordMessage {
			continue
		}
		var msg llm.Message
		if err := json.Unmarshal(rec.Data, &msg); err != nil {
			continue
		}
		msgs = append(msgs, msg)
	}
	if err := scanner.Err(); err != nil {
		return msgs, fmt.Errorf("scanning conversation %s: %w", conversationID, err)
	}
	if len(msgs) == 0 {
		return nil, ErrNotFound
	}
	return msgs, nil
}

// List summarizes all conversation files, reading them concurrently.
func (s *JSONLStore) List() ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading conversations dir: %w", err)
	}

	var (
		g     errgroup.Group
		mu    sync.Mutex
		infos []Info
	)
	g.SetLimit(8)

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".jsonl" {
			continue
		}
		name := entry.Name()
		g.Go(func() error {
			info, err := s.summarize(name)
			if err != nil {
				return nil // unreadable file, skip
			}
			mu.Lock()
			infos = append(infos, info)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Started.After(infos[j].Started) })
	return infos, nil
}

func (s *JSONLStore) summarize(name string) (Info, error) {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	info := Info{ID: strings.TrimSuffix(name, ".jsonl")}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)

	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		if info.Messages == 0 {
			if ts, err := time.Parse(time.RFC3339, rec.TS); err == nil {
				info.Started = ts
			}
		}
		info.Messages++
	}
	if info.Messages == 0 {
		return Info{}, fmt.Errorf("empty conversation file %s", name)
	}
	return info, nil
}

func (s *JSONLStore) Close() error { return nil }
