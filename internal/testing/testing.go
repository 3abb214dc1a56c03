// package testing contains shared testing utilities
package testing

import (
	"errors"
	"io"
	"maps"
	"os"
	"sync"
	"testing"
)

// ErrInjected is returned by doubles configured to fail.
var ErrInjected = errors.New("injected failure")

// MemoryStore is an in-memory key-value store satisfying repositories.Store.
//
// Set FailGet or FailSet to make the corresponding calls return [ErrInjected]. A failed SetMany
// writes nothing.
type MemoryStore struct {
	mu      sync.Mutex
	data    map[string]string
	FailGet bool
	FailSet bool
	Writes  int
}

// NewMemoryStore creates a MemoryStore holding a copy of seed.
func NewMemoryStore(seed map[string]string) *MemoryStore {
	data := map[string]string{}
	maps.Copy(data, seed)
	return &MemoryStore{data: data}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailGet {
		return "", false, ErrInjected
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryStore) SetMany(entries map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSet {
		return ErrInjected
	}
	maps.Copy(m.data, entries)
	m.Writes++
	return nil
}

// Value returns the raw stored value for key, or "" when absent.
func (m *MemoryStore) Value(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
