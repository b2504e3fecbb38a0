package client

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenStore holds the bearer credential attached to every request.
type TokenStore interface {
	Token() string
	SetToken(token string) error
	Clear() error
}

type MemoryTokens struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryTokens(token string) *MemoryTokens {
	return &MemoryTokens{token: token}
}

func (m *MemoryTokens) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *MemoryTokens) SetToken(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryTokens) Clear() error {
	return m.SetToken("")
}

// FileTokens keeps the token in a file readable only by its owner, so that
// successive CLI invocations share one login.
type FileTokens struct {
	Path string

	mu sync.Mutex
}

func (f *FileTokens) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func (f *FileTokens) SetToken(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(f.Path, []byte(token+"\n"), 0o600)
}

func (f *FileTokens) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := os.Remove(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
