package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore keeps one JSON file per session in a directory. Files are
// private to the user (0600) and replaced atomically.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore opens (and creates) a session directory. An empty dir means
// ~/.config/pagesmith/sessions/.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".config", "pagesmith", "sessions")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// file maps a token to its path. Tokens never contain separators, but
// filepath.Base keeps a hostile one inside dir.
func (s *FileStore) file(id string) string {
	return filepath.Join(s.dir, filepath.Base(id)+".json")
}

func (s *FileStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, err := readFile(s.file(id))
	if err != nil || sess == nil {
		return nil, err
	}
	if sess.IsExpired() {
		os.Remove(s.file(id))
		return nil, nil
	}
	return sess, nil
}

func (s *FileStore) Set(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFile(s.file(sess.ID), sess)
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.file(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Cleanup removes expired and unreadable session files.
func (s *FileStore) Cleanup(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read session dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		if sess, err := readFile(path); err != nil || (sess != nil && sess.IsExpired()) {
			os.Remove(path)
		}
	}
	return nil
}

// Path returns the session directory.
func (s *FileStore) Path() string { return s.dir }

var _ Store = (*FileStore)(nil)

// readFile returns nil, nil for a missing file.
func readFile(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", filepath.Base(path), err)
	}
	return &sess, nil
}

func writeFile(path string, sess *Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".session-*")
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// =============================================================================
// CLI credentials
// =============================================================================

// credentialsFile is the name of the CLI's single login on disk.
const credentialsFile = "remote"

// CLIStore keeps the one remote login of the CLI. The stored session's ID
// is the token issued by the server and Server is its base URL.
type CLIStore struct {
	files *FileStore
}

// NewCLIStore opens the credentials store under dir (default
// ~/.config/pagesmith/sessions/).
func NewCLIStore(dir string) (*CLIStore, error) {
	files, err := NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	return &CLIStore{files: files}, nil
}

// Load returns the stored credentials, or nil when logged out or expired.
// Expired credentials stay on disk until the next login or logout.
func (c *CLIStore) Load(context.Context) (*Session, error) {
	c.files.mu.RLock()
	defer c.files.mu.RUnlock()
	sess, err := readFile(c.Path())
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	if sess == nil || sess.IsExpired() {
		return nil, nil
	}
	return sess, nil
}

// Save replaces the stored credentials.
func (c *CLIStore) Save(_ context.Context, sess *Session) error {
	c.files.mu.Lock()
	defer c.files.mu.Unlock()
	return writeFile(c.Path(), sess)
}

// Delete removes the stored credentials.
func (c *CLIStore) Delete(ctx context.Context) error {
	return c.files.Delete(ctx, credentialsFile)
}

// Path returns the credentials file path.
func (c *CLIStore) Path() string {
	return c.files.file(credentialsFile)
}
