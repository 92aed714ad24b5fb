// internal/ratelimit/file_store.go
//
// JSON-file store.  The whole file is one object mapping storage keys to
// epoch-millisecond arrays, e.g.
//
//	{"rate_limit_lead:203.0.113.9":[1718000000000,1718000012000]}
//
// Suitable for a single process.  A corrupt file is reported as a read
// error, which makes the limiter fail open until the next Save rewrites it.
// Other read errors (permissions, I/O) fail Save without touching the file.

package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore is safe for concurrent use within one process.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load(_ context.Context, key string) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.read()
	if err != nil {
		return nil, err
	}
	if ts, ok := all[key]; ok {
		return ts, nil
	}
	return []int64{}, nil
}

func (f *FileStore) Save(_ context.Context, key string, ts []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.read()
	if err != nil {
		// A corrupt file is overwritten.  Any other read error leaves the
		// file, and every other key's window, untouched.
		if !corrupt(err) {
			return err
		}
		all = map[string][]int64{}
	}
	all[key] = ts

	buf, err := json.Marshal(all)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) read() (map[string][]int64, error) {
	buf, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string][]int64{}, nil
	}
	if err != nil {
		return nil, err
	}
	all := map[string][]int64{}
	if len(buf) == 0 {
		return all, nil
	}
	if err := json.Unmarshal(buf, &all); err != nil {
		return nil, fmt.Errorf("rate limit file %s: %w", f.path, err)
	}
	return all, nil
}

// corrupt reports whether err came from decoding the file, not reading it.
func corrupt(err error) bool {
	var syn *json.SyntaxError
	var typ *json.UnmarshalTypeError
	return errors.As(err, &syn) || errors.As(err, &typ)
}
