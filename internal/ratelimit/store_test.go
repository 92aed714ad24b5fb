// internal/ratelimit/store_test.go
//
// Store round-trips: file store on a temp dir, SQL store against sqlmock.
//
// Run: go test ./internal/ratelimit -v

package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "ratelimit.json")
	store := NewFileStore(path)

	got, err := store.Load(ctx, "rate_limit_cta")
	if err != nil || len(got) != 0 {
		t.Fatalf("Load on missing file = %v, %v", got, err)
	}

	if err := store.Save(ctx, "rate_limit_cta", []int64{1, 2}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Save(ctx, "rate_limit_booking", []int64{3}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err = NewFileStore(path).Load(ctx, "rate_limit_cta")
	if err != nil || len(got) != 2 || got[1] != 2 {
		t.Fatalf("reloaded = %v, %v", got, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("mode = %o, want 600", perm)
	}
}

func TestFileStoreCorruptFailsOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ratelimit.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	store := NewFileStore(path)
	if _, err := store.Load(ctx, "rate_limit_cta"); err == nil {
		t.Fatal("expected decode error")
	}

	l := New(store, "cta", 1, time.Minute)
	if !l.CanSubmit(ctx) {
		t.Fatal("corrupt file should fail open")
	}

	// A direct Save repairs the file.
	if err := store.Save(ctx, "rate_limit_cta", []int64{5}); err != nil {
		t.Fatalf("Save over corrupt file: %v", err)
	}
	if got, err := store.Load(ctx, "rate_limit_cta"); err != nil || len(got) != 1 {
		t.Fatalf("after repair = %v, %v", got, err)
	}
}

func TestFileStoreSaveKeepsFileOnReadError(t *testing.T) {
	ctx := context.Background()
	// A directory at the file path fails ReadFile with something other than
	// a decode error.
	path := filepath.Join(t.TempDir(), "ratelimit.json")
	if err := os.MkdirAll(filepath.Join(path, "keep"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := NewFileStore(path).Save(ctx, "rate_limit_cta", []int64{1}); err == nil {
		t.Fatal("Save after a read error should fail")
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Save wrote a replacement file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(path, "keep")); err != nil {
		t.Fatalf("existing state disturbed: %v", err)
	}
}

func TestFileStoreSaveRepairsWrongShape(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ratelimit.json")
	if err := os.WriteFile(path, []byte(`{"rate_limit_cta":"soon"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	store := NewFileStore(path)
	if err := store.Save(ctx, "rate_limit_booking", []int64{7}); err != nil {
		t.Fatalf("Save over mistyped file: %v", err)
	}
	if got, err := store.Load(ctx, "rate_limit_booking"); err != nil || len(got) != 1 || got[0] != 7 {
		t.Fatalf("after repair = %v, %v", got, err)
	}
}

func TestCorrupt(t *testing.T) {
	var all map[string][]int64
	syn := json.Unmarshal([]byte("{"), &all)
	typ := json.Unmarshal([]byte(`{"k":"v"}`), &all)
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"syntax", fmt.Errorf("wrapped: %w", syn), true},
		{"type", fmt.Errorf("wrapped: %w", typ), true},
		{"permission", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrPermission}, false},
		{"plain", errors.New("EIO"), false},
	}
	for _, tt := range tests {
		if got := corrupt(tt.err); got != tt.want {
			t.Errorf("%s: corrupt = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func newMockStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLStore(sqlx.NewDb(db, "mysql")), mock
}

func TestSQLStoreLoad(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(qLoad)).
		WithArgs("rate_limit_cta").
		WillReturnRows(sqlmock.NewRows([]string{"timestamps"}).AddRow([]byte("[100,200]")))

	got, err := s.Load(context.Background(), "rate_limit_cta")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 || got[0] != 100 || got[1] != 200 {
		t.Fatalf("unexpected result: %#v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSQLStoreLoadMissing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(qLoad)).
		WithArgs("rate_limit_new").
		WillReturnRows(sqlmock.NewRows([]string{"timestamps"}))

	got, err := s.Load(context.Background(), "rate_limit_new")
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("Load missing = %#v, %v", got, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSQLStoreSave(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(qUpsert)).
		WithArgs("rate_limit_cta", []byte("[1,2,3]")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Save(context.Background(), "rate_limit_cta", []int64{1, 2, 3}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSQLStoreMigrate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS rate_limit")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSQLStoreLoadErrorFailsOpen(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(qLoad)).
		WithArgs("rate_limit_cta").
		WillReturnError(errors.New("connection refused"))

	l := New(s, "cta", 1, time.Minute)
	if !l.CanSubmit(context.Background()) {
		t.Fatal("SQL read error should fail open")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
