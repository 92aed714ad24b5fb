package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNewWritesDailyFile(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	root := t.TempDir()
	log, err := New(Options{Root: root, Level: "debug"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Debugw("probe", "form", "lead")
	_ = log.Sync()

	path := filepath.Join(root, "logs", time.Now().Format("2006-01-02")+".log")
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), `"msg":"probe"`) {
		t.Fatalf("log missing probe line: %s", b)
	}
	if zap.L() == prev {
		t.Fatal("global logger not replaced")
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(Options{Root: t.TempDir(), Level: "chatty"}); err == nil {
		t.Fatal("bad level accepted")
	}
}
