package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ADT-Software/openssl/pkg/trace"
	"github.com/ADT-Software/openssl/pkg/tracelog"
)

func writeCapture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cli.tlog")
	fl, err := tracelog.NewFileLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	fl.Log(tracelog.Record{BlockID: "abcdef0123", Category: trace.CategoryInit, CategoryName: "INIT", Body: []byte("ready"), Writes: 1})
	fl.Close()
	return path
}

func TestExecSubcommands(t *testing.T) {
	path := writeCapture(t)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"view", path}, "[block:abcdef01] INIT"},
		{[]string{"view", "--category", "init", path}, "ready"},
		{[]string{"export", path}, `"block_id":"abcdef0123"`},
		{[]string{"export", "--format", "csv", path}, "timestamp,block_id"},
		{[]string{"stats", path}, "Total Blocks: 1"},
		{[]string{"filter", "-o", filepath.Join(t.TempDir(), "f.tlog"), path}, "Filtered 1 records"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args[:len(tt.args)-1], " "), func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if err := exec(context.Background(), &stdout, &stderr, tt.args); err != nil {
				t.Fatalf("exec failed: %v (stderr: %s)", err, stderr.String())
			}
			if !strings.Contains(stdout.String(), tt.want) {
				t.Errorf("stdout missing %q:\n%s", tt.want, stdout.String())
			}
		})
	}
}

func TestExecMissingPath(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := exec(context.Background(), &stdout, &stderr, []string{"stats"})
	if !errors.Is(err, errNoPath) {
		t.Fatalf("expected errNoPath, got %v", err)
	}
	if !strings.Contains(stderr.String(), "stats") {
		t.Errorf("expected usage on stderr, got %q", stderr.String())
	}
}

func TestExecHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := exec(context.Background(), &stdout, &stderr, []string{"-h"}); err != nil {
		t.Fatalf("help should not be an error: %v", err)
	}
	for _, sub := range []string{"view", "export", "filter", "stats"} {
		if !strings.Contains(stderr.String(), sub) {
			t.Errorf("help missing subcommand %q", sub)
		}
	}
}

func TestExecUnknownCategory(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := exec(context.Background(), &stdout, &stderr, []string{"view", "--category", "nope", writeCapture(t)})
	if err == nil || !strings.Contains(err.Error(), "unknown category") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExecNoSubcommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := exec(context.Background(), &stdout, &stderr, nil); err != nil {
		t.Fatalf("bare invocation should print help, got %v", err)
	}
	if stderr.Len() == 0 {
		t.Error("expected help output")
	}
}
