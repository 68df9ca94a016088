package commands

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MrEthical07/authstate"
	"github.com/MrEthical07/authstate/backend/sqlitebackend"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSQLiteLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	out, err := run(t, "--sqlite", path, "init", "--session", "s1")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if strings.TrimSpace(out) != "s1" {
		t.Fatalf("expected session id output, got %q", out)
	}

	out, err = run(t, "--sqlite", path, "sessions")
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if strings.TrimSpace(out) != "s1" {
		t.Fatalf("expected s1 to be listed, got %q", out)
	}

	out, err = run(t, "--sqlite", path, "show", "--session", "s1")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{"Registration ID:", "Registered:        false", "Next pre-key:      1", "authstate:s1:creds"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in show output, got:\n%s", want, out)
		}
	}

	seedPreKey(t, path, "s1")

	out, err = run(t, "--sqlite", path, "get", "--session", "s1", "pre-key", "7", "8")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(out, `"type": "Buffer"`) || !strings.Contains(out, `"8": null`) {
		t.Fatalf("unexpected get output:\n%s", out)
	}

	out, err = run(t, "--sqlite", path, "clear", "--session", "s1")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if strings.TrimSpace(out) != "cleared 2 keys" {
		t.Fatalf("unexpected clear output %q", out)
	}

	out, err = run(t, "--sqlite", path, "sessions")
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Fatalf("expected no sessions after clear, got %q", out)
	}
}

func seedPreKey(t *testing.T, path, sessionID string) {
	t.Helper()
	db, err := sqlitebackend.Open(path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	mgr, err := authstate.New().WithBackend(db).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	st, err := mgr.Open(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	err = st.Keys().Set(context.Background(), map[authstate.Category]map[string]any{
		authstate.CategoryPreKey: {"7": map[string]any{"public": []byte{1, 2, 3}}},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestInitGeneratesSessionID(t *testing.T) {
	mr := miniredis.RunT(t)

	out, err := run(t, "--redis", mr.Addr(), "init")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	id := strings.TrimSpace(out)
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected a uuid session id, got %q", id)
	}
	if !mr.Exists("authstate:" + id + ":creds") {
		t.Fatalf("expected creds key in redis, got %v", mr.Keys())
	}

	out, err = run(t, "--redis", mr.Addr(), "--prefix", "other", "sessions")
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Fatalf("expected prefix to isolate sessions, got %q", out)
	}
}

func TestCommandErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	cases := [][]string{
		{"--sqlite", path, "show"},
		{"--sqlite", path, "show", "--session", "missing"},
		{"--sqlite", path, "get", "--session", "s1", "prekeys", "1"},
		{"--sqlite", path, "get", "--session", "s1", "creds", "x"},
		{"--sqlite", path, "get", "--session", "s1", "pre-key"},
		{"--sqlite", path, "--redis", "127.0.0.1:1", "sessions"},
	}
	for _, args := range cases {
		if _, err := run(t, args...); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}
