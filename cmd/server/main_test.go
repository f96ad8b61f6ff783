package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("SENTRY_DSN", "")
	t.Setenv("OTEL_ENABLED", "false")
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeedCuratorAndVerify(t *testing.T) {
	setupEnv(t)

	if out, err := execute(t, "", "migrate"); err != nil || !strings.Contains(out, "schema is up to date") {
		t.Fatalf("migrate failed: %v (%s)", err, out)
	}

	fixtures := filepath.Join("..", "..", "internal", "catalog", "testdata", "catalog.yaml")
	out, err := execute(t, "", "seed", "--file", fixtures)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if !strings.Contains(out, "spells") {
		t.Fatalf("expected row counts, got %q", out)
	}

	if out, err := execute(t, "hunter2-hunter2\n", "curator", "add", "archivist"); err != nil || !strings.Contains(out, "created curator archivist") {
		t.Fatalf("curator add failed: %v (%s)", err, out)
	}

	out, err = execute(t, "", "verify-spell", "fireball", "--curator", "archivist", "--password", "hunter2-hunter2")
	if err != nil {
		t.Fatalf("verify-spell failed: %v", err)
	}
	if !strings.Contains(out, "Fireball verified by archivist") {
		t.Fatalf("unexpected output %q", out)
	}

	if _, err := execute(t, "", "verify-spell", "fireball", "--curator", "archivist", "--password", "hunter2-hunter2"); err == nil {
		t.Fatalf("expected the second verification to fail")
	}
	if _, err := execute(t, "", "verify-spell", "ice-storm", "--curator", "archivist", "--password", "wrong"); err == nil {
		t.Fatalf("expected wrong credentials to fail")
	}
}

func TestSeedRequiresFile(t *testing.T) {
	setupEnv(t)

	if _, err := execute(t, "", "seed"); err == nil {
		t.Fatalf("expected an error without --file")
	}
}

func TestPasswordOrStdin(t *testing.T) {
	t.Parallel()

	if got, err := passwordOrStdin("given", strings.NewReader("ignored\n")); err != nil || got != "given" {
		t.Fatalf("expected flag password, got %q, %v", got, err)
	}
	if got, err := passwordOrStdin("", strings.NewReader("typed\r\n")); err != nil || got != "typed" {
		t.Fatalf("expected stdin password, got %q, %v", got, err)
	}
	if _, err := passwordOrStdin("", strings.NewReader("")); err == nil {
		t.Fatalf("expected error for empty password")
	}
}
