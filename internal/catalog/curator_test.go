package catalog

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
)

func TestHashPasswordRejectsShortPasswords(t *testing.T) {
	t.Parallel()

	if _, err := HashPassword("short"); err == nil {
		t.Fatalf("expected error for short password")
	}

	hash, err := HashPassword("long enough")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	curator := &Curator{PasswordHash: hash}
	if !curator.CheckPassword("long enough") {
		t.Fatalf("expected password to match its hash")
	}
	if curator.CheckPassword("long enougH") {
		t.Fatalf("expected different password to be rejected")
	}
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, conn := setupService(t, false)

	if _, err := svc.CreateCurator(ctx, " archivist ", "correct horse"); err != nil {
		t.Fatalf("CreateCurator returned error: %v", err)
	}
	if _, err := svc.CreateCurator(ctx, "archivist", "another password"); err == nil {
		t.Fatalf("expected duplicate username to fail")
	}

	curator, err := svc.Authenticate(ctx, "archivist", "correct horse")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if curator.Username != "archivist" {
		t.Fatalf("expected trimmed username, got %q", curator.Username)
	}

	if _, err := svc.Authenticate(ctx, "archivist", "wrong horse"); !eris.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody", "correct horse"); !eris.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}

	if err := conn.Model(&Curator{}).Where("username = ?", "archivist").Update("active", false).Error; err != nil {
		t.Fatalf("deactivating curator: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "archivist", "correct horse"); !eris.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for inactive curator, got %v", err)
	}
}
