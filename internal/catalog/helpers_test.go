package catalog

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"dndtools/app/internal/db"
)

// fixedNow lies between the published and the scheduled fixture news.
var fixedNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func silentLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func openTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	conn, err := db.Open(db.Options{Path: filepath.Join(t.TempDir(), name)})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(conn); err != nil {
			t.Errorf("Close returned error: %v", err)
		}
	})

	if err := Migrate(context.Background(), conn, silentLogger()); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}
	return conn
}

func loadTestFixtures(t *testing.T, conn *gorm.DB) map[string]int {
	t.Helper()

	file, err := os.Open(filepath.Join("testdata", "catalog.yaml"))
	if err != nil {
		t.Fatalf("opening fixtures: %v", err)
	}
	defer file.Close()

	fixtures, err := DecodeFixtures(file)
	if err != nil {
		t.Fatalf("DecodeFixtures returned error: %v", err)
	}

	counts, err := LoadFixtures(context.Background(), conn, fixtures, silentLogger())
	if err != nil {
		t.Fatalf("LoadFixtures returned error: %v", err)
	}
	return counts
}

func setupService(t *testing.T, strict bool) (Service, *gorm.DB) {
	t.Helper()

	conn := openTestDB(t, "catalog.db")
	loadTestFixtures(t, conn)

	repo, err := NewRepository(conn, silentLogger())
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}

	svc, err := NewService(Options{
		Repository: repo,
		Logger:     silentLogger(),
		Strict:     strict,
		Now:        func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc, conn
}

func itemsOf[T any](t *testing.T, listing *Listing) []T {
	t.Helper()

	items, ok := listing.Items.([]T)
	if !ok {
		t.Fatalf("unexpected items type %T", listing.Items)
	}
	return items
}

func slugsOf[T interface{ slug() string }](items []T) []string {
	slugs := make([]string, 0, len(items))
	for _, item := range items {
		slugs = append(slugs, item.slug())
	}
	return slugs
}

func (s Spell) slug() string                 { return s.Slug }
func (f Feat) slug() string                  { return f.Slug }
func (i Item) slug() string                  { return i.Slug }
func (v CharacterClassVariant) slug() string { return v.CharacterClass.Slug }
