package catalog

import (
	"testing"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Fireball":                "fireball",
		"Cloak of Resistance +1":  "cloak-of-resistance-1",
		"Player's Handbook v.3.5": "player-s-handbook-v-3-5",
		"  Élan  Mágico ":         "elan-magico",
		"Use-activated":           "use-activated",
		"+++":                     "",
	}

	for name, want := range cases {
		if got := Slugify(name); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestUniqueSlug(t *testing.T) {
	t.Parallel()

	if got := UniqueSlug("pelor", nil); got != "pelor" {
		t.Fatalf("expected free slug to be kept, got %q", got)
	}
	if got := UniqueSlug("pelor", []string{"pelor"}); got != "pelor-2" {
		t.Fatalf("expected pelor-2, got %q", got)
	}
	if got := UniqueSlug("pelor", []string{"pelor", "pelor-2", "pelor-4"}); got != "pelor-3" {
		t.Fatalf("expected lowest free suffix pelor-3, got %q", got)
	}
}

func TestNamedBeforeCreateDeduplicatesSlugs(t *testing.T) {
	t.Parallel()

	conn := openTestDB(t, "slugs.db")

	first := &Deity{Named: Named{Name: "Pelor"}}
	if err := conn.Create(first).Error; err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	second := &Deity{Named: Named{Name: " Pelor "}}
	if err := conn.Create(second).Error; err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	explicit := &Deity{Named: Named{Name: "Pelor", Slug: "sun-father"}}
	if err := conn.Create(explicit).Error; err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if first.Slug != "pelor" {
		t.Fatalf("expected first slug pelor, got %q", first.Slug)
	}
	if second.Slug != "pelor-2" {
		t.Fatalf("expected second slug pelor-2, got %q", second.Slug)
	}
	if second.Name != "Pelor" {
		t.Fatalf("expected trimmed name, got %q", second.Name)
	}
	if explicit.Slug != "sun-father" {
		t.Fatalf("expected explicit slug to be kept, got %q", explicit.Slug)
	}
}

func TestNamedBeforeCreateDeduplicatesWithinBatch(t *testing.T) {
	t.Parallel()

	conn := openTestDB(t, "batch-slugs.db")
	if err := conn.Create(&Deity{Named: Named{Name: "Pelor"}}).Error; err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	deities := []Deity{
		{Named: Named{Name: "Pelor"}},
		{Named: Named{Name: "Pelor"}},
		{Named: Named{Name: "Pelor", Slug: "pelor-4"}},
		{Named: Named{Name: "Pelor"}},
	}
	if err := conn.Create(&deities).Error; err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	got := make([]string, 0, len(deities))
	for _, deity := range deities {
		got = append(got, deity.Slug)
	}
	want := []string{"pelor-2", "pelor-3", "pelor-4", "pelor-5"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected slugs %v, got %v", want, got)
		}
	}
}

func TestNamedBeforeCreateRequiresName(t *testing.T) {
	t.Parallel()

	conn := openTestDB(t, "unnamed.db")

	if err := conn.Create(&Deity{Named: Named{Name: "   "}}).Error; err == nil {
		t.Fatalf("expected error for blank name")
	}
	if err := conn.Create(&Deity{Named: Named{Name: "???"}}).Error; err == nil {
		t.Fatalf("expected error for name without slug characters")
	}
}
