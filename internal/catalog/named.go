package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gorm.io/gorm"
)

// Model carries the identity and timestamps shared by every catalog table.
type Model struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Named is embedded by every catalog entry with a display name and URL slug.
type Named struct {
	Name string `gorm:"size:128;not null;index" json:"name"`
	Slug string `gorm:"size:128;not null;uniqueIndex" json:"slug"`
}

// batchSlugsKey holds the slugs assigned earlier in the same INSERT statement.
const batchSlugsKey = "catalog:batch-slugs"

// BeforeCreate derives the slug from the name when none was supplied,
// suffixing it until it is unique within the table and the current batch.
func (n *Named) BeforeCreate(tx *gorm.DB) error {
	n.Name = strings.TrimSpace(n.Name)
	if n.Name == "" {
		return eris.New("name is required")
	}

	// Every hook of one batch insert sees the same statement.
	key := fmt.Sprintf("%p", tx.Statement) + batchSlugsKey
	stored, _ := tx.Statement.Settings.LoadOrStore(key, map[string]struct{}{})
	batch := stored.(map[string]struct{})

	if strings.TrimSpace(n.Slug) != "" {
		n.Slug = strings.TrimSpace(n.Slug)
		batch[n.Slug] = struct{}{}
		return nil
	}

	base := Slugify(n.Name)
	if base == "" {
		return eris.Errorf("name %q does not produce a slug", n.Name)
	}

	table := tx.Statement.Table
	var taken []string
	err := tx.Session(&gorm.Session{NewDB: true}).
		Table(table).
		Where("slug = ? OR slug LIKE ?", base, base+"-%").
		Pluck("slug", &taken).Error
	if err != nil {
		return eris.Wrapf(err, "checking slug uniqueness in %s", table)
	}
	for slug := range batch {
		if slug == base || strings.HasPrefix(slug, base+"-") {
			taken = append(taken, slug)
		}
	}

	n.Slug = UniqueSlug(base, taken)
	batch[n.Slug] = struct{}{}
	return nil
}
