package catalog

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"dndtools/app/internal/filter"
)

// Repository defines the persistence operations behind the catalog service.
type Repository interface {
	Entities() []string
	FilterSet(entity string) (*filter.Set, bool)
	Parse(ctx context.Context, set *filter.Set, values url.Values) (*filter.Query, error)
	Describe(ctx context.Context, set *filter.Set) ([]filter.FieldDescription, error)
	Count(ctx context.Context, q *filter.Query) (int64, error)
	FindPage(ctx context.Context, q *filter.Query, page filter.Page) (any, error)
	GetBySlug(ctx context.Context, entity, slug string) (any, error)
	FeatCategories(ctx context.Context) ([]FeatCategorySummary, error)
	FeatCategoryBySlug(ctx context.Context, slug string) (*FeatCategory, error)
	RulebookBySlug(ctx context.Context, slug string) (*Rulebook, error)
	SpellBySlug(ctx context.Context, slug string) (*Spell, error)
	MarkSpellVerified(ctx context.Context, spellID, curatorID uint, at time.Time) (bool, error)
	CuratorByUsername(ctx context.Context, username string) (*Curator, error)
	CreateCurator(ctx context.Context, curator *Curator) error
	LatestNews(ctx context.Context, now time.Time, limit int) ([]NewsEntry, error)
	StaticPageBySlug(ctx context.Context, slug string) (*StaticPage, error)
}

// GormRepository reads and writes the catalog through a Gorm connection.
type GormRepository struct {
	db       *gorm.DB
	logger   *logrus.Logger
	entities map[string]entity
	public   []string
}

var _ Repository = (*GormRepository)(nil)

// FeatCategorySummary is a feat category with the number of feats in it.
type FeatCategorySummary struct {
	FeatCategory
	FeatCount int64 `json:"feat_count"`
}

// NewRepository constructs a Gorm-backed repository implementation.
func NewRepository(db *gorm.DB, logger *logrus.Logger) (*GormRepository, error) {
	if db == nil {
		return nil, eris.New("gorm DB is required")
	}

	sets, err := FilterSets()
	if err != nil {
		return nil, err
	}
	adminSpells, err := AdminSpellSet()
	if err != nil {
		return nil, err
	}
	entities, err := buildEntities(sets, adminSpells)
	if err != nil {
		return nil, err
	}

	public := make([]string, 0, len(sets))
	for name := range sets {
		public = append(public, name)
	}
	sort.Strings(public)

	return &GormRepository{db: db, logger: logger, entities: entities, public: public}, nil
}

// Entities lists the publicly browsable entity names.
func (r *GormRepository) Entities() []string {
	return append([]string(nil), r.public...)
}

// FilterSet returns the filter set of an entity, including curator-only sets.
func (r *GormRepository) FilterSet(name string) (*filter.Set, bool) {
	e, ok := r.entities[name]
	if !ok {
		return nil, false
	}
	return e.set, true
}

func (r *GormRepository) Parse(ctx context.Context, set *filter.Set, values url.Values) (*filter.Query, error) {
	q, err := set.Parse(ctx, r.db, values)
	if err != nil {
		r.logError(logrus.Fields{"entity": set.Name}, err, "parsing filters")
		return nil, err
	}
	return q, nil
}

func (r *GormRepository) Describe(ctx context.Context, set *filter.Set) ([]filter.FieldDescription, error) {
	fields, err := set.Describe(ctx, r.db)
	if err != nil {
		r.logError(logrus.Fields{"entity": set.Name}, err, "describing filters")
		return nil, err
	}
	return fields, nil
}

func (r *GormRepository) Count(ctx context.Context, q *filter.Query) (int64, error) {
	total, err := q.Count(ctx, r.db)
	if err != nil {
		r.logError(logrus.Fields{"entity": q.Set().Name}, err, "counting matches")
		return 0, err
	}
	return total, nil
}

// FindPage loads one page of the query's matches with their relations.
func (r *GormRepository) FindPage(ctx context.Context, q *filter.Query, page filter.Page) (any, error) {
	e, ok := r.entities[q.Set().Name]
	if !ok {
		return nil, eris.Errorf("no loader for %s", q.Set().Name)
	}

	items, err := e.list(ctx, r.db, q, page)
	if err != nil {
		r.logError(logrus.Fields{"entity": q.Set().Name, "page": page.Number}, err, "listing page")
		return nil, err
	}
	return items, nil
}

// GetBySlug returns the record of an entity or nil when not found.
func (r *GormRepository) GetBySlug(ctx context.Context, name, slug string) (any, error) {
	e, ok := r.entities[name]
	if !ok {
		return nil, eris.Errorf("unknown entity %s", name)
	}

	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, eris.New("slug is required")
	}

	record, found, err := e.detail(ctx, r.db, trimmed)
	if err != nil {
		r.logError(logrus.Fields{"entity": name, "slug": trimmed}, err, "fetching record by slug")
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return record, nil
}

// FeatCategories returns every category with its feat count, by name.
func (r *GormRepository) FeatCategories(ctx context.Context) ([]FeatCategorySummary, error) {
	var summaries []FeatCategorySummary
	err := r.db.WithContext(ctx).
		Table(TableFeatCategories).
		Select(TableFeatCategories + ".*, (SELECT COUNT(*) FROM " + TableFeatCategoryLinks +
			" WHERE " + TableFeatCategoryLinks + ".category_id = " + TableFeatCategories + ".id) AS feat_count").
		Order("name").
		Order("id").
		Scan(&summaries).Error
	if err != nil {
		r.logError(nil, err, "listing feat categories")
		return nil, eris.Wrap(err, "listing feat categories")
	}
	return summaries, nil
}

func (r *GormRepository) FeatCategoryBySlug(ctx context.Context, slug string) (*FeatCategory, error) {
	var category FeatCategory
	if found, err := r.firstBySlug(ctx, &category, slug); err != nil || !found {
		return nil, err
	}
	return &category, nil
}

func (r *GormRepository) RulebookBySlug(ctx context.Context, slug string) (*Rulebook, error) {
	var rulebook Rulebook
	if found, err := r.firstBySlug(ctx, &rulebook, slug); err != nil || !found {
		return nil, err
	}
	return &rulebook, nil
}

func (r *GormRepository) SpellBySlug(ctx context.Context, slug string) (*Spell, error) {
	var spell Spell
	if found, err := r.firstBySlug(ctx, &spell, slug); err != nil || !found {
		return nil, err
	}
	return &spell, nil
}

func (r *GormRepository) firstBySlug(ctx context.Context, dest any, slug string) (bool, error) {
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return false, eris.New("slug is required")
	}

	err := r.db.WithContext(ctx).Where("slug = ?", trimmed).First(dest).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		r.logError(logrus.Fields{"slug": trimmed}, err, "fetching by slug")
		return false, eris.Wrapf(err, "fetching by slug: %s", trimmed)
	}
	return true, nil
}

// MarkSpellVerified records the verification of an unverified spell. It
// reports false when the spell was already verified, leaving it untouched.
func (r *GormRepository) MarkSpellVerified(ctx context.Context, spellID, curatorID uint, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Spell{}).
		Where("id = ? AND verified = ?", spellID, false).
		Updates(map[string]any{
			"verified":           true,
			"verified_author_id": curatorID,
			"verified_time":      at,
		})
	if result.Error != nil {
		r.logError(logrus.Fields{"spell_id": spellID, "curator_id": curatorID}, result.Error, "verifying spell")
		return false, eris.Wrapf(result.Error, "verifying spell %d", spellID)
	}
	return result.RowsAffected == 1, nil
}

// CuratorByUsername returns the curator or nil when not found.
func (r *GormRepository) CuratorByUsername(ctx context.Context, username string) (*Curator, error) {
	var curator Curator
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&curator).Error
	if err != nil {
		if eris.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logError(logrus.Fields{"username": username}, err, "fetching curator")
		return nil, eris.Wrapf(err, "fetching curator: %s", username)
	}
	return &curator, nil
}

func (r *GormRepository) CreateCurator(ctx context.Context, curator *Curator) error {
	if curator == nil {
		return eris.New("curator is nil")
	}
	if err := r.db.WithContext(ctx).Create(curator).Error; err != nil {
		r.logError(logrus.Fields{"username": curator.Username}, err, "creating curator")
		return eris.Wrapf(err, "creating curator: %s", curator.Username)
	}
	return nil
}

// LatestNews returns enabled entries published at or before now, newest first.
func (r *GormRepository) LatestNews(ctx context.Context, now time.Time, limit int) ([]NewsEntry, error) {
	var entries []NewsEntry
	err := r.db.WithContext(ctx).
		Where("enabled = ? AND published <= ?", true, now.UTC()).
		Order("published DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		r.logError(nil, err, "listing news")
		return nil, eris.Wrap(err, "listing news")
	}
	return entries, nil
}

func (r *GormRepository) StaticPageBySlug(ctx context.Context, slug string) (*StaticPage, error) {
	var page StaticPage
	if found, err := r.firstBySlug(ctx, &page, slug); err != nil || !found {
		return nil, err
	}
	return &page, nil
}

func (r *GormRepository) logError(fields logrus.Fields, err error, message string) {
	if r.logger == nil {
		return
	}

	entry := r.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}
