package catalog

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"dndtools/app/internal/filter"
)

// Service defines the browsing and curation operations of the catalog.
type Service interface {
	Entities() []string
	List(ctx context.Context, entity string, values url.Values) (*Listing, error)
	ListAdminSpells(ctx context.Context, values url.Values) (*Listing, error)
	Describe(ctx context.Context, entity string) ([]filter.FieldDescription, error)
	Get(ctx context.Context, entity, slug string) (any, error)
	FeatCategories(ctx context.Context) ([]FeatCategorySummary, error)
	FeatsInCategory(ctx context.Context, slug string, values url.Values) (*Listing, error)
	FeatsInRulebook(ctx context.Context, slug string, values url.Values) (*Listing, error)
	VerifySpell(ctx context.Context, slug string, curator *Curator) (*Spell, error)
	Authenticate(ctx context.Context, username, password string) (*Curator, error)
	CreateCurator(ctx context.Context, username, password string) (*Curator, error)
	LatestNews(ctx context.Context, limit int) ([]NewsItem, error)
	StaticPage(ctx context.Context, slug string) (*StaticPage, error)
}

var (
	// ErrNotFound indicates that no record has the requested slug.
	ErrNotFound = eris.New("not found")
	// ErrUnknownEntity indicates an entity name without a filter set.
	ErrUnknownEntity = eris.New("unknown entity")
	// ErrAlreadyVerified indicates a second verification of the same spell.
	ErrAlreadyVerified = eris.New("spell is already verified")
)

// Listing is one page of filtered results.
type Listing struct {
	Entity     string            `json:"entity"`
	Items      any               `json:"items"`
	Pagination filter.Pagination `json:"pagination"`
	Ignored    []filter.Problem  `json:"ignored,omitempty"`
}

// Options configures the catalog service.
type Options struct {
	Repository Repository
	Logger     *logrus.Logger
	SentryHub  *sentry.Hub
	Tracer     trace.Tracer
	Pages      filter.PageConfig
	// Strict rejects requests with invalid filter values instead of ignoring them.
	Strict bool
	Now    func() time.Time
}

type service struct {
	repo      Repository
	logger    *logrus.Logger
	sentryHub *sentry.Hub
	tracer    trace.Tracer
	pages     filter.PageConfig
	strict    bool
	now       func() time.Time
}

var _ Service = (*service)(nil)

const (
	defaultPageSize    = 20
	maxPageSize        = 100
	defaultNewsLimit   = 5
	maxNewsLimit       = 50
	instrumentationKey = "dndtools/app/internal/catalog"
)

// NewService wires the catalog service with its dependencies.
func NewService(opts Options) (Service, error) {
	if opts.Repository == nil {
		return nil, eris.New("catalog repository is required")
	}

	pages := opts.Pages
	if pages.Default <= 0 {
		pages.Default = defaultPageSize
	}
	if pages.Max <= 0 {
		pages.Max = maxPageSize
	}
	if pages.Default > pages.Max {
		pages.Default = pages.Max
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(instrumentationKey)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &service{
		repo:      opts.Repository,
		logger:    opts.Logger,
		sentryHub: opts.SentryHub,
		tracer:    tracer,
		pages:     pages,
		strict:    opts.Strict,
		now:       now,
	}, nil
}

func (s *service) Entities() []string {
	return s.repo.Entities()
}

func (s *service) List(ctx context.Context, entity string, values url.Values) (*Listing, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.List", trace.WithAttributes(attribute.String("entity", entity)))
	defer span.End()

	set, ok := s.publicSet(entity)
	if !ok {
		return nil, eris.Wrapf(ErrUnknownEntity, "listing %s", entity)
	}
	return s.list(ctx, span, set, values)
}

func (s *service) ListAdminSpells(ctx context.Context, values url.Values) (*Listing, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.ListAdminSpells")
	defer span.End()

	set, ok := s.repo.FilterSet(EntitySpellsAdmin)
	if !ok {
		return nil, eris.Wrapf(ErrUnknownEntity, "listing %s", EntitySpellsAdmin)
	}
	return s.list(ctx, span, set, values)
}

func (s *service) list(ctx context.Context, span trace.Span, set *filter.Set, values url.Values) (*Listing, error) {
	fields := logrus.Fields{"entity": set.Name}

	q, err := s.repo.Parse(ctx, set, values)
	if err != nil {
		s.recordError(ctx, fields, err, "parsing filters")
		return nil, eris.Wrapf(err, "parsing %s filters", set.Name)
	}

	if problems := q.Problems(); len(problems) > 0 {
		span.SetAttributes(attribute.Int("filter.problems", len(problems)))
		if s.strict {
			return nil, q.Err()
		}
		if s.logger != nil {
			s.logger.WithFields(fields).WithField("problems", len(problems)).Debug("ignoring invalid filter values")
		}
	}

	total, err := s.repo.Count(ctx, q)
	if err != nil {
		s.recordError(ctx, fields, err, "counting matches")
		return nil, eris.Wrapf(err, "counting %s", set.Name)
	}

	page := filter.PageFromValues(values, s.pages)
	items, err := s.repo.FindPage(ctx, q, page)
	if err != nil {
		s.recordError(ctx, fields, err, "loading page")
		return nil, eris.Wrapf(err, "loading %s page %d", set.Name, page.Number)
	}

	span.SetAttributes(
		attribute.Int("filter.predicates", len(q.Predicates())),
		attribute.Int64("result.total", total),
		attribute.Int("page.number", page.Number),
	)

	return &Listing{
		Entity:     set.Name,
		Items:      items,
		Pagination: filter.Paginate(page, total),
		Ignored:    q.Problems(),
	}, nil
}

func (s *service) Describe(ctx context.Context, entity string) ([]filter.FieldDescription, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Describe", trace.WithAttributes(attribute.String("entity", entity)))
	defer span.End()

	set, ok := s.publicSet(entity)
	if !ok {
		return nil, eris.Wrapf(ErrUnknownEntity, "describing %s", entity)
	}

	fields, err := s.repo.Describe(ctx, set)
	if err != nil {
		s.recordError(ctx, logrus.Fields{"entity": entity}, err, "describing filters")
		return nil, eris.Wrapf(err, "describing %s filters", entity)
	}
	return fields, nil
}

func (s *service) Get(ctx context.Context, entity, slug string) (any, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Get", trace.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("slug", slug),
	))
	defer span.End()

	if _, ok := s.publicSet(entity); !ok {
		return nil, eris.Wrapf(ErrUnknownEntity, "fetching %s", entity)
	}

	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, eris.Wrapf(ErrNotFound, "%s with empty slug", entity)
	}

	record, err := s.repo.GetBySlug(ctx, entity, trimmed)
	if err != nil {
		s.recordError(ctx, logrus.Fields{"entity": entity, "slug": trimmed}, err, "fetching record")
		return nil, eris.Wrapf(err, "fetching %s %s", entity, trimmed)
	}
	if record == nil {
		return nil, eris.Wrapf(ErrNotFound, "%s %s", entity, trimmed)
	}
	return record, nil
}

func (s *service) FeatCategories(ctx context.Context) ([]FeatCategorySummary, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.FeatCategories")
	defer span.End()

	categories, err := s.repo.FeatCategories(ctx)
	if err != nil {
		s.recordError(ctx, nil, err, "listing feat categories")
		return nil, eris.Wrap(err, "listing feat categories")
	}
	return categories, nil
}

func (s *service) FeatsInCategory(ctx context.Context, slug string, values url.Values) (*Listing, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.FeatsInCategory", trace.WithAttributes(attribute.String("slug", slug)))
	defer span.End()

	category, err := s.repo.FeatCategoryBySlug(ctx, slug)
	if err != nil {
		s.recordError(ctx, logrus.Fields{"slug": slug}, err, "fetching feat category")
		return nil, eris.Wrapf(err, "fetching feat category %s", slug)
	}
	if category == nil {
		return nil, eris.Wrapf(ErrNotFound, "feat category %s", slug)
	}

	return s.featsWhere(ctx, span, "feat_categories__slug", category.Slug, values)
}

func (s *service) FeatsInRulebook(ctx context.Context, slug string, values url.Values) (*Listing, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.FeatsInRulebook", trace.WithAttributes(attribute.String("slug", slug)))
	defer span.End()

	rulebook, err := s.repo.RulebookBySlug(ctx, slug)
	if err != nil {
		s.recordError(ctx, logrus.Fields{"slug": slug}, err, "fetching rulebook")
		return nil, eris.Wrapf(err, "fetching rulebook %s", slug)
	}
	if rulebook == nil {
		return nil, eris.Wrapf(ErrNotFound, "rulebook %s", slug)
	}

	return s.featsWhere(ctx, span, "rulebook__slug", rulebook.Slug, values)
}

// featsWhere lists feats with param pinned to value on top of the caller's filters.
func (s *service) featsWhere(ctx context.Context, span trace.Span, param, value string, values url.Values) (*Listing, error) {
	set, ok := s.repo.FilterSet(EntityFeats)
	if !ok {
		return nil, eris.Wrapf(ErrUnknownEntity, "listing %s", EntityFeats)
	}

	pinned := url.Values{}
	for key, vals := range values {
		pinned[key] = append([]string(nil), vals...)
	}
	pinned.Set(param, value)

	return s.list(ctx, span, set, pinned)
}

func (s *service) VerifySpell(ctx context.Context, slug string, curator *Curator) (*Spell, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.VerifySpell", trace.WithAttributes(attribute.String("slug", slug)))
	defer span.End()

	if curator == nil || curator.ID == 0 {
		return nil, eris.New("curator is required")
	}
	fields := logrus.Fields{"slug": slug, "curator": curator.Username}

	spell, err := s.repo.SpellBySlug(ctx, slug)
	if err != nil {
		s.recordError(ctx, fields, err, "fetching spell")
		return nil, eris.Wrapf(err, "fetching spell %s", slug)
	}
	if spell == nil {
		return nil, eris.Wrapf(ErrNotFound, "spell %s", slug)
	}

	at := s.now().UTC()
	updated, err := s.repo.MarkSpellVerified(ctx, spell.ID, curator.ID, at)
	if err != nil {
		s.recordError(ctx, fields, err, "verifying spell")
		return nil, eris.Wrapf(err, "verifying spell %s", slug)
	}
	if !updated {
		return nil, eris.Wrapf(ErrAlreadyVerified, "spell %s", slug)
	}

	if s.logger != nil {
		s.logger.WithFields(fields).Info("spell verified")
	}

	spell.Verified = true
	spell.VerifiedAuthorID = &curator.ID
	spell.VerifiedAuthor = curator
	spell.VerifiedTime = &at
	return spell, nil
}

func (s *service) LatestNews(ctx context.Context, limit int) ([]NewsItem, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.LatestNews")
	defer span.End()

	if limit <= 0 {
		limit = defaultNewsLimit
	}
	if limit > maxNewsLimit {
		limit = maxNewsLimit
	}

	entries, err := s.repo.LatestNews(ctx, s.now().UTC(), limit)
	if err != nil {
		s.recordError(ctx, nil, err, "listing news")
		return nil, eris.Wrap(err, "listing news")
	}

	items := make([]NewsItem, 0, len(entries))
	for _, entry := range entries {
		item, err := newsItem(entry)
		if err != nil {
			s.recordError(ctx, logrus.Fields{"news_id": entry.ID}, err, "preparing news entry")
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *service) StaticPage(ctx context.Context, slug string) (*StaticPage, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.StaticPage", trace.WithAttributes(attribute.String("slug", slug)))
	defer span.End()

	trimmed := strings.TrimSpace(slug)
	if trimmed == "" {
		return nil, eris.Wrap(ErrNotFound, "static page with empty slug")
	}

	page, err := s.repo.StaticPageBySlug(ctx, trimmed)
	if err != nil {
		s.recordError(ctx, logrus.Fields{"slug": trimmed}, err, "fetching static page")
		return nil, eris.Wrapf(err, "fetching static page %s", trimmed)
	}
	if page == nil {
		return nil, eris.Wrapf(ErrNotFound, "static page %s", trimmed)
	}
	return page, nil
}

func (s *service) publicSet(entity string) (*filter.Set, bool) {
	for _, name := range s.repo.Entities() {
		if name == entity {
			return s.repo.FilterSet(entity)
		}
	}
	return nil, false
}

func (s *service) recordError(ctx context.Context, fields logrus.Fields, err error, message string) {
	if err == nil {
		return
	}

	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, message)

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if len(fields) > 0 {
			entry = entry.WithFields(fields)
		}
		entry.Error(message)
	}

	if s.sentryHub != nil {
		s.sentryHub.CaptureException(err)
	}
}
