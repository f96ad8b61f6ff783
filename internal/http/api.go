package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"net/url"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"

	"dndtools/app/internal/catalog"
	"dndtools/app/internal/filter"
)

const curatorScheme = "curator"

// FilterQuery captures the whole query string. Filter parameters depend on
// the entity, so they cannot be declared as fixed input fields.
type FilterQuery struct {
	values url.Values
}

func (q *FilterQuery) Resolve(ctx huma.Context) []error {
	u := ctx.URL()
	q.values = u.Query()
	return nil
}

type entityInput struct {
	FilterQuery
	Entity string `path:"entity" doc:"Entity name, for example spells or feats"`
}

type recordInput struct {
	Entity string `path:"entity"`
	Slug   string `path:"slug" maxLength:"128"`
}

type slugListInput struct {
	FilterQuery
	Slug string `path:"slug" maxLength:"128"`
}

type newsInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"50" doc:"Number of entries, defaults to 5"`
}

type adminSpellsInput struct {
	FilterQuery
}

type verifyInput struct {
	Slug string `path:"slug" maxLength:"128"`
}

type listingOutput struct {
	Body *catalog.Listing
}

type filtersOutput struct {
	Body struct {
		Entity string                    `json:"entity"`
		Fields []filter.FieldDescription `json:"fields"`
	}
}

type recordOutput struct {
	Body any
}

type categoriesOutput struct {
	Body []catalog.FeatCategorySummary
}

type newsOutput struct {
	Body []catalog.NewsItem
}

type spellOutput struct {
	Body *catalog.Spell
}

func (s *Server) registerEntityRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-entries",
		Method:      stdhttp.MethodGet,
		Path:        "/api/{entity}",
		Summary:     "List entries with faceted filters",
		Description: "Accepts the parameters described by /api/{entity}/filters plus page, per_page, sort and filter.",
		Tags:        []string{"catalog"},
	}, s.listHandler)

	huma.Register(s.api, huma.Operation{
		OperationID: "describe-filters",
		Method:      stdhttp.MethodGet,
		Path:        "/api/{entity}/filters",
		Summary:     "Describe the filter fields of an entity",
		Tags:        []string{"catalog"},
	}, s.filtersHandler)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-entry",
		Method:      stdhttp.MethodGet,
		Path:        "/api/{entity}/{slug}",
		Summary:     "Fetch an entry by slug",
		Tags:        []string{"catalog"},
	}, s.recordHandler)
}

func (s *Server) registerFeatCategoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-feat-categories",
		Method:      stdhttp.MethodGet,
		Path:        "/api/feats/categories",
		Summary:     "List feat categories with feat counts",
		Tags:        []string{"feats"},
	}, s.featCategoriesHandler)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-feats-in-category",
		Method:      stdhttp.MethodGet,
		Path:        "/api/feats/categories/{slug}",
		Summary:     "List the feats of a category",
		Tags:        []string{"feats"},
	}, s.featsInCategoryHandler)
}

func (s *Server) registerRulebookFeatsRoute() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-feats-in-rulebook",
		Method:      stdhttp.MethodGet,
		Path:        "/api/rulebooks/{slug}/feats",
		Summary:     "List the feats of a rulebook",
		Tags:        []string{"feats"},
	}, s.featsInRulebookHandler)
}

func (s *Server) registerNewsRoute() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-news",
		Method:      stdhttp.MethodGet,
		Path:        "/api/news",
		Summary:     "Latest published news",
		Tags:        []string{"news"},
	}, s.newsHandler)
}

func (s *Server) registerAdminRoutes() {
	security := []map[string][]string{{curatorScheme: {}}}
	guard := huma.Middlewares{s.curatorMiddleware()}

	huma.Register(s.api, huma.Operation{
		OperationID: "admin-list-spells",
		Method:      stdhttp.MethodGet,
		Path:        "/admin/spells",
		Summary:     "List spells with verification filters",
		Tags:        []string{"admin"},
		Security:    security,
		Middlewares: guard,
	}, s.adminSpellsHandler)

	huma.Register(s.api, huma.Operation{
		OperationID:   "verify-spell",
		Method:        stdhttp.MethodPost,
		Path:          "/admin/spells/{slug}/verify",
		Summary:       "Mark a spell as verified by the calling curator",
		Tags:          []string{"admin"},
		Security:      security,
		Middlewares:   guard,
		DefaultStatus: stdhttp.StatusOK,
		Errors:        []int{stdhttp.StatusUnauthorized, stdhttp.StatusNotFound, stdhttp.StatusConflict},
	}, s.verifySpellHandler)
}

func (s *Server) listHandler(ctx context.Context, input *entityInput) (*listingOutput, error) {
	listing, err := s.catalog.List(ctx, input.Entity, input.values)
	if err != nil {
		return nil, s.apiError(ctx, err, "listing entries", logrus.Fields{"entity": input.Entity})
	}
	return &listingOutput{Body: listing}, nil
}

func (s *Server) filtersHandler(ctx context.Context, input *entityInput) (*filtersOutput, error) {
	fields, err := s.catalog.Describe(ctx, input.Entity)
	if err != nil {
		return nil, s.apiError(ctx, err, "describing filters", logrus.Fields{"entity": input.Entity})
	}

	out := &filtersOutput{}
	out.Body.Entity = input.Entity
	out.Body.Fields = fields
	return out, nil
}

func (s *Server) recordHandler(ctx context.Context, input *recordInput) (*recordOutput, error) {
	record, err := s.catalog.Get(ctx, input.Entity, input.Slug)
	if err != nil {
		return nil, s.apiError(ctx, err, "fetching entry", logrus.Fields{"entity": input.Entity, "slug": input.Slug})
	}
	return &recordOutput{Body: record}, nil
}

func (s *Server) featCategoriesHandler(ctx context.Context, _ *struct{}) (*categoriesOutput, error) {
	categories, err := s.catalog.FeatCategories(ctx)
	if err != nil {
		return nil, s.apiError(ctx, err, "listing feat categories", nil)
	}
	return &categoriesOutput{Body: categories}, nil
}

func (s *Server) featsInCategoryHandler(ctx context.Context, input *slugListInput) (*listingOutput, error) {
	listing, err := s.catalog.FeatsInCategory(ctx, input.Slug, input.values)
	if err != nil {
		return nil, s.apiError(ctx, err, "listing feats in category", logrus.Fields{"slug": input.Slug})
	}
	return &listingOutput{Body: listing}, nil
}

func (s *Server) featsInRulebookHandler(ctx context.Context, input *slugListInput) (*listingOutput, error) {
	listing, err := s.catalog.FeatsInRulebook(ctx, input.Slug, input.values)
	if err != nil {
		return nil, s.apiError(ctx, err, "listing feats in rulebook", logrus.Fields{"slug": input.Slug})
	}
	return &listingOutput{Body: listing}, nil
}

func (s *Server) newsHandler(ctx context.Context, input *newsInput) (*newsOutput, error) {
	news, err := s.catalog.LatestNews(ctx, input.Limit)
	if err != nil {
		return nil, s.apiError(ctx, err, "listing news", nil)
	}
	return &newsOutput{Body: news}, nil
}

func (s *Server) adminSpellsHandler(ctx context.Context, input *adminSpellsInput) (*listingOutput, error) {
	listing, err := s.catalog.ListAdminSpells(ctx, input.values)
	if err != nil {
		return nil, s.apiError(ctx, err, "listing spells for curators", nil)
	}
	return &listingOutput{Body: listing}, nil
}

func (s *Server) verifySpellHandler(ctx context.Context, input *verifyInput) (*spellOutput, error) {
	curator := CuratorFromContext(ctx)
	if curator == nil {
		return nil, huma.Error401Unauthorized("Curator credentials are required.")
	}

	slug := strings.TrimSpace(input.Slug)
	spell, err := s.catalog.VerifySpell(ctx, slug, curator)
	if err != nil {
		return nil, s.apiError(ctx, err, "verifying spell", logrus.Fields{"slug": slug, "curator": curator.Username})
	}
	return &spellOutput{Body: spell}, nil
}

// apiError converts a catalog error into a problem response. Only server
// faults are logged here; the catalog already records its own failures.
func (s *Server) apiError(ctx context.Context, err error, message string, fields logrus.Fields) error {
	status, public := classifyError(err)
	if status >= stdhttp.StatusInternalServerError {
		s.recordError(ctx, err, message, fields)
		return huma.NewError(status, public)
	}

	var invalid *filter.ValidationError
	if errors.As(err, &invalid) {
		details := make([]error, 0, len(invalid.Problems))
		for _, problem := range invalid.Problems {
			details = append(details, &huma.ErrorDetail{
				Message:  problem.Reason,
				Location: "query." + problem.Param,
				Value:    problem.Value,
			})
		}
		return huma.NewError(status, public, details...)
	}

	return huma.NewError(status, public)
}
