package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"dndtools/app/internal/catalog"
	"dndtools/app/internal/db"
)

var fixedNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

type testOptions struct {
	strict bool
	burst  int
}

func TestHomeRouteRendersNews(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, testOptions{})
	rec := serve(srv, "GET", "/", "")

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != htmlContentType {
		t.Fatalf("expected content type %q, got %q", htmlContentType, ct)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "Complete Arcane spells added") {
		t.Fatalf("expected published news in body, got %q", body)
	}
	if strings.Contains(body, "Draft announcement") || strings.Contains(body, "Scheduled announcement") {
		t.Fatalf("expected unpublished news to be hidden, got %q", body)
	}
}

func TestHomeRouteReturns500WhenNewsFails(t *testing.T) {
	t.Parallel()

	srv := newStubServer(t, &stubCatalog{newsErr: eris.New("database is locked")})
	rec := serve(srv, "GET", "/", "")

	if rec.Code != 500 {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != htmlContentType {
		t.Fatalf("expected content type %q, got %q", htmlContentType, ct)
	}
	if strings.Contains(rec.Body.String(), "database is locked") {
		t.Fatalf("expected internal error details to stay private")
	}
}

func TestStaticPageRoute(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, testOptions{})

	rec := serve(srv, "GET", "/pages/about", "")
	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<h1>About</h1>") {
		t.Fatalf("expected page body, got %q", rec.Body.String())
	}

	rec = serve(srv, "GET", "/pages/imprint", "")
	if rec.Code != 404 {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "404 Not Found") {
		t.Fatalf("expected error page, got %q", rec.Body.String())
	}
}

func TestListRouteAppliesFilters(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, testOptions{})
	rec := serve(srv, "GET", "/api/spells?name=fire&per_page=2", "")

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	listing := decodeListing(t, rec.Body)
	if listing.Pagination.Total != 4 {
		t.Fatalf("expected 4 matches for fire, got %d", listing.Pagination.Total)
	}
	if !listing.Pagination.HasMore {
		t.Fatalf("expected a second page")
	}
	if got := listing.slugs(); strings.Join(got, ",") != "fire-shield,fireball" {
		t.Fatalf("unexpected first page %v", got)
	}
}

func TestListRouteReportsIgnoredValues(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, testOptions{})
	rec := serve(srv, "GET", "/api/items?price_gp_min=cheap", "")

	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	listing := decodeListing(t, rec.Body)
	if len(listing.Ignored) != 1 || listing.Ignored[0].Param != "price_gp_min" {
		t.Fatalf("expected price_gp_min to be ignored, got %+v", listing.Ignored)
	}
	if listing.Pagination.Total != 7 {
		t.Fatalf("expected all items, got %d", listing.Pagination.Total)
	}
}

func TestListRouteRejectsInvalidValuesWhenStrict(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, testOptions{strict: true})
	rec := serve(srv, "GET", "/api/items?price_gp_min=cheap", "")

	if rec.Code != 400 {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/problem+json") {
		t.Fatalf("expected problem response, got %q", ct)
	}

	var problem struct {
		Errors []struct {
			Location string `json:"location"`
			Value    any    `json:"value"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&problem); err != nil {
		t.Fatalf("decoding problem: %v", err)
	}
	if len(problem.Errors) != 1 || problem.Errors[0].Location != "query.price_gp_min" {
		t.Fatalf("expected one detail for price_gp_min, got %+v", problem.Errors)
	}
}

func TestUnknownEntityReturns404(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, testOptions{})
	for _, path := range []string{"/api/wands", "/api/wands/filters", "/api/spells-admin", "/api/spells/wish"} {
		if rec := serve(srv, "GET", path, ""); rec.Code != 404 {
			t.Errorf("expected 404 for %s, got %d", path, rec.Code)
		}
	}
}

func TestFiltersRouteDescribesFields(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, testOptions{})
	rec := serve(srv, "GET", "/api/items/filters", "")
	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Entity string `json:"entity"`
		Fields []struct {
			Name   string   `json:"name"`
			Params []string `json:"params"`
		} `json:"fields"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding filters: %v", err)
	}

	params := map[string][]string{}
	for _, field := range body.Fields {
		params[field.Name] = field.Params
	}
	if got := strings.Join(params["price_gp"], ","); !strings.HasPrefix(got, "price_gp_min,price_gp_max") {
		t.Fatalf("expected range params for price_gp, got %q", got)
	}
}

func TestRecordRouteReturnsEntry(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, testOptions{})
	rec := serve(srv, "GET", "/api/spells/fireball", "")
	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var spell struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&spell); err != nil {
		t.Fatalf("decoding spell: %v", err)
	}
	if spell.Slug != "fireball" || spell.Name != "Fireball" {
		t.Fatalf("unexpected spell %+v", spell)
	}
}

func TestLongSlugsAreReachable(t *testing.T) {
	t.Parallel()

	conn := openCatalogDB(t)
	slug := strings.Repeat("s", 128)
	if err := conn.Create(&catalog.Deity{Named: catalog.Named{Name: "Long Name", Slug: slug}}).Error; err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if err := conn.Create(&catalog.StaticPage{Named: catalog.Named{Name: "Long Page", Slug: slug}, Body: "<p>long</p>"}).Error; err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	repo, err := catalog.NewRepository(conn, silentLogger())
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}
	svc, err := catalog.NewService(catalog.Options{Repository: repo, Logger: silentLogger()})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	srv := startServer(t, svc, conn, 0)

	if rec := serve(srv, "GET", "/api/deities/"+slug, ""); rec.Code != 200 {
		t.Fatalf("expected status 200 for the deity, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := serve(srv, "GET", "/pages/"+slug, ""); rec.Code != 200 {
		t.Fatalf("expected status 200 for the page, got %d", rec.Code)
	}
	if rec := serve(srv, "GET", "/api/deities/"+slug+"s", ""); rec.Code != 422 {
		t.Fatalf("expected status 422 above the slug limit, got %d", rec.Code)
	}
}

func TestFeatRoutes(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, testOptions{})

	rec := serve(srv, "GET", "/api/feats/categories", "")
	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var categories []struct {
		Slug      string `json:"slug"`
		FeatCount int64  `json:"feat_count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&categories); err != nil {
		t.Fatalf("decoding categories: %v", err)
	}
	if len(categories) == 0 {
		t.Fatalf("expected feat categories")
	}

	rec = serve(srv, "GET", "/api/feats/categories/metamagic", "")
	if listing := decodeListing(t, rec.Body); listing.Pagination.Total != 2 {
		t.Fatalf("expected 2 metamagic feats, got %d", listing.Pagination.Total)
	}

	rec = serve(srv, "GET", "/api/rulebooks/complete-arcane/feats?name=stealth", "")
	if got := decodeListing(t, rec.Body).slugs(); strings.Join(got, ",") != "improved-stealth" {
		t.Fatalf("expected improved-stealth, got %v", got)
	}

	if rec := serve(srv, "GET", "/api/rulebooks/monster-manual/feats", ""); rec.Code != 404 {
		t.Fatalf("expected status 404 for unknown rulebook, got %d", rec.Code)
	}
}

func TestNewsRouteHonoursLimit(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, testOptions{})
	rec := serve(srv, "GET", "/api/news?limit=1", "")
	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var news []catalog.NewsItem
	if err := json.NewDecoder(rec.Body).Decode(&news); err != nil {
		t.Fatalf("decoding news: %v", err)
	}
	if len(news) != 1 || news[0].Title != "Complete Arcane spells added" {
		t.Fatalf("expected latest entry only, got %+v", news)
	}
}

func TestVerifySpellRequiresCurator(t *testing.T) {
	t.Parallel()

	srv, svc := newTestServer(t, testOptions{})
	if _, err := svc.CreateCurator(context.Background(), "archivist", "s3cret-pass"); err != nil {
		t.Fatalf("CreateCurator returned error: %v", err)
	}

	rec := serve(srv, "POST", "/admin/spells/fireball/verify", "")
	if rec.Code != 401 {
		t.Fatalf("expected status 401 without credentials, got %d", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Fatalf("expected a basic auth challenge")
	}

	if rec := serveAs(srv, "POST", "/admin/spells/fireball/verify", "archivist", "wrong"); rec.Code != 401 {
		t.Fatalf("expected status 401 for a wrong password, got %d", rec.Code)
	}

	rec = serveAs(srv, "POST", "/admin/spells/fireball/verify", "archivist", "s3cret-pass")
	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var spell struct {
		Verified     bool       `json:"verified"`
		VerifiedTime *time.Time `json:"verified_time"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&spell); err != nil {
		t.Fatalf("decoding spell: %v", err)
	}
	if !spell.Verified || spell.VerifiedTime == nil || !spell.VerifiedTime.Equal(fixedNow) {
		t.Fatalf("expected spell verified at %s, got %+v", fixedNow, spell)
	}

	if rec := serveAs(srv, "POST", "/admin/spells/fireball/verify", "archivist", "s3cret-pass"); rec.Code != 409 {
		t.Fatalf("expected status 409 on second verification, got %d", rec.Code)
	}
	if rec := serveAs(srv, "POST", "/admin/spells/wish/verify", "archivist", "s3cret-pass"); rec.Code != 404 {
		t.Fatalf("expected status 404 for unknown spell, got %d", rec.Code)
	}

	rec = serveAs(srv, "GET", "/admin/spells?verified=true", "archivist", "s3cret-pass")
	if got := decodeListing(t, rec.Body).slugs(); strings.Join(got, ",") != "fireball" {
		t.Fatalf("expected only fireball verified, got %v", got)
	}

	if rec := serve(srv, "GET", "/admin/spells", ""); rec.Code != 401 {
		t.Fatalf("expected admin listing to require credentials, got %d", rec.Code)
	}
}

func TestRateLimitedRequests(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, testOptions{burst: 1})

	if rec := serve(srv, "GET", "/api/news", ""); rec.Code != 200 {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}

	rec := serve(srv, "GET", "/api/news", "")
	if rec.Code != 429 {
		t.Fatalf("expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After header")
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/problem+json") {
		t.Fatalf("expected problem response for the API, got %q", ct)
	}

	rec = serve(srv, "GET", "/", "")
	if rec.Code != 429 {
		t.Fatalf("expected status 429, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != htmlContentType {
		t.Fatalf("expected HTML for pages, got %q", ct)
	}
}

func TestRequestIDHeader(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, testOptions{})

	rec := serve(srv, "GET", "/healthz", "")
	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected generated request id")
	}

	const incoming = "0b3c3f5e-8d0a-4c55-9d43-3c2f1f0a9e11"
	rec = serve(srv, "GET", "/healthz", incoming)
	if got := rec.Header().Get("X-Request-ID"); got != incoming {
		t.Fatalf("expected request id %q to be kept, got %q", incoming, got)
	}

	rec = serve(srv, "GET", "/healthz", "not-a-uuid")
	if got := rec.Header().Get("X-Request-ID"); got == "not-a-uuid" {
		t.Fatalf("expected malformed request id to be replaced")
	}
}

func TestHealthRouteReportsDatabaseState(t *testing.T) {
	t.Parallel()

	conn := openCatalogDB(t)
	srv := startServer(t, &stubCatalog{}, conn, 0)

	rec := serve(srv, "GET", "/healthz", "")
	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("expected ok status, got %q", rec.Body.String())
	}

	if err := db.Close(conn); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	rec = serve(srv, "GET", "/healthz", "")
	if rec.Code != 503 {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"degraded"`) || !strings.Contains(rec.Body.String(), `"database":"error"`) {
		t.Fatalf("expected degraded status, got %q", rec.Body.String())
	}
}

func TestStylesheetIsServed(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, testOptions{})
	rec := serve(srv, "GET", "/static/style.css", "")
	if rec.Code != 200 {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "--parchment") {
		t.Fatalf("expected stylesheet body")
	}
}

func TestNewServerRequiresDependencies(t *testing.T) {
	t.Parallel()

	if _, err := NewServer(Options{}); err == nil {
		t.Fatalf("expected error without a catalog service")
	}
	if _, err := NewServer(Options{Catalog: &stubCatalog{}}); err == nil {
		t.Fatalf("expected error without a database")
	}
}

// helper utilities

type listingBody struct {
	Items []struct {
		Slug string `json:"slug"`
	} `json:"items"`
	Pagination struct {
		Total   int64 `json:"total"`
		HasMore bool  `json:"has_more"`
	} `json:"pagination"`
	Ignored []struct {
		Param string `json:"param"`
	} `json:"ignored"`
}

func (l listingBody) slugs() []string {
	out := make([]string, 0, len(l.Items))
	for _, item := range l.Items {
		out = append(out, item.Slug)
	}
	return out
}

func decodeListing(t *testing.T, body io.Reader) listingBody {
	t.Helper()
	var listing listingBody
	if err := json.NewDecoder(body).Decode(&listing); err != nil {
		t.Fatalf("decoding listing: %v", err)
	}
	return listing
}

func serve(srv *Server, method, path, requestID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func serveAs(srv *Server, method, path, username, password string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.SetBasicAuth(username, password)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func silentLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func openCatalogDB(t *testing.T) *gorm.DB {
	t.Helper()

	ctx := context.Background()
	conn, err := db.Open(db.Options{Path: filepath.Join(t.TempDir(), "http.db")})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(conn) })

	if err := catalog.Migrate(ctx, conn, silentLogger()); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}

	file, err := os.Open(filepath.Join("..", "catalog", "testdata", "catalog.yaml"))
	if err != nil {
		t.Fatalf("opening fixtures: %v", err)
	}
	defer file.Close()

	fixtures, err := catalog.DecodeFixtures(file)
	if err != nil {
		t.Fatalf("DecodeFixtures returned error: %v", err)
	}
	if _, err := catalog.LoadFixtures(ctx, conn, fixtures, silentLogger()); err != nil {
		t.Fatalf("LoadFixtures returned error: %v", err)
	}
	return conn
}

func newTestServer(t *testing.T, opts testOptions) (*Server, catalog.Service) {
	t.Helper()

	conn := openCatalogDB(t)
	repo, err := catalog.NewRepository(conn, silentLogger())
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}

	svc, err := catalog.NewService(catalog.Options{
		Repository: repo,
		Logger:     silentLogger(),
		Strict:     opts.strict,
		Now:        func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	return startServer(t, svc, conn, opts.burst), svc
}

func newStubServer(t *testing.T, svc catalog.Service) *Server {
	t.Helper()
	return startServer(t, svc, openCatalogDB(t), 0)
}

func startServer(t *testing.T, svc catalog.Service, conn *gorm.DB, burst int) *Server {
	t.Helper()

	if burst == 0 {
		burst = 1000
	}

	srv, err := NewServer(Options{
		Catalog:  svc,
		Database: conn,
		Logger:   silentLogger(),
		RateLimiter: RateLimiterSettings{
			RequestsPerSecond: 0.001,
			Burst:             burst,
			ClientTTL:         time.Minute,
		},
	})
	if err != nil {
		t.Fatalf("NewServer returned error: %v", err)
	}
	t.Cleanup(srv.Close)
	return srv
}

// stubs

type stubCatalog struct {
	catalog.Service
	newsErr error
}

func (s *stubCatalog) LatestNews(_ context.Context, _ int) ([]catalog.NewsItem, error) {
	if s.newsErr != nil {
		return nil, s.newsErr
	}
	return nil, nil
}
