package http

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"dndtools/app/internal/catalog"
	"dndtools/app/internal/db"
	"dndtools/app/internal/filter"
	"dndtools/app/internal/http/templates"
)

const (
	htmlContentType      = "text/html; charset=utf-8"
	errorFallbackMessage = "We couldn't process your request right now."
)

type htmlResponse struct {
	Status      int
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type pageInput struct {
	Slug string `path:"slug" maxLength:"128"`
}

type healthResponse struct {
	Status int
	Body   struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
}

func (s *Server) registerHomeRoute() {
	huma.Get(s.api, "/", s.homeHandler, htmlOperation("Latest news", stdhttp.StatusInternalServerError))
}

func (s *Server) registerStaticPageRoute() {
	huma.Get(s.api, "/pages/{slug}", s.staticPageHandler, htmlOperation(
		"Static page",
		stdhttp.StatusNotFound,
		stdhttp.StatusInternalServerError,
	))
}

func (s *Server) registerHealthRoute() {
	huma.Get(s.api, "/healthz", s.healthHandler, func(op *huma.Operation) {
		op.Summary = "Health check"
	})
}

func (s *Server) homeHandler(ctx context.Context, _ *struct{}) (*htmlResponse, error) {
	news, err := s.catalog.LatestNews(ctx, s.newsLimit)
	if err != nil {
		s.recordError(ctx, err, "loading news", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, "We couldn't load the latest news right now.")
	}

	data := templates.HomePageData{News: make([]templates.NewsView, 0, len(news))}
	for _, item := range news {
		data.News = append(data.News, templates.NewsView{
			Title:     item.Title,
			Published: item.Published,
			HTML:      item.Body,
		})
	}

	body, err := renderComponent(ctx, templates.HomePage(data))
	if err != nil {
		s.recordError(ctx, err, "rendering home page", nil)
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, "We couldn't render the homepage.")
	}

	return newHTMLResponse(stdhttp.StatusOK, body), nil
}

func (s *Server) staticPageHandler(ctx context.Context, input *pageInput) (*htmlResponse, error) {
	slug := strings.TrimSpace(input.Slug)
	page, err := s.catalog.StaticPage(ctx, slug)
	if err != nil {
		status, message := classifyError(err)
		if status >= stdhttp.StatusInternalServerError {
			s.recordError(ctx, err, "loading static page", logrus.Fields{"slug": slug})
		}
		return s.renderErrorResponse(ctx, status, message)
	}

	body, err := renderComponent(ctx, templates.StaticPage(templates.StaticPageData{
		Title: page.Name,
		HTML:  page.Body,
	}))
	if err != nil {
		s.recordError(ctx, err, "rendering static page", logrus.Fields{"slug": slug})
		return s.renderErrorResponse(ctx, stdhttp.StatusInternalServerError, errorFallbackMessage)
	}

	return newHTMLResponse(stdhttp.StatusOK, body), nil
}

func (s *Server) healthHandler(ctx context.Context, _ *struct{}) (*healthResponse, error) {
	resp := &healthResponse{Status: stdhttp.StatusOK}
	resp.Body.Status = "ok"
	resp.Body.Database = "ok"

	if err := db.Ping(ctx, s.db); err != nil {
		s.recordError(ctx, err, "pinging database", nil)
		resp.Status = stdhttp.StatusServiceUnavailable
		resp.Body.Status = "degraded"
		resp.Body.Database = "error"
	}

	return resp, nil
}

func newHTMLResponse(status int, body []byte) *htmlResponse {
	return &htmlResponse{
		Status:      status,
		ContentType: htmlContentType,
		Body:        body,
	}
}

func htmlOperation(summary string, statuses ...int) func(op *huma.Operation) {
	return func(op *huma.Operation) {
		if summary != "" {
			op.Summary = summary
		}
		op.Tags = []string{"pages"}
		if op.Responses == nil {
			op.Responses = map[string]*huma.Response{}
		}

		statusCodes := append([]int{stdhttp.StatusOK}, statuses...)
		for _, status := range statusCodes {
			op.Responses[strconv.Itoa(status)] = &huma.Response{
				Description: stdhttp.StatusText(status),
				Content: map[string]*huma.MediaType{
					htmlContentType: {
						Schema: &huma.Schema{Type: "string"},
					},
				},
			}
		}
	}
}

// classifyError maps catalog errors to a status and a message safe to show.
func classifyError(err error) (int, string) {
	var invalid *filter.ValidationError
	switch {
	case err == nil:
		return stdhttp.StatusInternalServerError, errorFallbackMessage
	case errors.As(err, &invalid):
		return stdhttp.StatusBadRequest, "Some filter values are invalid."
	case eris.Is(err, catalog.ErrUnknownEntity):
		return stdhttp.StatusNotFound, "There is no such kind of entry."
	case eris.Is(err, catalog.ErrNotFound):
		return stdhttp.StatusNotFound, "We couldn't find that entry."
	case eris.Is(err, catalog.ErrAlreadyVerified):
		return stdhttp.StatusConflict, "This spell has already been verified."
	case eris.Is(err, catalog.ErrInvalidCredentials):
		return stdhttp.StatusUnauthorized, "Invalid curator credentials."
	default:
		return stdhttp.StatusInternalServerError, errorFallbackMessage
	}
}

func (s *Server) renderErrorResponse(ctx context.Context, status int, message string) (*htmlResponse, error) {
	label := fmt.Sprintf("%d %s", status, stdhttp.StatusText(status))
	body, err := renderComponent(ctx, templates.ErrorPage(templates.ErrorPageData{
		StatusLabel: label,
		Message:     message,
	}))
	if err != nil {
		s.recordError(ctx, err, "rendering error page", logrus.Fields{"status": status})
		fallback := []byte(fmt.Sprintf("<html><body><h1>%s</h1><p>%s</p></body></html>", label, message))
		return newHTMLResponse(status, fallback), nil
	}

	return newHTMLResponse(status, body), nil
}

func (s *Server) recordError(ctx context.Context, err error, message string, fields logrus.Fields) {
	if err == nil {
		return
	}

	if s.logger != nil {
		entry := s.logger.WithField("error", err.Error())
		if fields != nil {
			entry = entry.WithFields(fields)
		}
		if requestID := RequestIDFromContext(ctx); requestID != "" {
			entry = entry.WithField("request_id", requestID)
		}
		entry.Error(message)
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
		return
	}
	if s.sentry != nil {
		s.sentry.CaptureException(err)
	}
}
