package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Layout wraps body in the shared document chrome.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		full := SiteName
		if title != "" {
			full = title + " • " + SiteName
		}

		err := write(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>`, templ.EscapeString(full), `</title>`,
			`<link rel="stylesheet" href="/static/style.css"></head><body>`,
			`<header><a href="/">`, SiteName, `</a></header><main>`,
		)
		if err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		return write(w, `</main><footer>`, templ.EscapeString(DefaultFooterNote), `</footer></body></html>`)
	})
}

// HomePage lists the latest news entries.
func HomePage(data HomePageData) templ.Component {
	return Layout("", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := write(w, `<h1>News</h1>`); err != nil {
			return err
		}
		if len(data.News) == 0 {
			return write(w, `<p class="empty">No news yet.</p>`)
		}
		for _, item := range data.News {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			err := write(w,
				`<article class="news-item"><h2>`, templ.EscapeString(item.Title), `</h2>`,
				`<time datetime="`, item.Published.Format("2006-01-02"), `">`,
				item.Published.Format("2 January 2006"), `</time>`,
			)
			if err != nil {
				return err
			}
			if err := RawHTML(item.HTML).Render(ctx, w); err != nil {
				return err
			}
			if err := write(w, `</article>`); err != nil {
				return err
			}
		}
		return nil
	}))
}

// StaticPage renders a stored page body as-is.
func StaticPage(data StaticPageData) templ.Component {
	return Layout(data.Title, RawHTML(data.HTML))
}

// ErrorPage renders a status line and a human readable message.
func ErrorPage(data ErrorPageData) templ.Component {
	return Layout(data.StatusLabel, templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return write(w,
			`<section class="error"><h1>`, templ.EscapeString(data.StatusLabel), `</h1>`,
			`<p>`, templ.EscapeString(data.Message), `</p></section>`,
		)
	}))
}

func write(w io.Writer, parts ...string) error {
	for _, part := range parts {
		if _, err := io.WriteString(w, part); err != nil {
			return err
		}
	}
	return nil
}
