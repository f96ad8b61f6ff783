package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// RawHTML writes trusted markup, such as curated page bodies, without escaping.
func RawHTML(html string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return write(w, html)
	})
}
