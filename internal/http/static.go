package http

import (
	"embed"
	"io/fs"
	stdhttp "net/http"
)

//go:embed static
var staticFiles embed.FS

// staticHandler serves the embedded stylesheet and other assets under /static/.
func staticHandler() stdhttp.Handler {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return stdhttp.StripPrefix("/static/", stdhttp.FileServerFS(sub))
}
