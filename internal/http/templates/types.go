package templates

import "time"

// SiteName is shown in page titles and the shared header.
const SiteName = "dndtools"

// DefaultFooterNote is shown in the shared layout.
const DefaultFooterNote = "Reference data for the 3.5 edition of the world's most popular roleplaying game."

// NewsView is a single entry on the front page.
type NewsView struct {
	Title     string
	Published time.Time
	HTML      string
}

// HomePageData contains the news feed rendered on the landing page.
type HomePageData struct {
	News []NewsView
}

// StaticPageData is a curated free-standing page.
type StaticPageData struct {
	Title string
	HTML  string
}

// ErrorPageData holds information for rendering an error view.
type ErrorPageData struct {
	StatusLabel string
	Message     string
}
