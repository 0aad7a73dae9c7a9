package doctpl

import (
	"log/slog"

	"github.com/yahya12213/certgen/fetch"
	"github.com/yahya12213/certgen/variables"
)

// Option is a functional option for configuring a Composer via NewComposer.
type Option func(*composerConfig)

type composerConfig struct {
	fetcher  fetch.Fetcher
	fonts    fetch.FontProvider
	baseURL  string
	logger   *slog.Logger
	locale   variables.Locale
	progress func(done, total int)
}

// WithFetcher sets how images, backgrounds and font files are loaded.
// The default fetches http(s) URLs and data URIs and rejects local paths.
func WithFetcher(f fetch.Fetcher) Option {
	return func(c *composerConfig) {
		c.fetcher = f
	}
}

// WithFontProvider sets where custom fonts named "custom-font-<id>" are
// looked up. Without one, such families fall back to the default font.
func WithFontProvider(p fetch.FontProvider) Option {
	return func(c *composerConfig) {
		c.fonts = p
	}
}

// WithBaseURL sets the URL relative image, background and font paths are
// qualified against.
func WithBaseURL(base string) Option {
	return func(c *composerConfig) {
		c.baseURL = base
	}
}

// WithLogger sets the logger element skips are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(c *composerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLocale sets the language of formatted dates.
func WithLocale(l variables.Locale) Option {
	return func(c *composerConfig) {
		c.locale = l
	}
}

// WithProgress sets a callback invoked by RenderBatch and AppendBatch after
// each record.
func WithProgress(fn func(done, total int)) Option {
	return func(c *composerConfig) {
		c.progress = fn
	}
}
