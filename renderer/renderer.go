// Package renderer fetches listing pages and answers element queries on the
// rendered document. One Session is one browser page reused serially.
package renderer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coinafrique-scraper/config"
)

var (
	// ErrWaitTimeout is returned when a waited-for selector never appeared.
	ErrWaitTimeout = errors.New("wait timed out")
	// ErrNotFound is returned by FindFirst when nothing matches.
	ErrNotFound = errors.New("element not found")
)

// Session is a single rendered page that can be navigated and queried.
type Session interface {
	Navigate(ctx context.Context, url string) error
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	FindAll(ctx context.Context, selector string) ([]Element, error)
	FindFirst(ctx context.Context, selector string) (Element, error)
	Close() error
}

// Element is a snapshot of one matched DOM element.
type Element struct {
	Text  string            `json:"text"`
	Attrs map[string]string `json:"attrs"`
}

// Attr returns the named attribute and whether it was present.
func (e Element) Attr(name string) (string, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

// Options configures a renderer backend.
type Options struct {
	Headless   bool
	ChromeBin  string
	UserAgent  string
	NavTimeout time.Duration
}

// OptionsFromConfig maps application config onto renderer options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Headless:   cfg.Headless,
		ChromeBin:  cfg.ChromeBin,
		UserAgent:  cfg.UserAgent,
		NavTimeout: cfg.NavTimeout,
	}
}

// Open starts the backend named kind: "chrome", "playwright" or "static".
func Open(kind string, opts Options) (Session, error) {
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = 60 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = config.DefaultUserAgent
	}

	switch kind {
	case "", "chrome", "chromedp":
		return NewChromeSession(opts)
	case "playwright":
		return NewPlaywrightSession(opts)
	case "static", "http":
		return NewHTMLSession(NewCollyFetcher(opts.UserAgent, opts.NavTimeout)), nil
	default:
		return nil, fmt.Errorf("renderer: unknown backend %q", kind)
	}
}

// firstOf turns a FindAll result into a FindFirst result.
func firstOf(elems []Element, err error, selector string) (Element, error) {
	if err != nil {
		return Element{}, err
	}
	if len(elems) == 0 {
		return Element{}, fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return elems[0], nil
}

// queryFunc collects innerText and attributes of every match of a selector.
// Browser backends evaluate it in the page.
const queryFunc = `(sel) => Array.from(document.querySelectorAll(sel)).map((el) => {
	const attrs = {};
	for (const a of el.attributes) {
		attrs[a.name] = a.value;
	}
	return { text: el.innerText || el.textContent || '', attrs: attrs };
})`
