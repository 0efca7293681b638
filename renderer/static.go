package renderer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// Fetcher loads a document without executing scripts.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Selection, error)
}

var (
	_ Session = (*HTMLSession)(nil)
	_ Session = (*ChromeSession)(nil)
	_ Session = (*PlaywrightSession)(nil)
)

// HTMLSession answers queries against a fetched, non-scripted document.
// Waits are presence checks since the document never changes after load.
type HTMLSession struct {
	fetcher Fetcher
	root    *goquery.Selection
}

// NewHTMLSession wraps a Fetcher in the Session interface.
func NewHTMLSession(f Fetcher) *HTMLSession {
	return &HTMLSession{fetcher: f}
}

func (s *HTMLSession) Navigate(ctx context.Context, url string) error {
	s.root = nil
	root, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return fmt.Errorf("static: fetch %s: %w", url, err)
	}
	s.root = root
	return nil
}

func (s *HTMLSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.root == nil || s.root.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %s after %v", ErrWaitTimeout, selector, timeout)
	}
	return nil
}

func (s *HTMLSession) FindAll(ctx context.Context, selector string) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.root == nil {
		return nil, nil
	}

	var elems []Element
	s.root.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		elems = append(elems, elementOf(sel))
	})
	return elems, nil
}

func (s *HTMLSession) FindFirst(ctx context.Context, selector string) (Element, error) {
	elems, err := s.FindAll(ctx, selector)
	return firstOf(elems, err, selector)
}

func (s *HTMLSession) Close() error {
	s.root = nil
	return nil
}

func elementOf(sel *goquery.Selection) Element {
	e := Element{Text: InnerText(sel), Attrs: make(map[string]string)}
	if len(sel.Nodes) > 0 {
		for _, a := range sel.Nodes[0].Attr {
			e.Attrs[a.Key] = a.Val
		}
	}
	return e
}

// CollyFetcher downloads pages with a colly collector.
type CollyFetcher struct {
	collector *colly.Collector
}

// NewCollyFetcher builds a collector that may revisit URLs, which the
// discovery retry path needs.
func NewCollyFetcher(userAgent string, timeout time.Duration) *CollyFetcher {
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(timeout)
	return &CollyFetcher{collector: c}
}

func (f *CollyFetcher) Fetch(ctx context.Context, url string) (*goquery.Selection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := f.collector.Clone()

	var root *goquery.Selection
	var fetchErr error

	c.OnHTML("html", func(e *colly.HTMLElement) {
		root = e.DOM
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("request %v failed with status %d: %w", r.Request.URL, r.StatusCode, err)
	})

	if err := c.Visit(url); err != nil {
		return nil, err
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	if root == nil {
		return nil, fmt.Errorf("no html document at %s", url)
	}
	return root, nil
}

// PageSet serves pre-captured HTML keyed by URL. Unknown URLs fail like a
// network error.
type PageSet map[string]string

func (p PageSet) Fetch(ctx context.Context, url string) (*goquery.Selection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	html, ok := p[url]
	if !ok {
		return nil, fmt.Errorf("no page captured for %s", url)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc.Selection, nil
}
