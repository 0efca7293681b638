package renderer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightSession drives one Chromium page through playwright-go.
type PlaywrightSession struct {
	pw        *playwright.Playwright
	browser   playwright.Browser
	context   playwright.BrowserContext
	page      playwright.Page
	opts      Options
	closeOnce sync.Once
	closeErr  error
}

// NewPlaywrightSession starts playwright, launches Chromium and opens a page.
func NewPlaywrightSession(opts Options) (*PlaywrightSession, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("playwright: start: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
		},
	}
	if opts.ChromeBin != "" {
		launchOpts.ExecutablePath = playwright.String(opts.ChromeBin)
	}

	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("playwright: launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:         playwright.String(opts.UserAgent),
		JavaScriptEnabled: playwright.Bool(true),
		Viewport: &playwright.Size{
			Width:  1920,
			Height: 1080,
		},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("playwright: create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("playwright: create page: %w", err)
	}
	page.SetDefaultTimeout(float64(opts.NavTimeout.Milliseconds()))

	return &PlaywrightSession{
		pw:      pw,
		browser: browser,
		context: bctx,
		page:    page,
		opts:    opts,
	}, nil
}

func (s *PlaywrightSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(float64(s.opts.NavTimeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("playwright: navigate %s: %w", url, err)
	}
	return nil
}

func (s *PlaywrightSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("%w: %s after %v: %v", ErrWaitTimeout, selector, timeout, err)
	}
	return nil
}

func (s *PlaywrightSession) FindAll(ctx context.Context, selector string) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := s.page.Evaluate(queryFunc, selector)
	if err != nil {
		return nil, fmt.Errorf("playwright: query %s: %w", selector, err)
	}

	// Evaluate hands back generic maps; round-trip them into Elements.
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("playwright: encode result: %w", err)
	}
	var elems []Element
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("playwright: decode result: %w", err)
	}
	return elems, nil
}

func (s *PlaywrightSession) FindFirst(ctx context.Context, selector string) (Element, error) {
	elems, err := s.FindAll(ctx, selector)
	return firstOf(elems, err, selector)
}

// Close releases the page, context, browser and driver. Safe to call more than once.
func (s *PlaywrightSession) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if err := s.page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}
		if err := s.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close context: %w", err))
		}
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
		if err := s.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop playwright: %w", err))
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}
