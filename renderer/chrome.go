package renderer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeSession drives one headless Chrome tab through chromedp.
type ChromeSession struct {
	opts        Options
	tabCtx      context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	closeOnce   sync.Once
}

// NewChromeSession launches Chrome and opens the tab every request reuses.
func NewChromeSession(opts Options) (*ChromeSession, error) {
	chromeBin := opts.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(opts.UserAgent),
	)
	if chromeBin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	// Suppress chromedp log noise
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// Run with no actions starts the browser so launch failures surface here.
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("chrome: launch (binary %q): %w", chromeBin, err)
	}

	return &ChromeSession{
		opts:        opts,
		tabCtx:      tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
	}, nil
}

// bounded derives a context from the tab that also ends when ctx ends.
func (s *ChromeSession) bounded(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	tctx, cancel := context.WithTimeout(s.tabCtx, d)
	stop := context.AfterFunc(ctx, cancel)
	return tctx, func() {
		stop()
		cancel()
	}
}

func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	tctx, cancel := s.bounded(ctx, s.opts.NavTimeout)
	defer cancel()

	if err := chromedp.Run(tctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("chrome: navigate %s: %w", url, err)
	}
	return nil
}

func (s *ChromeSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	tctx, cancel := s.bounded(ctx, timeout)
	defer cancel()

	if err := chromedp.Run(tctx, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("%w: %s after %v: %v", ErrWaitTimeout, selector, timeout, err)
	}
	return nil
}

func (s *ChromeSession) FindAll(ctx context.Context, selector string) ([]Element, error) {
	tctx, cancel := s.bounded(ctx, s.opts.NavTimeout)
	defer cancel()

	arg, err := json.Marshal(selector)
	if err != nil {
		return nil, fmt.Errorf("chrome: encode selector: %w", err)
	}

	var elems []Element
	script := "(" + queryFunc + ")(" + string(arg) + ")"
	if err := chromedp.Run(tctx, chromedp.Evaluate(script, &elems)); err != nil {
		return nil, fmt.Errorf("chrome: query %s: %w", selector, err)
	}
	return elems, nil
}

func (s *ChromeSession) FindFirst(ctx context.Context, selector string) (Element, error) {
	elems, err := s.FindAll(ctx, selector)
	return firstOf(elems, err, selector)
}

// Close shuts the tab and the browser. Safe to call more than once.
func (s *ChromeSession) Close() error {
	s.closeOnce.Do(func() {
		s.cancelTab()
		s.cancelAlloc()
	})
	return nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
