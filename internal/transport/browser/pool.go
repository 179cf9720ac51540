// Package browser runs headless Chromium sessions through Playwright.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/kailas-cloud/shopsense/internal/domain"
	"github.com/kailas-cloud/shopsense/internal/usecase/acquire"
)

// Config controls the launched browser and every session it opens.
type Config struct {
	Headless       bool
	MaxSessions    int
	SlotWait       time.Duration // zero waits as long as ctx allows
	UserAgent      string
	AcceptLanguage string
	Accept         string
	ViewportWidth  int
	ViewportHeight int
	LaunchArgs     []string
}

// DefaultConfig mimics a desktop Chrome on a 1080p screen.
func DefaultConfig() Config {
	return Config{
		Headless:       true,
		MaxSessions:    4,
		SlotWait:       5 * time.Second,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
		AcceptLanguage: "en-US,en;q=0.9",
		Accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		LaunchArgs: []string{
			"--no-sandbox",
			"--disable-setuid-sandbox",
			"--disable-dev-shm-usage",
			"--disable-gpu",
		},
	}
}

// Pool owns one Chromium process and hands out isolated browser contexts,
// at most MaxSessions at a time.
type Pool struct {
	cfg     Config
	pw      *playwright.Playwright
	browser playwright.Browser
	slots   *semaphore.Weighted
	logger  *zap.Logger
}

// New starts the Playwright driver and launches Chromium.
func New(cfg Config, logger *zap.Logger) (*Pool, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Args:     cfg.LaunchArgs,
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	maxSessions := cfg.MaxSessions
	if maxSessions <= 0 {
		maxSessions = 1
	}

	logger.Info("Browser pool started",
		zap.String("version", b.Version()),
		zap.Int("max_sessions", maxSessions),
	)

	return &Pool{
		cfg:     cfg,
		pw:      pw,
		browser: b,
		slots:   semaphore.NewWeighted(int64(maxSessions)),
		logger:  logger,
	}, nil
}

// NewSession opens a fresh browser context with its own page. The context is
// torn down when ctx is cancelled or the session is closed, whichever is first.
func (p *Pool) NewSession(ctx context.Context) (acquire.Session, error) {
	if err := acquireSlot(ctx, p.slots, p.cfg.SlotWait); err != nil {
		return nil, err
	}

	bctx, err := p.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(p.cfg.UserAgent),
		Viewport: &playwright.Size{
			Width:  p.cfg.ViewportWidth,
			Height: p.cfg.ViewportHeight,
		},
		ExtraHttpHeaders: map[string]string{
			"Accept-Language": p.cfg.AcceptLanguage,
			"Accept":          p.cfg.Accept,
		},
	})
	if err != nil {
		p.slots.Release(1)
		return nil, fmt.Errorf("new browser context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		p.slots.Release(1)
		return nil, fmt.Errorf("new page: %w", err)
	}

	s := &session{bctx: bctx, page: page, release: func() { p.slots.Release(1) }}
	s.stop = context.AfterFunc(ctx, func() {
		if cerr := s.shutdown(); cerr != nil {
			p.logger.Debug("Close cancelled browser session", zap.Error(cerr))
		}
	})
	return s, nil
}

// acquireSlot takes one session slot, giving up after wait. Running out of
// wait reports domain.ErrBrowserBusy; cancellation of ctx is returned as is.
func acquireSlot(ctx context.Context, slots *semaphore.Weighted, wait time.Duration) error {
	wctx := ctx
	if wait > 0 {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(ctx, wait)
		defer cancel()
	}
	if err := slots.Acquire(wctx, 1); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("wait for browser slot: %w", ctx.Err())
		}
		return fmt.Errorf("wait for browser slot after %s: %w", wait, domain.ErrBrowserBusy)
	}
	return nil
}

// Ping reports whether Chromium is still connected.
func (p *Pool) Ping(_ context.Context) error {
	if !p.browser.IsConnected() {
		return fmt.Errorf("browser disconnected")
	}
	return nil
}

// Close shuts down Chromium and the Playwright driver.
func (p *Pool) Close() error {
	if err := p.browser.Close(); err != nil {
		_ = p.pw.Stop()
		return fmt.Errorf("close browser: %w", err)
	}
	if err := p.pw.Stop(); err != nil {
		return fmt.Errorf("stop playwright: %w", err)
	}
	return nil
}

type session struct {
	bctx    playwright.BrowserContext
	page    playwright.Page
	stop    func() bool
	release func()

	once     sync.Once
	closeErr error
}

func (s *session) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   millis(timeout),
	})
	if err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	return nil
}

func (s *session) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: millis(timeout),
	})
}

func (s *session) WaitForReady(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateDomcontentloaded,
		Timeout: millis(timeout),
	})
}

func (s *session) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	html, err := s.page.Content()
	if err != nil {
		return "", fmt.Errorf("page content: %w", err)
	}
	return html, nil
}

// Close is idempotent.
func (s *session) Close() error {
	s.stop()
	return s.shutdown()
}

func (s *session) shutdown() error {
	s.once.Do(func() {
		s.closeErr = s.bctx.Close()
		s.release()
	})
	return s.closeErr
}

func millis(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}
