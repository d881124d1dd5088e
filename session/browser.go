package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/sig-0/ptax/config"
)

// renderGrace bounds everything that is not the ready wait or a settle delay
const renderGrace = 5 * time.Second

// maskWebdriverScript hides the automation flag from page scripts
const maskWebdriverScript = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined})`

// Browser is a headless Chrome instance, rendering one tab per page
type Browser struct {
	ctx           context.Context //nolint:containedctx // browser lifetime
	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
	logger        *slog.Logger

	waitTimeout time.Duration
	settleDelay time.Duration
}

// NewBrowser launches a headless browser. The browser lives until Close
// is called, or the given context is canceled
func NewBrowser(
	ctx context.Context,
	cfg config.Render,
	userAgent string,
	logger *slog.Logger,
) (*Browser, error) {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)

	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser process
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()

		return nil, fmt.Errorf("unable to start browser: %w", err)
	}

	logger.Info(
		"browser started",
		"window_width", cfg.WindowWidth,
		"window_height", cfg.WindowHeight,
	)

	return &Browser{
		ctx:           browserCtx,
		allocCancel:   allocCancel,
		browserCancel: browserCancel,
		logger:        logger,
		waitTimeout:   cfg.WaitTimeoutDuration(),
		settleDelay:   cfg.SettleDelayDuration(),
	}, nil
}

// Render loads the page in a fresh tab, waits for the document to be
// complete and settled, and returns the rendered markup
func (b *Browser) Render(ctx context.Context, url string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(b.ctx)
	defer cancelTab()

	// Open the tab
	if err := chromedp.Run(tabCtx); err != nil {
		return "", fmt.Errorf("unable to open tab: %w", err)
	}

	runCtx, cancelRun := context.WithTimeout(
		tabCtx,
		b.waitTimeout+2*b.settleDelay+renderGrace,
	)
	defer cancelRun()

	// The tab context derives from the browser, tie it to the caller as well
	stop := context.AfterFunc(ctx, cancelRun)
	defer stop()

	var (
		ready   bool
		textLen int
		html    string
	)

	err := chromedp.Run(
		runCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(maskWebdriverScript).Do(ctx)

			return err
		}),
		chromedp.Navigate(url),
		chromedp.Poll(
			`document.readyState === "complete"`,
			&ready,
			chromedp.WithPollingTimeout(b.waitTimeout),
		),
		chromedp.Sleep(b.settleDelay),
		chromedp.Evaluate(`document.body ? document.body.innerText.trim().length : 0`, &textLen),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if textLen > 0 {
				return nil
			}

			b.logger.Debug("page looks empty, waiting longer", "url", url)

			return chromedp.Sleep(b.settleDelay).Do(ctx)
		}),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, chromedp.ErrPollingTimeout) || errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s, %w", ErrRenderTimeout, url, err)
		}

		return "", fmt.Errorf("unable to render %s: %w", url, err)
	}

	return html, nil
}

// Close terminates the browser process
func (b *Browser) Close() error {
	err := chromedp.Cancel(b.ctx)

	b.browserCancel()
	b.allocCancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("unable to close browser: %w", err)
	}

	return nil
}
