package imgnamer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

const defaultRenderTimeout = 30 * time.Second

var errRendererClosed = errors.New("imgnamer: renderer closed")

// ChromeRenderer renders result pages in a shared headless Chrome instance.
// The browser is started lazily on first use; Close shuts it down. All
// methods are goroutine-safe.
type ChromeRenderer struct {
	Timeout   time.Duration // per page (default 30s)
	UserAgent string        // default: DefaultUserAgent

	mu          sync.Mutex
	closed      bool
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

var _ PageRenderer = (*ChromeRenderer)(nil)

// allocator returns the browser allocator, starting it on first use.
func (r *ChromeRenderer) allocator() (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, errRendererClosed
	}
	if r.allocCtx == nil {
		r.start()
	}
	return r.allocCtx, nil
}

// start must be called with r.mu held.
func (r *ChromeRenderer) start() {
	ua := r.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(ua),
	)
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
}

// Render navigates to pageURL and returns the document's outer HTML once the
// body is ready.
func (r *ChromeRenderer) Render(ctx context.Context, pageURL string) (string, error) {
	allocCtx, err := r.allocator()
	if err != nil {
		return "", err
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, timeout)
	defer cancelTimeout()

	// Propagate caller cancellation into the browser tab.
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	var html string
	err = chromedp.Run(taskCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", pageURL, err)
	}
	slog.Debug("imgnamer: page rendered", "url", pageURL, "bytes", len(html))
	return html, nil
}

// Close stops the browser; later Render calls fail. It is safe to call more
// than once and on a renderer that never rendered.
func (r *ChromeRenderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.allocCancel != nil {
		r.allocCancel()
	}
}
