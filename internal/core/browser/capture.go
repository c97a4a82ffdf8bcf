package browser

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/platform"
	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/tokens"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// DefaultTimeout bounds how long Capture waits for the user to browse.
const DefaultTimeout = 5 * time.Minute

// ErrNotCaptured is returned when the browser closed or the timeout
// elapsed before a complete credential was seen.
var ErrNotCaptured = errors.New("no authentication tokens captured")

// Start pages that trigger authenticated API calls once the user is signed in.
var startURLs = map[platform.Platform]string{
	platform.Twitter:  "https://x.com/i/bookmarks",
	platform.LinkedIn: "https://www.linkedin.com/my-items/saved-posts/",
}

// StartURL returns the page opened for p when none is configured.
func StartURL(p platform.Platform) string {
	return startURLs[p]
}

// Observer receives the URL and headers of every outbound request.
type Observer interface {
	Observe(url string, headers []tokens.Header) (platform.Platform, bool)
}

// CaptureOptions controls the browser session used to capture tokens.
type CaptureOptions struct {
	// ChromePath optionally overrides the Chrome/Chromium executable path.
	ChromePath string
	// Headless hides the window. Signing in usually needs a visible one.
	Headless bool
	// Timeout is the overall deadline. If <= 0, DefaultTimeout is used.
	Timeout time.Duration
	// UserDataDir keeps the browser profile (and its sessions) between runs.
	UserDataDir string
	// StartURL overrides the page opened first.
	StartURL string
	// Platform is the platform whose credential ends the capture.
	Platform platform.Platform
}

// Capture opens a browser, taps every outbound request and feeds the
// headers to obs until a complete credential for opts.Platform is captured.
func Capture(ctx context.Context, obs Observer, opts CaptureOptions) error {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.StartURL == "" {
		opts.StartURL = StartURL(opts.Platform)
	}
	if opts.StartURL == "" {
		return fmt.Errorf("no start URL for platform %q", opts.Platform)
	}

	allocatorOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocatorOpts = append(allocatorOpts,
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
	)
	if opts.ChromePath != "" {
		allocatorOpts = append(allocatorOpts, chromedp.ExecPath(opts.ChromePath))
	}
	if opts.UserDataDir != "" {
		allocatorOpts = append(allocatorOpts, chromedp.UserDataDir(opts.UserDataDir))
	}
	if opts.Headless {
		allocatorOpts = append(allocatorOpts, chromedp.Headless)
	} else {
		allocatorOpts = append(allocatorOpts, chromedp.Flag("headless", false))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocatorOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, opts.Timeout)
	defer cancelRun()

	t := newTap(obs, opts.Platform)
	chromedp.ListenTarget(runCtx, t.handle)

	log.Printf("Opening %s; sign in and browse until %s tokens are captured", opts.StartURL, opts.Platform.DisplayName())
	if err := chromedp.Run(runCtx,
		network.Enable(),
		chromedp.Navigate(opts.StartURL),
	); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	select {
	case <-t.done:
		log.Printf("%s tokens captured", opts.Platform.DisplayName())
		return nil
	case <-runCtx.Done():
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w within %s", ErrNotCaptured, opts.Timeout)
		}
		return ErrNotCaptured
	}
}

// maxPending bounds the requests a tap holds while waiting for their
// second event. The oldest entry is dropped first.
const maxPending = 256

// tap merges the two DevTools events a request produces. The second one
// (ExtraInfo) carries the headers the browser adds itself, including
// cookie, so a platform request is only observed once both have arrived.
type tap struct {
	obs    Observer
	target platform.Platform

	mu      sync.Mutex
	pending map[network.RequestID]*pendingRequest
	order   []network.RequestID

	once sync.Once
	done chan struct{}
}

type pendingRequest struct {
	url       string
	headers   map[string]string
	extraInfo bool
}

func newTap(obs Observer, target platform.Platform) *tap {
	return &tap{
		obs:     obs,
		target:  target,
		pending: make(map[network.RequestID]*pendingRequest),
		done:    make(chan struct{}),
	}
}

func (t *tap) handle(ev interface{}) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		if e.Request == nil {
			return
		}
		if _, ok := tokens.MatchPlatform(e.Request.URL); !ok {
			t.forget(e.RequestID)
			return
		}
		t.record(e.RequestID, e.Request.URL, e.Request.Headers, false)
	case *network.EventRequestWillBeSentExtraInfo:
		t.record(e.RequestID, "", e.Headers, true)
	}
}

// forget drops a request that turned out not to target a platform API.
func (t *tap) forget(id network.RequestID) {
	t.mu.Lock()
	delete(t.pending, id)
	t.mu.Unlock()
}

func (t *tap) record(id network.RequestID, url string, h network.Headers, extraInfo bool) {
	t.mu.Lock()
	req, ok := t.pending[id]
	if !ok {
		req = &pendingRequest{headers: make(map[string]string)}
		t.pending[id] = req
		t.order = append(t.order, id)
		t.evict()
	}
	if url != "" {
		req.url = url
	}
	req.extraInfo = req.extraInfo || extraInfo
	for k, v := range h {
		if s, ok := v.(string); ok {
			req.headers[k] = s
		}
	}
	if req.url == "" || !req.extraInfo {
		t.mu.Unlock()
		return
	}
	delete(t.pending, id)
	url = req.url
	list := headerList(req.headers)
	t.mu.Unlock()

	p, ok := t.obs.Observe(url, list)
	if ok && (t.target == "" || p == t.target) {
		t.once.Do(func() { close(t.done) })
	}
}

// evict keeps pending within maxPending and compacts order. Callers hold mu.
func (t *tap) evict() {
	for len(t.pending) > maxPending && len(t.order) > 0 {
		delete(t.pending, t.order[0])
		t.order = t.order[1:]
	}
	if len(t.order) > 2*maxPending {
		live := t.order[:0]
		for _, id := range t.order {
			if _, ok := t.pending[id]; ok {
				live = append(live, id)
			}
		}
		t.order = live
	}
}

func headerList(m map[string]string) []tokens.Header {
	out := make([]tokens.Header, 0, len(m))
	for k, v := range m {
		out = append(out, tokens.Header{Name: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
