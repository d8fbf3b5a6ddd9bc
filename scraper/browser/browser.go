package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"vehicle-market/models"
	"vehicle-market/scraper/listings"
	"vehicle-market/utils"
)

const source = "browser"

// Options configures a headless Chrome page source.
type Options struct {
	ListingsURL string
	ChromeBin   string
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
	Logger      *utils.Logger
}

// Source loads listings pages in headless Chrome. It satisfies
// listings.PageSource and is used when the endpoint is only reachable
// through a browser session.
type Source struct {
	listingsURL string
	timeout     time.Duration
	retry       *utils.RetryConfig
	logger      *utils.Logger

	browserCtx context.Context
	cancel     context.CancelFunc
}

// NewSource starts a headless browser. Close must be called to stop it.
func NewSource(opts Options) (*Source, error) {
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if _, err := url.ParseRequestURI(opts.ListingsURL); err != nil {
		return nil, fmt.Errorf("browser: invalid listings url %q: %w", opts.ListingsURL, err)
	}

	chromeBin := opts.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	opts.Logger.Info("[browser] Using browser binary: %s", chromeBin)

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
	)
	if chromeBin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	cancel := func() {
		cancelBrowser()
		cancelAlloc()
	}
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("browser: start: %w", err)
	}

	return &Source{
		listingsURL: opts.ListingsURL,
		timeout:     opts.Timeout,
		logger:      opts.Logger,
		browserCtx:  browserCtx,
		cancel:      cancel,
		retry: &utils.RetryConfig{
			MaxAttempts: opts.MaxAttempts,
			Delay:       opts.RetryDelay,
			Logger:      opts.Logger,
			Retryable:   listings.IsRetryable,
			OnRetry: func(int, error) {
				utils.PageRetries.WithLabelValues(source).Inc()
			},
		},
	}, nil
}

// FetchPage opens the page URL in a fresh tab and decodes the document text.
func (s *Source) FetchPage(ctx context.Context, page int) (*models.ListingsPage, error) {
	pageURL := pageURL(s.listingsURL, page)

	var body string
	err := s.retry.Do(ctx, fmt.Sprintf("browser page %d", page), func(ctx context.Context) error {
		text, err := s.load(ctx, pageURL)
		if err != nil {
			return err
		}
		body = text
		return nil
	})
	if err != nil {
		var fe *listings.FetchError
		if errors.As(err, &fe) {
			utils.PageRequests.WithLabelValues(source, fe.Kind.String()).Inc()
			return nil, fe
		}
		utils.PageRequests.WithLabelValues(source, "error").Inc()
		return nil, err
	}

	result, err := listings.DecodePage([]byte(body), s.logger)
	if err != nil {
		utils.PageRequests.WithLabelValues(source, "decode").Inc()
		return nil, err
	}
	utils.PageRequests.WithLabelValues(source, "ok").Inc()
	return result, nil
}

func (s *Source) load(ctx context.Context, pageURL string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(s.browserCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, s.timeout)
	defer cancelTimeout()

	// Stop the tab when the caller gives up.
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	resp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(pageURL))
	if err != nil {
		return "", classifyNavError(err, pageURL)
	}
	if resp != nil && (resp.Status < 200 || resp.Status > 299) {
		return "", &listings.FetchError{
			Kind:       statusKind(int(resp.Status)),
			StatusCode: int(resp.Status),
			URL:        pageURL,
		}
	}

	var text string
	if err := chromedp.Run(tabCtx,
		chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &text),
	); err != nil {
		return "", classifyNavError(err, pageURL)
	}
	return text, nil
}

// Close shuts the browser down.
func (s *Source) Close() error {
	s.cancel()
	return nil
}

func pageURL(listingsURL string, page int) string {
	u, err := url.Parse(listingsURL)
	if err != nil {
		return listingsURL
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

func statusKind(status int) listings.Kind {
	switch {
	case status == 404:
		return listings.KindNotFound
	case status < 500:
		return listings.KindClient
	default:
		return listings.KindServer
	}
}

// classifyNavError maps Chrome's net::ERR_* failures onto fetch error kinds.
func classifyNavError(err error, pageURL string) *listings.FetchError {
	fe := &listings.FetchError{Kind: listings.KindTransport, URL: pageURL, Err: err}
	msg := err.Error()

	switch {
	case errors.Is(err, context.DeadlineExceeded), strings.Contains(msg, "ERR_TIMED_OUT"),
		strings.Contains(msg, "ERR_CONNECTION_TIMED_OUT"):
		fe.Kind = listings.KindTimeout
	case strings.Contains(msg, "CORS"), strings.Contains(msg, "ERR_BLOCKED_BY"):
		fe.Kind = listings.KindCORS
	case strings.Contains(msg, "net::ERR_"):
		fe.Kind = listings.KindNetwork
	}
	return fe
}

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
