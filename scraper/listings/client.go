package listings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"vehicle-market/models"
	"vehicle-market/storage"
	"vehicle-market/utils"
)

const (
	sourceHTTP = "http"

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 16 << 20
)

// PageSource returns one raw page of the listings endpoint.
type PageSource interface {
	FetchPage(ctx context.Context, page int) (*models.ListingsPage, error)
}

// HTTPSourceOptions configures an HTTPSource.
type HTTPSourceOptions struct {
	ListingsURL string
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration

	// Session supplies the bearer token. Optional.
	Session storage.SessionStore
	Client  *http.Client
	Logger  *utils.Logger
}

// HTTPSource fetches listings pages over plain HTTP.
type HTTPSource struct {
	listingsURL string
	timeout     time.Duration
	client      *http.Client
	session     storage.SessionStore
	retry       *utils.RetryConfig
	logger      *utils.Logger
}

// NewHTTPSource validates opts and returns a ready HTTPSource.
func NewHTTPSource(opts HTTPSourceOptions) (*HTTPSource, error) {
	u, err := url.Parse(opts.ListingsURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("listings: invalid listings url %q", opts.ListingsURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}
	if opts.Client == nil {
		opts.Client = &http.Client{}
	}
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}

	return &HTTPSource{
		listingsURL: opts.ListingsURL,
		timeout:     opts.Timeout,
		client:      opts.Client,
		session:     opts.Session,
		logger:      opts.Logger,
		retry: &utils.RetryConfig{
			MaxAttempts: opts.MaxAttempts,
			Delay:       opts.RetryDelay,
			Logger:      opts.Logger,
			Retryable:   IsRetryable,
			OnRetry: func(int, error) {
				utils.PageRetries.WithLabelValues(sourceHTTP).Inc()
			},
		},
	}, nil
}

// PageURL builds the request URL for a page number.
func (s *HTTPSource) PageURL(page int) string {
	u, err := url.Parse(s.listingsURL)
	if err != nil {
		return s.listingsURL
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// FetchPage requests one page. Transport failures are retried with a fixed
// delay; HTTP error statuses are returned at once.
func (s *HTTPSource) FetchPage(ctx context.Context, page int) (*models.ListingsPage, error) {
	pageURL := s.PageURL(page)

	var body []byte
	err := s.retry.Do(ctx, fmt.Sprintf("GET page %d", page), func(ctx context.Context) error {
		b, err := s.doGET(ctx, pageURL)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		utils.PageRequests.WithLabelValues(sourceHTTP, outcomeOf(err)).Inc()
		return nil, unwrapFetchError(err)
	}

	result, err := DecodePage(body, s.logger)
	if err != nil {
		utils.PageRequests.WithLabelValues(sourceHTTP, outcomeOf(err)).Inc()
		var fe *FetchError
		if errors.As(err, &fe) {
			fe.URL = pageURL
		}
		return nil, err
	}
	utils.PageRequests.WithLabelValues(sourceHTTP, "ok").Inc()
	return result, nil
}

func (s *HTTPSource) doGET(ctx context.Context, pageURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindClient, URL: pageURL, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if token := s.accessToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err, pageURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, statusError(resp.StatusCode, pageURL)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classifyTransportError(err, pageURL)
	}
	return b, nil
}

func (s *HTTPSource) accessToken(ctx context.Context) string {
	if s.session == nil {
		return ""
	}
	token, ok, err := s.session.Get(ctx, storage.KeyAccessToken)
	if err != nil {
		s.logger.Warn("[listings] Could not read access token: %v", err)
		return ""
	}
	if !ok {
		return ""
	}
	return token
}

// unwrapFetchError surfaces the FetchError behind the retry wrapper so that
// callers see the user-facing message.
func unwrapFetchError(err error) error {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return err
}

func outcomeOf(err error) string {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind.String()
	}
	return "error"
}
