package fieldnames

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/crowdsourcing/surveyadmin/internal/logging"
	"github.com/crowdsourcing/surveyadmin/internal/surveys/domain"
	"golang.org/x/time/rate"
)

// SurveyListPath is the survey API endpoint the loader reads
const SurveyListPath = "/survey/api/v1/survey/"

const (
	DefaultTimeout = 30 * time.Second
	maxBodyBytes   = 16 << 20
)

// Loader fetches the survey list once and turns it into suggestions
type Loader struct {
	baseURL string
	client  *http.Client
	store   *Store
	limiter *rate.Limiter
	header  http.Header
	metrics *Metrics
	maxBody int64
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithHTTPClient replaces the default client
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithHeader adds a header to every request, e.g. an API key
func WithHeader(key, value string) LoaderOption {
	return func(l *Loader) {
		if value != "" {
			l.header.Set(key, value)
		}
	}
}

// WithRateLimit caps outbound requests per second
func WithRateLimit(perSecond float64, burst int) LoaderOption {
	return func(l *Loader) {
		if perSecond <= 0 {
			l.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		l.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewLoader creates a loader that writes into store
func NewLoader(baseURL string, store *Store, opts ...LoaderOption) *Loader {
	l := &Loader{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: DefaultTimeout},
		store:   store,
		limiter: rate.NewLimiter(rate.Limit(1), 2),
		header:  make(http.Header),
		metrics: &Metrics{},
		maxBody: maxBodyBytes,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Metrics returns the loader's call metrics
func (l *Loader) Metrics() MetricsSnapshot {
	return l.metrics.Snapshot()
}

// Load fetches the survey list and replaces the store contents. On failure the
// store is marked failed and keeps what it had.
func (l *Loader) Load(ctx context.Context) error {
	logger := logging.NewLogger(ctx)

	items, err := l.Fetch(ctx)
	if err != nil {
		logger.LogError("load_fieldnames", err)
		l.store.Fail(err)
		return err
	}

	l.store.Set(items)
	logger.LogInfof("load_fieldnames", "loaded %d survey fields", len(items))
	return nil
}

// Start runs Load once in the background. The channel yields its result and closes.
func (l *Loader) Start(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- l.Load(ctx)
	}()
	return done
}

// Fetch reads the survey list and builds suggestions without touching the store
func (l *Loader) Fetch(ctx context.Context) ([]domain.Suggestion, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, &LoadError{Stage: StageRequest, Err: err}
	}

	start := time.Now()
	body, err := l.get(ctx)
	l.metrics.record(time.Since(start), err)
	if err != nil {
		return nil, err
	}

	surveys, err := ParseSurveyList(body)
	if err != nil {
		return nil, &LoadError{Stage: StageDecode, Err: err}
	}
	return domain.BuildSuggestions(surveys), nil
}

func (l *Loader) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+SurveyListPath, nil)
	if err != nil {
		return nil, &LoadError{Stage: StageRequest, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range l.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &LoadError{Stage: StageTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &LoadError{Stage: StageStatus, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBody+1))
	if err != nil {
		return nil, &LoadError{Stage: StageTransport, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > l.maxBody {
		return nil, &LoadError{Stage: StageSize, Err: fmt.Errorf("%w: over %d bytes", ErrResponseTooLarge, l.maxBody)}
	}
	return body, nil
}
