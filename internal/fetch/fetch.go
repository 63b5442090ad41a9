// Package fetch resolves and retrieves the initial content of a new command.
//
// A command starts from one of three sources, resolved once from the user's
// argument: the toolchain template, a byte copy of a local file, or the body
// of an HTTP(S) URL.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/matsen/cmdload/internal/config"
	"github.com/matsen/cmdload/internal/logging"
	"github.com/spf13/afero"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit caps outgoing requests per second, retries included.
	RateLimit = 2.0

	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 3

	// MaxSize is the largest source accepted from a URL.
	MaxSize = 10 << 20
)

// Kind is the origin of a command's initial content.
type Kind int

const (
	Template Kind = iota
	LocalCopy
	RemoteFetch
)

func (k Kind) String() string {
	switch k {
	case Template:
		return "template"
	case LocalCopy:
		return "local"
	case RemoteFetch:
		return "remote"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Source is a resolved content origin. Location is empty for Template, a
// file path for LocalCopy and a URL for RemoteFetch.
type Source struct {
	Kind     Kind
	Location string
}

func (s Source) String() string {
	if s.Kind == Template {
		return s.Kind.String()
	}
	return s.Kind.String() + ":" + s.Location
}

// Resolve classifies the optional source argument of `add`.
func Resolve(arg string) Source {
	arg = strings.TrimSpace(arg)
	lower := strings.ToLower(arg)
	switch {
	case arg == "":
		return Source{Kind: Template}
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return Source{Kind: RemoteFetch, Location: arg}
	default:
		return Source{Kind: LocalCopy, Location: config.ExpandPath(arg)}
	}
}

// Errors.
var (
	ErrTooLarge = errors.New("source exceeds maximum size")
)

// HTTPError is returned for non-success HTTP responses.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("fetching %s: HTTP %d", e.URL, e.StatusCode)
}

// Fetcher retrieves source content. Remote fetches are rate limited and
// retried with exponential backoff on network errors, 429 and 5xx.
type Fetcher struct {
	fs              afero.Fs
	httpClient      *http.Client
	limiter         *rate.Limiter
	maxRetries      uint64
	initialInterval time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFs sets the filesystem local copies are read from.
func WithFs(fs afero.Fs) Option {
	return func(f *Fetcher) {
		f.fs = fs
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = hc
	}
}

// WithRetry sets the retry count and the first backoff interval.
func WithRetry(maxRetries uint64, initial time.Duration) Option {
	return func(f *Fetcher) {
		f.maxRetries = maxRetries
		f.initialInterval = initial
	}
}

// New creates a Fetcher reading local files from the OS filesystem.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		fs:              afero.NewOsFs(),
		httpClient:      &http.Client{Timeout: DefaultTimeout},
		limiter:         rate.NewLimiter(rate.Limit(RateLimit), 1),
		maxRetries:      DefaultMaxRetries,
		initialInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the content for src. For Template the given template bytes
// are returned as a copy.
func (f *Fetcher) Fetch(ctx context.Context, src Source, template []byte) ([]byte, error) {
	switch src.Kind {
	case Template:
		return append([]byte(nil), template...), nil
	case LocalCopy:
		data, err := afero.ReadFile(f.fs, src.Location)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", src.Location, err)
		}
		return data, nil
	case RemoteFetch:
		return f.get(ctx, src.Location)
	default:
		return nil, fmt.Errorf("unknown source kind %v", src.Kind)
	}
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.initialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, f.maxRetries), ctx)

	attempt := 0
	operation := func() ([]byte, error) {
		attempt++
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}

		resp, err := f.httpClient.Do(req)
		if err != nil {
			logging.Debug().Err(err).Str("url", url).Int("attempt", attempt).Msg("fetch failed")
			return nil, fmt.Errorf("fetching %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			logging.Debug().Str("url", url).Int("status", resp.StatusCode).Int("attempt", attempt).Msg("fetch retry")
			return nil, &HTTPError{URL: url, StatusCode: resp.StatusCode}
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, backoff.Permanent(&HTTPError{URL: url, StatusCode: resp.StatusCode})
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, MaxSize+1))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", url, err)
		}
		if len(data) > MaxSize {
			return nil, backoff.Permanent(fmt.Errorf("%w: %s", ErrTooLarge, url))
		}
		return data, nil
	}

	return backoff.RetryWithData(operation, policy)
}
