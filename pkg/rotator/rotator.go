// Package rotator fetches remote resources through a rotating list of public
// CORS proxy templates, retrying failed attempts on the next template.
package rotator

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultTimeout = 5 * time.Second
	DefaultRetries = 3
)

var defaultProxies = [...]string{
	"https://corsproxy.io/?",
	"https://api.allorigins.win/raw?url=",
	"https://api.codetabs.com/v1/proxy?quest=",
	"https://thingproxy.freeboard.io/fetch/",
	"https://corsproxy.org/",
	"https://test.cors.workers.dev/",
}

// DefaultProxies returns a fresh copy of the built-in proxy templates.
func DefaultProxies() []string {
	proxies := defaultProxies
	return proxies[:]
}

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Observer receives the outcome of every attempt and of every Fetch call.
type Observer interface {
	ObserveAttempt(proxy string, d time.Duration, err error)
	ObserveFetch(attempts int, err error)
}

type Rotator struct {
	proxies    []string
	timeout    time.Duration
	retries    int
	fixed      bool
	fixedIndex int
	debug      bool

	client   Doer
	log      zerolog.Logger
	logSet   bool
	observer Observer
}

type Option func(r *Rotator)

// WithProxies replaces the built-in templates. An empty list is kept as is
// and makes every Fetch fail with a ConfigError.
func WithProxies(proxies ...string) Option {
	return func(r *Rotator) {
		r.proxies = append(make([]string, 0, len(proxies)), proxies...)
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(r *Rotator) {
		r.timeout = timeout
	}
}

func WithRetries(retries int) Option {
	return func(r *Rotator) {
		r.retries = retries
	}
}

// WithProxyIndex pins every attempt to the template at index. The index is
// checked when Fetch is called.
func WithProxyIndex(index int) Option {
	return func(r *Rotator) {
		r.fixed = true
		r.fixedIndex = index
	}
}

func WithDebug(debug bool) Option {
	return func(r *Rotator) {
		r.debug = debug
	}
}

// WithLogger sets the logger used for diagnostics. It is only written to
// when debug is enabled, and debug lowers its level to debug so attempt
// lines are not filtered out.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Rotator) {
		r.log = log
		r.logSet = true
	}
}

func WithHTTPClient(client Doer) Option {
	return func(r *Rotator) {
		r.client = client
	}
}

func WithObserver(observer Observer) Option {
	return func(r *Rotator) {
		r.observer = observer
	}
}

func New(opts ...Option) *Rotator {
	r := &Rotator{}
	for _, opt := range opts {
		opt(r)
	}

	if r.proxies == nil {
		r.proxies = DefaultProxies()
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	if r.retries <= 0 {
		r.retries = DefaultRetries
	}
	if r.client == nil {
		r.client = &http.Client{}
	}

	switch {
	case !r.debug:
		r.log = zerolog.Nop()
	case r.logSet:
		r.log = r.log.Level(zerolog.DebugLevel)
	default:
		r.log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"}).
			With().
			Timestamp().
			Str("component", "rotator").
			Logger()
	}

	return r
}

// Proxies returns a copy of the configured templates.
func (r *Rotator) Proxies() []string {
	return append([]string(nil), r.proxies...)
}

func (r *Rotator) Timeout() time.Duration {
	return r.timeout
}

func (r *Rotator) Retries() int {
	return r.retries
}

func (r *Rotator) observeAttempt(proxy string, d time.Duration, err error) {
	if r.observer != nil {
		r.observer.ObserveAttempt(proxy, d, err)
	}
}

func (r *Rotator) observeFetch(attempts int, err error) {
	if r.observer != nil {
		r.observer.ObserveFetch(attempts, err)
	}
}
