// Package toadhopper posts errors to the Hoptoad notifier API.
//
// A Notifier assembles a notice from an error and its context, filters
// sensitive fields out of it, renders it as XML and posts it:
//
//	n := toadhopper.New(apiKey)
//	n.SetFilters(toadhopper.Plain("password"), toadhopper.MustRegexp(`^credit_card`))
//	resp, err := n.Post(err, toadhopper.Options{Action: "show", Component: "users"}, nil)
//
// A Notifier's configuration must not change while it is posting.
package toadhopper

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// ErrNilError is returned by Post when there is no error to report.
var ErrNilError = errors.New("no error to report")

// ClientNameHeader carries the notifier name on every post.
const ClientNameHeader = "X-Hoptoad-Client-Name"

// Notifier posts notices for a single API key.
type Notifier struct {
	apiKey  string
	filters []Filter

	endpoint       string
	connectTimeout time.Duration
	readTimeout    time.Duration
	transport      http.RoundTripper

	env            EnvSource
	projectRootDir string
	logger         zerolog.Logger
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithEndpoint sets the notices URL.
func WithEndpoint(endpoint string) Option {
	return func(n *Notifier) {
		n.endpoint = endpoint
	}
}

// WithTimeouts sets the connect and read timeouts. Non-positive values keep
// the defaults.
func WithTimeouts(connect, read time.Duration) Option {
	return func(n *Notifier) {
		if connect > 0 {
			n.connectTimeout = connect
		}
		if read > 0 {
			n.readTimeout = read
		}
	}
}

// WithTransport replaces the HTTP transport. The connect and read timeouts
// are then up to rt; the overall client timeout still applies.
func WithTransport(rt http.RoundTripper) Option {
	return func(n *Notifier) {
		n.transport = rt
	}
}

// WithEnv sets the environment reported in notices and consulted for the
// framework environment.
func WithEnv(env EnvSource) Option {
	return func(n *Notifier) {
		n.env = env
	}
}

// WithProjectRoot sets the default project root instead of the working
// directory.
func WithProjectRoot(dir string) Option {
	return func(n *Notifier) {
		n.projectRootDir = dir
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(n *Notifier) {
		n.logger = logger
	}
}

// New returns a Notifier for apiKey.
func New(apiKey string, opts ...Option) *Notifier {
	n := &Notifier{
		apiKey:         apiKey,
		endpoint:       DefaultEndpoint,
		connectTimeout: DefaultConnectTimeout,
		readTimeout:    DefaultReadTimeout,
		env:            OSEnv{},
		logger:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// APIKey returns the key notices are posted with.
func (n *Notifier) APIKey() string {
	return n.apiKey
}

// SetFilters replaces the filters applied to the session, environment and
// request parameters of every notice.
func (n *Notifier) SetFilters(filters ...Filter) {
	n.filters = append([]Filter(nil), filters...)
}

// Filters returns a copy of the current filters.
func (n *Notifier) Filters() []Filter {
	return append([]Filter(nil), n.filters...)
}

// Clean returns a copy of m with the values of filtered keys replaced by
// FilteredValue. Values other than strings, integers, booleans, sequences and
// maps are dropped.
func (n *Notifier) Clean(m map[string]any) map[string]any {
	return filterSet(n.filters).clean(m)
}

// Post reports err to the API. headers are sent in addition to the
// ClientNameHeader and win on conflicts.
//
// A timeout is not an error: it comes back as a Response with status 500 and
// the single error TimeoutError. Every other delivery failure wraps
// ErrTransport.
func (n *Notifier) Post(err error, opts Options, headers map[string]string) (*Response, error) {
	if err == nil {
		return nil, ErrNilError
	}
	if opts.NotifierName == "" {
		opts.NotifierName = DefaultNotifierName
	}

	document, buildErr := BuildDocument(n.assemble(err, opts))
	if buildErr != nil {
		return nil, buildErr
	}

	return n.postDocument(document, lo.Assign(
		map[string]string{ClientNameHeader: opts.NotifierName},
		canonicalHeaders(headers),
	))
}
