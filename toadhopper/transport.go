package toadhopper

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"regexp"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const (
	DefaultEndpoint       = "http://hoptoadapp.com:80/notifier_api/v2/notices"
	DefaultConnectTimeout = 2 * time.Second
	DefaultReadTimeout    = 5 * time.Second

	// TimeoutError is the only error of the response synthesized when the API
	// doesn't answer in time.
	TimeoutError = "Timeout error"
)

// ErrTransport wraps every failure to deliver a notice other than a timeout.
var ErrTransport = errors.New("failed to post notice")

var errorTagRE = regexp.MustCompile(`(?s)<error>(.+?)</error>`)

// Response is the API's answer to a posted notice.
type Response struct {
	status int
	body   string
	errors []string
}

func newResponse(status int, body string) *Response {
	return &Response{
		status: status,
		body:   body,
		errors: lo.Map(errorTagRE.FindAllStringSubmatch(body, -1), func(m []string, _ int) string {
			return m[1]
		}),
	}
}

func timeoutResponse() *Response {
	return &Response{status: http.StatusInternalServerError, errors: []string{TimeoutError}}
}

// Status is the HTTP status code.
func (r *Response) Status() int { return r.status }

// Body is the raw response body.
func (r *Response) Body() string { return r.body }

// Errors returns the contents of every <error> element of the body, in order.
func (r *Response) Errors() []string {
	return append(make([]string, 0, len(r.errors)), r.errors...)
}

func (n *Notifier) postDocument(document string, headers map[string]string) (*Response, error) {
	client := resty.New().
		SetTransport(n.roundTripper()).
		SetTimeout(n.connectTimeout + n.readTimeout).
		SetLogger(restyLogger{logger: n.logger})

	n.logger.Debug().
		Str("endpoint", n.endpoint).
		Int("bytes", len(document)).
		Msg("posting notice")

	resp, err := client.R().
		SetHeaders(lo.Assign(map[string]string{
			"Content-Type": "text/xml",
			"Accept":       "text/xml, application/xml",
		}, canonicalHeaders(headers))).
		SetBody(document).
		Post(n.endpoint)
	if err != nil {
		if isTimeout(err) {
			n.logger.Warn().Err(err).Str("endpoint", n.endpoint).Msg("timed out posting notice")
			return timeoutResponse(), nil
		}
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	n.logger.Debug().Int("status", resp.StatusCode()).Msg("notice posted")
	return newResponse(resp.StatusCode(), string(resp.Body())), nil
}

func (n *Notifier) roundTripper() http.RoundTripper {
	if n.transport != nil {
		return n.transport
	}
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: n.connectTimeout,
		}).DialContext,
		TLSHandshakeTimeout:   n.connectTimeout,
		ResponseHeaderTimeout: n.readTimeout,
		DisableKeepAlives:     true,
	}
}

func canonicalHeaders(headers map[string]string) map[string]string {
	return lo.MapKeys(headers, func(_ string, key string) string {
		return http.CanonicalHeaderKey(key)
	})
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// restyLogger routes resty's own messages through zerolog.
type restyLogger struct {
	logger zerolog.Logger
}

// Errorf logs at debug level; the same failures are returned from Post.
func (l restyLogger) Errorf(format string, v ...any) { l.logger.Debug().Msgf(format, v...) }

func (l restyLogger) Warnf(format string, v ...any) { l.logger.Warn().Msgf(format, v...) }

func (l restyLogger) Debugf(format string, v ...any) { l.logger.Debug().Msgf(format, v...) }
