package toadhopper

import (
	"net/http"
)

// Options describes the context of a single notice. Every field is optional;
// a zero value means "use the default".
type Options struct {
	// URL of the request that failed. Defaults to http://localhost/.
	URL string
	// Component is normally the controller or handler name. Defaults to
	// http://localhost/.
	Component string
	Action    string

	// Request supplies the request parameters. They are filtered like the
	// session and environment.
	Request Request

	NotifierName    string
	NotifierVersion string
	NotifierURL     string

	// Session is the user session of a web request.
	Session map[string]any

	// FrameworkEnv is the deployment stage. Defaults to $APP_ENV, then
	// "development".
	FrameworkEnv string
	ProjectRoot  string

	// Backtrace overrides the backtrace parsed from the error.
	Backtrace []Frame

	// Environment overrides the process environment. Scrub it before use.
	Environment map[string]any

	// ErrorClass overrides the error's Go type name.
	ErrorClass string
}

// Request is a request-like value exposing its parameters.
type Request interface {
	Params() map[string]any
}

// RequestParams is a Request backed by a plain map.
type RequestParams map[string]any

func (p RequestParams) Params() map[string]any { return p }

type httpRequest struct {
	req *http.Request
}

// HTTPRequest adapts a net/http request. Its parameters are the parsed form
// and query values; keys with a single value map to a string and the rest to
// a sequence of strings.
func HTTPRequest(req *http.Request) Request {
	return httpRequest{req: req}
}

func (r httpRequest) Params() map[string]any {
	if r.req == nil {
		return nil
	}
	// On error ParseForm still leaves whatever it managed to parse in Form.
	_ = r.req.ParseForm()

	params := make(map[string]any, len(r.req.Form))
	for k, vs := range r.req.Form {
		switch len(vs) {
		case 0:
		case 1:
			params[k] = vs[0]
		default:
			params[k] = append([]string(nil), vs...)
		}
	}
	return params
}
