package toadhopper

import (
	"os"

	"github.com/samber/lo"
)

const (
	// Version of this notifier, reported in every notice.
	Version = "0.10.0"

	DefaultNotifierName = "toadhopper"
	DefaultNotifierURL  = "https://github.com/sthembisoo/hoptoad-notifier"
	DefaultURL          = "http://localhost/"
	DefaultFrameworkEnv = "development"

	// FrameworkEnvVar names the variable holding the deployment stage.
	FrameworkEnvVar = "APP_ENV"
)

// Notice is the assembled and filtered data of one error report.
type Notice struct {
	APIKey string

	ErrorClass   string
	ErrorMessage string
	Backtrace    []Frame

	URL       string
	Component string
	Action    string
	// Params is nil when the notice has no request.
	Params map[string]any

	NotifierName    string
	NotifierVersion string
	NotifierURL     string

	Session      map[string]any
	Environment  map[string]any
	FrameworkEnv string
	ProjectRoot  string
}

// Notice assembles the notice Post would send for err, with defaults applied
// and sensitive fields filtered.
func (n *Notifier) Notice(err error, opts Options) *Notice {
	return n.assemble(err, opts)
}

func (n *Notifier) assemble(err error, opts Options) *Notice {
	filters := filterSet(n.Filters())

	notice := &Notice{
		APIKey:          n.apiKey,
		ErrorClass:      lo.CoalesceOrEmpty(opts.ErrorClass, errorClass(err)),
		URL:             lo.CoalesceOrEmpty(opts.URL, DefaultURL),
		Component:       lo.CoalesceOrEmpty(opts.Component, DefaultURL),
		Action:          opts.Action,
		NotifierName:    lo.CoalesceOrEmpty(opts.NotifierName, DefaultNotifierName),
		NotifierVersion: lo.CoalesceOrEmpty(opts.NotifierVersion, Version),
		NotifierURL:     lo.CoalesceOrEmpty(opts.NotifierURL, DefaultNotifierURL),
		FrameworkEnv:    lo.CoalesceOrEmpty(opts.FrameworkEnv, n.frameworkEnv()),
		ProjectRoot:     lo.CoalesceOrEmpty(opts.ProjectRoot, n.projectRoot()),
	}
	if err != nil {
		notice.ErrorMessage = err.Error()
	}

	notice.Backtrace = opts.Backtrace
	if notice.Backtrace == nil {
		lines, ok := backtraceOf(err)
		if !ok {
			lines = callers(2)
		}
		frames, malformed := parseBacktrace(lines)
		for _, line := range malformed {
			n.logger.Debug().Str("line", line).Msg("skipping malformed backtrace line")
		}
		notice.Backtrace = frames
	}

	notice.Session = filters.clean(opts.Session)

	if opts.Environment != nil {
		notice.Environment = filters.clean(opts.Environment)
	} else {
		notice.Environment = filters.clean(lo.MapValues(n.env.All(), func(v string, _ string) any {
			return v
		}))
	}

	if opts.Request != nil {
		if params := opts.Request.Params(); params != nil {
			notice.Params = filters.clean(params)
		}
	}

	return notice
}

func (n *Notifier) frameworkEnv() string {
	if v, ok := n.env.Lookup(FrameworkEnvVar); ok && v != "" {
		return v
	}
	return DefaultFrameworkEnv
}

func (n *Notifier) projectRoot() string {
	if n.projectRootDir != "" {
		return n.projectRootDir
	}
	wd, err := os.Getwd()
	if err != nil {
		n.logger.Debug().Err(err).Msg("unable to determine project root")
		return ""
	}
	return wd
}
