package notify

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/sthembisoo/hoptoad-notifier/toadhopper"
)

const apiKeyEnvVar = "HOPTOAD_API_KEY"

var (
	apiKey        string
	endpoint      string
	errorClass    string
	message       string
	requestURL    string
	component     string
	action        string
	frameworkEnv  string
	plainFilters  []string
	regexpFilters []string
	headers       map[string]string
	verbose       bool
)

func NewCmdNotify() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Post a test notice to Hoptoad",
		Long: `Post a test notice to Hoptoad.

This command will:
1. Build a test error carrying the current stack
2. Filter the process environment with the given filters
3. Post the notice and print the API's response

Examples:
  # Post a test notice
  toadhopper notify --api-key YOUR_API_KEY

  # Post to another endpoint, hiding anything that looks like a secret
  toadhopper notify --endpoint http://errors.example.com/notifier_api/v2/notices \
    --filter PASSWORD --filter-regexp '(?i)secret|token'

  # Identify as a custom notifier
  toadhopper notify -H X-Hoptoad-Client-Name=my-notifier`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return start(cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVarP(&apiKey, "api-key", "k", "", "Hoptoad API key (or set "+apiKeyEnvVar+" env var)")
	cmd.Flags().StringVarP(&endpoint, "endpoint", "e", toadhopper.DefaultEndpoint, "Notices endpoint URL")
	cmd.Flags().StringVar(&errorClass, "class", "TestError", "Error class to report")
	cmd.Flags().StringVarP(&message, "message", "m", "Testing hoptoad via \"toadhopper notify\".", "Error message to report")
	cmd.Flags().StringVar(&requestURL, "url", "", "Request URL to report")
	cmd.Flags().StringVar(&component, "component", "", "Component (controller) to report")
	cmd.Flags().StringVar(&action, "action", "", "Action to report")
	cmd.Flags().StringVar(&frameworkEnv, "framework-env", "", "Framework environment (defaults to $"+toadhopper.FrameworkEnvVar+" or development)")
	cmd.Flags().StringArrayVar(&plainFilters, "filter", nil, "Filter fields whose name contains this text (repeatable)")
	cmd.Flags().StringArrayVar(&regexpFilters, "filter-regexp", nil, "Filter fields whose name matches this regular expression (repeatable)")
	cmd.Flags().StringToStringVarP(&headers, "header", "H", nil, "Extra HTTP header as key=value (repeatable)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")

	return cmd
}

func start(out, errOut io.Writer) error {
	// Get API key
	key := apiKey
	if key == "" {
		key = os.Getenv(apiKeyEnvVar)
	}
	if key == "" {
		return fmt.Errorf("api key required: use --api-key flag or set %s environment variable", apiKeyEnvVar)
	}

	filters, err := buildFilters(plainFilters, regexpFilters)
	if err != nil {
		return err
	}

	notifier := toadhopper.New(key,
		toadhopper.WithEndpoint(endpoint),
		toadhopper.WithLogger(newLogger(errOut)),
	)
	notifier.SetFilters(filters...)

	resp, err := notifier.Post(toadhopper.Wrap(errors.New(message)), toadhopper.Options{
		ErrorClass:   errorClass,
		URL:          requestURL,
		Component:    component,
		Action:       action,
		FrameworkEnv: frameworkEnv,
	}, headers)
	if err != nil {
		return fmt.Errorf("failed to post notice: %w", err)
	}

	fmt.Fprintf(out, "Hoptoad responded with status %d\n", resp.Status())
	for _, e := range resp.Errors() {
		fmt.Fprintf(out, "  error: %s\n", e)
	}

	if resp.Status() < 200 || resp.Status() >= 300 {
		return fmt.Errorf("hoptoad API returned status %d", resp.Status())
	}

	fmt.Fprintln(out, "Test notice posted")
	return nil
}

func buildFilters(plain, expressions []string) ([]toadhopper.Filter, error) {
	filters := lo.Map(plain, func(s string, _ int) toadhopper.Filter {
		return toadhopper.Plain(s)
	})
	for _, expr := range expressions {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid filter regexp %q: %w", expr, err)
		}
		filters = append(filters, toadhopper.Regexp(re))
	}
	return filters, nil
}

func newLogger(w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).
		Level(level).
		With().
		Timestamp().
		Str("component", "toadhopper").
		Logger()
}
