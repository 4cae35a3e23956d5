package asksqlctl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdout     io.Writer
	Stderr     io.Writer
}

// requestError marks failures after argument parsing succeeded; they exit 1
// while usage mistakes exit 2.
type requestError struct {
	err error
}

func (e requestError) Error() string { return e.err.Error() }

func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	root := newRootCommand(defaults, stdout)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	_, _ = fmt.Fprintln(stderr, err.Error())
	var reqErr requestError
	if errors.As(err, &reqErr) {
		return 1
	}
	_, _ = fmt.Fprintln(stderr, "")
	_, _ = fmt.Fprint(stderr, root.UsageString())
	return 2
}

func newRootCommand(defaults Options, stdout io.Writer) *cobra.Command {
	var baseURL string
	var timeout time.Duration

	root := &cobra.Command{
		Use:           "asksqlctl",
		Short:         "Command-line client for the asksql API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&baseURL, "base-url", firstNonEmpty(defaults.BaseURL, "http://localhost:8080"), "asksql API base URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", durationOr(defaults.Timeout, 90*time.Second), "HTTP timeout (e.g. 30s)")

	call := func(cmd *cobra.Command, method, path string, body any) error {
		client := defaults.HTTPClient
		if client == nil {
			client = &http.Client{Timeout: timeout}
		}
		endpoint := strings.TrimRight(baseURL, "/") + path
		code, responseBody, err := doRequest(cmd.Context(), client, method, endpoint, body)
		if err != nil {
			return requestError{fmt.Errorf("request failed: %w", err)}
		}
		if code >= 400 {
			return requestError{fmt.Errorf("http %d: %s", code, strings.TrimSpace(string(responseBody)))}
		}
		writeBody(stdout, responseBody)
		return nil
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "ask <question...>",
			Short: "POST /v1/ask",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				question := strings.TrimSpace(strings.Join(args, " "))
				if question == "" {
					return fmt.Errorf("question is required")
				}
				return call(cmd, http.MethodPost, "/v1/ask", map[string]string{"question": question})
			},
		},
		&cobra.Command{
			Use:   "health",
			Short: "GET /v1/health",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return call(cmd, http.MethodGet, "/v1/health", nil)
			},
		},
		&cobra.Command{
			Use:   "ready",
			Short: "GET /v1/ready",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return call(cmd, http.MethodGet, "/v1/ready", nil)
			},
		},
	)
	root.RunE = func(*cobra.Command, []string) error {
		return fmt.Errorf("a command is required")
	}
	return root
}

func doRequest(ctx context.Context, client *http.Client, method, url string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, responseBody, nil
}

func writeBody(w io.Writer, raw []byte) {
	if pretty, ok := prettyJSON(raw); ok {
		_, _ = fmt.Fprintln(w, pretty)
		return
	}
	if len(raw) > 0 {
		_, _ = fmt.Fprintln(w, string(raw))
	}
}

// prettyJSON indents raw bytes in place so object key order and number
// literals survive exactly as the server wrote them.
func prettyJSON(raw []byte) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", "  "); err != nil {
		return "", false
	}
	return buf.String(), true
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

func durationOr(value, fallback time.Duration) time.Duration {
	if value > 0 {
		return value
	}
	return fallback
}
