// Package logapi submits log entries from a device to a remote log API.
//
// A Client sends one entry per call with a short timeout and no retries.
// Post and Get report failures to the caller; SendLog is the fire-and-forget
// form for call sites that must never be disturbed by logging.
package logapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/merliot/marvin"
	"github.com/merliot/marvin/percent"
)

// DefaultTimeout bounds each request unless Config.Timeout is set
const DefaultTimeout = 2 * time.Second

// Config describes where and how a Client submits entries
type Config struct {
	// URL of the log endpoint, e.g. "http://192.168.1.10:4200/api/Log/"
	URL string `yaml:"url"`
	// Sender is used for entries without one.  Defaults to the hostname.
	Sender string `yaml:"sender"`
	// Timeout of each request.  Defaults to DefaultTimeout.
	Timeout time.Duration `yaml:"timeout"`
	// PlainMessage sends Message as-is instead of percent-encoded.
	PlainMessage bool `yaml:"plain_message"`
	// APIKey, if set, is sent as the X-API-Key header
	APIKey string `yaml:"api_key"`
}

// Client submits log entries to a log API
type Client struct {
	cfg    Config
	base   *url.URL
	http   *http.Client
	logger marvin.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.  The client's Timeout is
// left alone.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets where SendLog reports failures.  Default: marvin.Console.
func WithLogger(l marvin.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a Client for cfg.  An unparsable cfg.URL is not an error
// here; every request on the Client fails with it instead.
func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Sender == "" {
		cfg.Sender, _ = os.Hostname()
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: marvin.Console{},
	}
	c.base, _ = url.Parse(cfg.URL)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the client's effective configuration
func (c *Client) Config() Config {
	return c.cfg
}

// outbound returns the entry as it goes on the wire: defaults filled and,
// unless PlainMessage is set, Message percent-encoded.  e is a copy; the
// caller's entry is never modified.
func (c *Client) outbound(e marvin.Entry) marvin.Entry {
	if e.LogType == "" {
		e.LogType = marvin.DefaultLogType
	}
	if e.Sender == "" {
		e.Sender = c.cfg.Sender
	}
	if !c.cfg.PlainMessage {
		e.Message = percent.Encode(e.Message)
	}
	return e
}

// Post sends e as a JSON body to the log endpoint.  The response must be
// 2xx and valid JSON; its content is discarded.
func (c *Client) Post(ctx context.Context, e marvin.Entry) error {
	body, err := json.Marshal(c.outbound(e))
	if err != nil {
		return &Error{Op: "marshal", Err: err}
	}
	if c.base == nil {
		return &Error{Op: "request", Err: fmt.Errorf("invalid log URL %q", c.cfg.URL)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base.String(), bytes.NewReader(body))
	if err != nil {
		return &Error{Op: "request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, discardJSON)
}

// Get sends e with the GET form: the JSON entry, percent-encoded, is
// appended to the log endpoint URL.  For boards whose HTTP stack has no
// usable POST.
func (c *Client) Get(ctx context.Context, e marvin.Entry) error {
	body, err := json.Marshal(c.outbound(e))
	if err != nil {
		return &Error{Op: "marshal", Err: err}
	}
	if c.base == nil {
		return &Error{Op: "request", Err: fmt.Errorf("invalid log URL %q", c.cfg.URL)}
	}
	u := c.base.String() + percent.Encode(string(body))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &Error{Op: "request", Err: err}
	}
	return c.do(req, discardJSON)
}

// Echo asks the log API to echo message back.  Useful to check the
// network path end to end.
func (c *Client) Echo(ctx context.Context, message string) (string, error) {
	var echoed string
	err := c.getSibling(ctx, "Echo/"+url.PathEscape(message), func(body []byte) error {
		echoed = string(body)
		return nil
	})
	return echoed, err
}

// LocalTime asks the log API for its local time.  Boards without a
// real-time clock use it to set the date at boot.
func (c *Client) LocalTime(ctx context.Context) (time.Time, error) {
	var t time.Time
	err := c.getSibling(ctx, "GetLocalTime", func(body []byte) error {
		var err error
		t, err = time.Parse(time.RFC3339Nano, strings.TrimSpace(string(body)))
		return err
	})
	return t, err
}

// getSibling issues a GET for an endpoint next to the log endpoint: with
// URL "http://host/api/Log/", ref "Echo/x" is "http://host/api/Echo/x".
func (c *Client) getSibling(ctx context.Context, ref string, read func([]byte) error) error {
	if c.base == nil {
		return &Error{Op: "request", Err: fmt.Errorf("invalid log URL %q", c.cfg.URL)}
	}
	rel, err := url.Parse("../" + ref)
	if err != nil {
		return &Error{Op: "request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.ResolveReference(rel).String(), nil)
	if err != nil {
		return &Error{Op: "request", Err: err}
	}
	return c.do(req, read)
}

const maxResponse = 64 << 10

func (c *Client) do(req *http.Request, read func([]byte) error) error {
	if c.cfg.APIKey != "" {
		req.Header.Set("X-API-Key", c.cfg.APIKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: "send", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return &Error{Op: "read", StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Op: "status", StatusCode: resp.StatusCode, Body: truncate(body)}
	}
	if err := read(body); err != nil {
		return &Error{Op: "decode", StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}

func discardJSON(body []byte) error {
	var v any
	return json.Unmarshal(body, &v)
}

func truncate(body []byte) string {
	if len(body) > 512 {
		body = body[:512]
	}
	return string(body)
}

// SendLog posts e and swallows any failure, printing one error line to the
// client's logger.  Logging must never break the caller, so SendLog always
// returns normally.
func (c *Client) SendLog(ctx context.Context, e marvin.Entry) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Error sending log", "panic", r)
		}
	}()
	if err := c.Post(ctx, e); err != nil {
		c.logger.Error("Error sending log", "err", err)
		return
	}
	c.logger.Debug("Log sent", "url", c.cfg.URL)
}
