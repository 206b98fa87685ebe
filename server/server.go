// Package server is the log API that devices submit entries to.
//
// Devices are not expected to handle errors, so failures after an entry
// has been accepted (storing, notifying) are logged and never change the
// response.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/merliot/marvin"
)

// Config of the log API
type Config struct {
	Addr     string `yaml:"addr"`
	APIKey   string `yaml:"api_key"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	TimeZone string `yaml:"time_zone"`
	Capacity int    `yaml:"capacity"`
	// Apps maps an app name to a fixed sender: entries sent to
	// GET /api/Log/{app}/{message} get that sender.
	Apps           map[string]string `yaml:"apps"`
	MaxSubscribers int               `yaml:"max_subscribers"`
	MQTT           MQTTConfig        `yaml:"mqtt"`
	TLSHosts       []string          `yaml:"tls_hosts"`
}

// DefaultAddr is where the log API listens unless Config.Addr is set
const DefaultAddr = ":4200"

const maxBody = 64 << 10

// Notifier is told about every stored entry
type Notifier interface {
	Notify(marvin.Entry) error
}

// Server is the log API
type Server struct {
	http.Server
	cfg       Config
	store     *Store
	hub       *Hub
	notifiers []Notifier
	loc       *time.Location
	logger    marvin.Logger
	now       func() time.Time
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server logger.  Default: marvin.Console.
func WithLogger(l marvin.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithNotifier adds n to the notifiers told about stored entries
func WithNotifier(n Notifier) Option {
	return func(s *Server) { s.notifiers = append(s.notifiers, n) }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New returns a log API server for cfg.  The websocket hub is always a
// notifier.
func New(cfg Config, opts ...Option) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	loc := time.Local
	if cfg.TimeZone != "" {
		var err error
		if loc, err = time.LoadLocation(cfg.TimeZone); err != nil {
			return nil, fmt.Errorf("time zone: %w", err)
		}
	}

	s := &Server{
		cfg:    cfg,
		store:  NewStore(cfg.Capacity),
		loc:    loc,
		logger: marvin.Console{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = NewHub(cfg.MaxSubscribers, s.logger)
	s.notifiers = append([]Notifier{s.hub}, s.notifiers...)

	s.Addr = cfg.Addr
	s.Handler = s.basicAuth(s.routes())
	return s, nil
}

// Store returns the server's entry store
func (s *Server) Store() *Store {
	return s.store
}

// Hub returns the server's websocket hub
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/Log/{$}", s.postLog)
	mux.HandleFunc("POST /api/LogEx/{$}", s.postLogEx)
	mux.HandleFunc("GET /api/Log/{message}", s.getLog)
	mux.HandleFunc("GET /api/Log/{app}/{message}", s.getAppLog)
	mux.HandleFunc("GET /api/Echo/{message}", s.echo)
	mux.HandleFunc("GET /api/GetLocalTime", s.localTime)
	mux.HandleFunc("GET /api/LogCount", s.logCount)
	mux.HandleFunc("GET /api/Logs", s.logs)
	mux.HandleFunc("DELETE /api/Logs", s.deleteLogs)
	mux.HandleFunc("GET /api/protected", s.requireAPIKey(s.protected))
	mux.Handle("GET /loghub", s.hub)
	return mux
}

// accept completes e with the caller's address, receive time and
// defaults, then stores it and tells the notifiers
func (s *Server) accept(r *http.Request, e marvin.Entry, sender string) marvin.Entry {
	e.IPAddress = remoteIP(r)
	if e.LogDate == nil {
		now := s.now()
		e.LogDate = &now
	}
	if sender != "" {
		e.Sender = sender
	}
	if e.LogType == "" {
		e.LogType = marvin.DefaultLogType
	}

	e = s.store.Add(e)
	s.logger.Info("Log", "id", e.Id, "type", e.LogType, "sender", e.Sender, "ip", e.IPAddress)

	for _, n := range s.notifiers {
		if err := n.Notify(e); err != nil {
			s.logger.Error("Notify failed", "err", err)
		}
	}
	return e
}

func (s *Server) postLog(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		problem(w, http.StatusInternalServerError, err.Error())
		return
	}
	e := s.accept(r, marvin.LoadEntryIn(string(body), s.loc), "")
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) postLogEx(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		problem(w, http.StatusInternalServerError, err.Error())
		return
	}
	e, err := marvin.UnmarshalEntry(body, s.loc)
	if err != nil {
		problem(w, http.StatusBadRequest, "invalid log entry: "+err.Error())
		return
	}
	e = s.accept(r, e, "")
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) getLog(w http.ResponseWriter, r *http.Request) {
	e := s.accept(r, marvin.LoadEntryIn(r.PathValue("message"), s.loc), "")
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) getAppLog(w http.ResponseWriter, r *http.Request) {
	app := r.PathValue("app")
	sender, ok := s.cfg.Apps[app]
	if !ok {
		problem(w, http.StatusNotFound, "unknown app "+app)
		return
	}
	e := s.accept(r, marvin.LoadEntryIn(r.PathValue("message"), s.loc), sender)
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) echo(w http.ResponseWriter, r *http.Request) {
	writeText(w, r.PathValue("message"))
}

func (s *Server) localTime(w http.ResponseWriter, r *http.Request) {
	writeText(w, s.now().In(s.loc).Format(time.RFC3339Nano))
}

func (s *Server) logCount(w http.ResponseWriter, r *http.Request) {
	writeText(w, fmt.Sprintf("Database LogEntries Count: %d", s.store.Count()))
}

// logs lists entries newest first.  Query parameters:
//
//	message, sender	case-insensitive substring filters
//	distinct	latest entry per IP address and sender only
//	n		at most n entries
func (s *Server) logs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filter{
		Message: q.Get("message"),
		Sender:  q.Get("sender"),
	}
	if v := q.Get("distinct"); v != "" {
		distinct, err := strconv.ParseBool(v)
		if err != nil {
			problem(w, http.StatusBadRequest, "invalid distinct: "+v)
			return
		}
		f.Distinct = distinct
	}
	if v := q.Get("n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			problem(w, http.StatusBadRequest, "invalid n: "+v)
			return
		}
		f.N = n
	}
	writeJSON(w, http.StatusOK, s.store.Query(f))
}

func (s *Server) deleteLogs(w http.ResponseWriter, r *http.Request) {
	n := s.store.Clear()
	s.logger.Info("Logs deleted", "count", n, "ip", remoteIP(r))
	// viewers reload and find the store empty
	s.hub.Notify(marvin.Entry{})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) protected(w http.ResponseWriter, r *http.Request) {
	writeText(w, "This endpoint is protected by API Key")
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, text)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// problem writes an RFC 7807 problem response
func problem(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(struct {
		Title  string `json:"title"`
		Status int    `json:"status"`
		Detail string `json:"detail,omitempty"`
	}{http.StatusText(status), status, detail})
}
