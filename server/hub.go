package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/merliot/marvin"
	"golang.org/x/net/websocket"
)

// UpdateMsg is sent to hub subscribers when a new entry is stored
const UpdateMsg = "ReceiveLogUpdate"

var defaultMaxSubscribers = 200

// defaultWriteTimeout bounds a send to one subscriber, so a viewer that
// stops reading cannot hold up the request that stored the entry
const defaultWriteTimeout = time.Second

// Hub tells websocket subscribers (log viewers) that new entries have
// arrived.  Subscribers fetch the entries themselves from /api/Logs.
type Hub struct {
	mu      rwMutex
	subs    map[*subscriber]bool
	socketQ chan bool
	logger  marvin.Logger
	timeout time.Duration
}

type subscriber struct {
	sync.Mutex
	name string
	conn *websocket.Conn
}

func (s *subscriber) send(msg string, timeout time.Duration) error {
	s.Lock()
	defer s.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	return websocket.Message.Send(s.conn, msg)
}

// NewHub returns a hub allowing up to maxSubscribers at once.  Subscribers
// past the maximum block until others drop.
func NewHub(maxSubscribers int, logger marvin.Logger) *Hub {
	if maxSubscribers <= 0 {
		maxSubscribers = defaultMaxSubscribers
	}
	return &Hub{
		subs:    make(map[*subscriber]bool),
		socketQ: make(chan bool, maxSubscribers),
		logger:  logger,
		timeout: defaultWriteTimeout,
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serv := websocket.Server{Handler: websocket.Handler(h.serve)}
	serv.ServeHTTP(w, r)
}

func (h *Hub) plugin(s *subscriber) {
	// block here when socketQ is full
	h.socketQ <- true

	h.mu.Lock()
	h.subs[s] = true
	h.mu.Unlock()
	h.logger.Debug("Subscriber connected", "name", s.name)
}

func (h *Hub) unplug(s *subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
	h.logger.Debug("Subscriber disconnected", "name", s.name)

	// release one from the socketQ
	<-h.socketQ
}

// Subscribers returns the number of connected subscribers
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) serve(conn *websocket.Conn) {
	s := &subscriber{name: "ws:" + conn.Request().RemoteAddr, conn: conn}
	h.plugin(s)
	defer h.unplug(s)

	// Serve until the subscriber goes away.  Anything received other than
	// a ping is ignored.
	for {
		var msg string
		if err := websocket.Message.Receive(conn, &msg); err != nil {
			return
		}
		if msg == "ping" {
			if err := s.send("pong", h.timeout); err != nil {
				return
			}
		}
	}
}

// Notify sends UpdateMsg to every subscriber at once.  A subscriber that
// cannot be sent to within the write timeout is closed.
func (h *Hub) Notify(marvin.Entry) error {
	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	var wg sync.WaitGroup
	for _, s := range subs {
		wg.Add(1)
		go func(s *subscriber) {
			defer wg.Done()
			if err := s.send(UpdateMsg, h.timeout); err != nil {
				h.logger.Error("Dropping subscriber", "name", s.name, "err", err)
				s.conn.Close()
			}
		}(s)
	}
	wg.Wait()
	return nil
}
