package gateway

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StreamState is the connection state of a SpendStream. There are only two:
// the stream either holds a live connection or it does not. Retry scheduling
// is not a state; it is a pending timer on a disconnected stream.
type StreamState int

const (
	StreamDisconnected StreamState = iota
	StreamConnected
)

func (s StreamState) String() string {
	if s == StreamConnected {
		return "connected"
	}
	return "disconnected"
}

// defaultReconnectDelay is the fixed wait before redialing after any error
// or dropped connection. No backoff growth, no retry cap: the proxy is a
// first-party service and the stream is cheap to hold open.
const defaultReconnectDelay = 5 * time.Second

// SpendStream consumes the proxy's server-sent-events spend feed and pushes
// the running total into a callback. It holds at most one connection;
// Connect while connected is a no-op. After any failure it redials on a
// fixed delay until Close, which cancels the connection and any pending
// redial deterministically.
type SpendStream struct {
	url      string
	token    string
	httpc    *http.Client
	log      *zap.Logger
	delay    time.Duration
	onUpdate func(totalSpend float64)

	mu      sync.Mutex
	state   StreamState
	running bool
	closed  bool
	cancel  context.CancelFunc
	timer   *time.Timer

	wg sync.WaitGroup
}

// StreamOption customizes a SpendStream.
type StreamOption func(*SpendStream)

// StreamReconnectDelay overrides the fixed redial delay. Tests shorten it.
func StreamReconnectDelay(d time.Duration) StreamOption {
	return func(s *SpendStream) { s.delay = d }
}

// SpendStream creates a stream client for this proxy. onUpdate is invoked
// from the stream goroutine each time the backend reports a new total.
func (c *Client) SpendStream(onUpdate func(totalSpend float64), opts ...StreamOption) *SpendStream {
	s := &SpendStream{
		url:   c.baseURL + "/global/spend/stream",
		token: c.token,
		// A fresh client without the request timeout: the stream body is
		// intentionally long-lived and must not be cut off mid-read.
		httpc:    &http.Client{Transport: c.httpc.Transport},
		log:      c.log,
		delay:    defaultReconnectDelay,
		onUpdate: onUpdate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect starts the stream if it is not already running. Safe to call at
// any time from any goroutine; after Close it does nothing.
func (s *SpendStream) Connect() {
	s.mu.Lock()
	if s.closed || s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(ctx)
}

// Close tears the stream down: the live connection (if any) is cancelled
// and any pending reconnect timer is stopped. No reconnect fires after
// Close returns.
func (s *SpendStream) Close() {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.state = StreamDisconnected
	s.mu.Unlock()

	s.wg.Wait()
}

// State returns the current connection state.
func (s *SpendStream) State() StreamState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *SpendStream) run(ctx context.Context) {
	defer s.wg.Done()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		s.log.Error("spend stream: build request failed", zap.Error(err))
		s.disconnected()
		return
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.httpc.Do(req)
	if err != nil {
		s.log.Warn("spend stream: connect failed", zap.Error(err))
		s.disconnected()
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.Warn("spend stream: unexpected status", zap.Int("status", resp.StatusCode))
		s.disconnected()
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state = StreamConnected
	s.mu.Unlock()
	s.log.Info("spend stream connected")

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		s.handleMessage(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		s.log.Warn("spend stream: read error", zap.Error(err))
	}
	s.disconnected()
}

// handleMessage parses one event payload. Only {"type":"update"} envelopes
// carrying a numeric total_spend move the tracked value; everything else is
// logged at debug and dropped.
func (s *SpendStream) handleMessage(payload string) {
	var env struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		s.log.Debug("spend stream: malformed event", zap.Error(err))
		return
	}
	if env.Type != "update" {
		s.log.Debug("spend stream: ignoring event", zap.String("type", env.Type))
		return
	}

	var data struct {
		TotalSpend *float64 `json:"total_spend"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.TotalSpend == nil {
		s.log.Debug("spend stream: update without numeric total_spend")
		return
	}
	s.onUpdate(*data.TotalSpend)
}

// disconnected records the drop and, unless the stream has been closed,
// schedules a reconnect attempt after the fixed delay. The timer handle is
// kept so Close can cancel it.
func (s *SpendStream) disconnected() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StreamDisconnected
	s.running = false
	if s.closed {
		return
	}
	s.log.Info("spend stream disconnected; reconnecting", zap.Duration("delay", s.delay))
	s.timer = time.AfterFunc(s.delay, s.Connect)
}
