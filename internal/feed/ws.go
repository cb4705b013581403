// ws.go implements a WebSocket TickCommandSource that decodes the same
// NDJSON envelope as FileSource, for driving the engine from an external
// replay server instead of a local file. Reconnect/backoff logic is
// adapted from the teacher's market-data feed.
package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"simvenue/pkg/instrument"
)

const (
	wsReadTimeout      = 90 * time.Second
	wsMaxReconnectWait = 30 * time.Second
	wsItemBufferSize   = 256
)

type decodedItem struct {
	item Item
	err  error
}

// WSSource connects to a NDJSON-over-WebSocket replay endpoint and exposes
// the decoded stream through the same TickCommandSource interface as
// FileSource. It reconnects with exponential backoff (1s up to 30s) on any
// read failure, the way the teacher's market feed does.
type WSSource struct {
	url      string
	registry *instrument.Registry
	venue    string
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	items  chan decodedItem
}

// NewWSSource dials url in the background and begins decoding incoming
// lines. Call Next to consume them in order; Close stops the connection.
func NewWSSource(ctx context.Context, url string, registry *instrument.Registry, venue string, logger *slog.Logger) *WSSource {
	if logger == nil {
		logger = slog.Default()
	}
	runCtx, cancel := context.WithCancel(ctx)
	s := &WSSource{
		url:      url,
		registry: registry,
		venue:    venue,
		logger:   logger.With("component", "feed_ws"),
		ctx:      runCtx,
		cancel:   cancel,
		items:    make(chan decodedItem, wsItemBufferSize),
	}
	go s.run()
	return s
}

// Next blocks until a decoded item, a decode error, or source shutdown
// (io.EOF) is available.
func (s *WSSource) Next() (Item, error) {
	di, ok := <-s.items
	if !ok {
		return nil, io.EOF
	}
	if di.err != nil {
		return nil, di.err
	}
	return di.item, nil
}

// Close stops the background connection and unblocks any pending Next call.
func (s *WSSource) Close() error {
	s.cancel()
	return nil
}

func (s *WSSource) run() {
	defer close(s.items)

	backoff := time.Second
	for {
		err := s.connectAndRead()
		if s.ctx.Err() != nil {
			return
		}

		s.logger.Warn("feed websocket disconnected, reconnecting", "error", err, "backoff", backoff)

		select {
		case <-s.ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > wsMaxReconnectWait {
			backoff = wsMaxReconnectWait
		}
	}
}

func (s *WSSource) connectAndRead() error {
	conn, _, err := websocket.DefaultDialer.DialContext(s.ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	s.logger.Info("feed websocket connected", "url", s.url)

	for {
		if s.ctx.Err() != nil {
			return s.ctx.Err()
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		_, line, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if len(line) == 0 {
			continue
		}

		item, decodeErr := decodeLine(line, s.registry, s.venue)
		select {
		case s.items <- decodedItem{item: item, err: decodeErr}:
		case <-s.ctx.Done():
			return s.ctx.Err()
		}
	}
}
