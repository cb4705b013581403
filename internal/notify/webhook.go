// Package notify forwards a subset of the engine's event stream to an
// external reporting or portfolio-analytics service over HTTP, the way the
// teacher's exchange.Client posts orders to Polymarket — rate-limited,
// retried on 5xx, and driven by a background worker so a slow or
// unreachable endpoint never blocks the engine's own OnEvent call.
package notify

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"simvenue/pkg/events"
)

const (
	queueSize          = 256
	bucketCapacity     = 50
	bucketRatePerSec   = 10
	requestTimeout     = 10 * time.Second
	retryCount         = 3
	retryWaitTime      = 500 * time.Millisecond
	retryMaxWaitTime   = 5 * time.Second
)

// Webhook forwards AccountState, PositionOpened, and PositionClosed events
// to a configured URL as POST requests. A zero-value url disables
// forwarding entirely — OnEvent becomes a no-op so callers can construct a
// Webhook unconditionally and wire it into an events.MultiBus.
type Webhook struct {
	http   *resty.Client
	rl     *TokenBucket
	url    string
	queue  chan events.Event
	logger *slog.Logger
}

// NewWebhook creates a Webhook posting to url. Pass an empty url to disable
// forwarding while still satisfying the events.Bus interface.
func NewWebhook(url string, logger *slog.Logger) *Webhook {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Webhook{
		http: resty.New().
			SetTimeout(requestTimeout).
			SetRetryCount(retryCount).
			SetRetryWaitTime(retryWaitTime).
			SetRetryMaxWaitTime(retryMaxWaitTime).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				if err != nil {
					return true
				}
				return r.StatusCode() >= 500
			}).
			SetHeader("Content-Type", "application/json"),
		rl:     NewTokenBucket(bucketCapacity, bucketRatePerSec),
		url:    url,
		queue:  make(chan events.Event, queueSize),
		logger: logger.With("component", "notify_webhook"),
	}
	go w.run()
	return w
}

// OnEvent enqueues e for delivery if it is a forwarded kind and forwarding
// is enabled. Never blocks: a full queue drops the event with a warning,
// the same backpressure policy the teacher's WS feed channels use.
func (w *Webhook) OnEvent(e events.Event) {
	if w.url == "" {
		return
	}
	switch e.(type) {
	case events.AccountState, events.PositionOpened, events.PositionClosed:
	default:
		return
	}
	select {
	case w.queue <- e:
	default:
		w.logger.Warn("webhook queue full, dropping event", "type", e.EventType())
	}
}

// Close stops the background worker once the queue drains. Safe to call
// once after the driving loop has stopped submitting events.
func (w *Webhook) Close() error {
	close(w.queue)
	return nil
}

func (w *Webhook) run() {
	for e := range w.queue {
		w.post(e)
	}
}

func (w *Webhook) post(e events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := w.rl.Wait(ctx); err != nil {
		w.logger.Warn("webhook rate limit wait cancelled", "error", err)
		return
	}

	resp, err := w.http.R().
		SetContext(ctx).
		SetBody(e.ToDict()).
		Post(w.url)
	if err != nil {
		w.logger.Error("webhook post failed", "type", e.EventType(), "error", err)
		return
	}
	if resp.StatusCode() >= http.StatusMultipleChoices {
		w.logger.Error("webhook post rejected", "type", e.EventType(), "status", resp.StatusCode())
	}
}
