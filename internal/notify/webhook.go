package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/baduk-clock/internal/obslog"
)

// Webhook POSTs each cue event as JSON to a fixed URL. Delivery is
// best-effort and asynchronous: the clock loop never waits on the wire.
type Webhook struct {
	url     string
	http    *fasthttp.Client
	timeout time.Duration
	retry   int
	queue   chan Event
}

type WebhookOption func(*Webhook)

func WithTimeout(d time.Duration) WebhookOption {
	return func(w *Webhook) { w.timeout = d }
}

func WithRetry(max int) WebhookOption {
	return func(w *Webhook) { w.retry = max }
}

func NewWebhook(url string, opts ...WebhookOption) (*Webhook, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("webhook url required")
	}
	w := &Webhook{
		url:     strings.TrimSpace(url),
		http:    &fasthttp.Client{ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second, MaxConnsPerHost: 16},
		timeout: 5 * time.Second,
		retry:   2,
		queue:   make(chan Event, 256),
	}
	for _, opt := range opts {
		opt(w)
	}
	go w.drain()
	return w, nil
}

func (w *Webhook) Notify(_ context.Context, ev Event) {
	select {
	case w.queue <- ev:
	default:
		// 큐가 가득 차면 버린다: 소리 신호는 지연 재생보다 누락이 낫다.
		obslog.L().Warn("webhook_queue_full", zap.String("cue", string(ev.Cue)), zap.String("game_id", ev.GameID))
	}
}

// Close stops the drain loop after the queue empties.
func (w *Webhook) Close() {
	close(w.queue)
}

func (w *Webhook) drain() {
	for ev := range w.queue {
		if err := w.post(ev); err != nil {
			obslog.L().Warn("webhook_post_error",
				zap.String("cue", string(ev.Cue)),
				zap.String("game_id", ev.GameID),
				zap.Error(err),
			)
		}
	}
}

func (w *Webhook) post(ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodPost)
	req.SetRequestURI(w.url)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	attempts := w.retry + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := w.http.DoDeadline(req, resp, time.Now().Add(w.timeout))
		if err == nil {
			status := resp.StatusCode()
			if status >= 200 && status < 300 {
				return nil
			}
			lastErr = fmt.Errorf("webhook status=%d", status)
			if !shouldRetryStatus(status) {
				return lastErr
			}
		} else {
			lastErr = err
		}
		if attempt < attempts {
			time.Sleep(backoffDuration(attempt))
		}
	}
	return lastErr
}

func shouldRetryStatus(status int) bool {
	return status == fasthttp.StatusTooManyRequests || status >= 500
}

func backoffDuration(attempt int) time.Duration {
	d := time.Duration(attempt) * 200 * time.Millisecond
	if d > 2*time.Second {
		d = 2 * time.Second
	}
	return d
}
