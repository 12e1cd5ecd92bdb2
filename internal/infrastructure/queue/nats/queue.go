// Package nats carries document-ingested events from the API to the workers.
package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/judgment-assistant/internal/infrastructure/resilience"
)

const DefaultQueueGroup = "workers"

type Queue struct {
	conn       *nats.Conn
	subject    string
	queueGroup string
	executor   *resilience.Executor
	logger     *slog.Logger
	onLag      func(time.Duration)
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	QueueGroup           string
	ResilienceExecutor   *resilience.Executor
	Logger               *slog.Logger
	// OnLag receives the time between publish and delivery of each event.
	OnLag func(time.Duration)
}

// event is the wire payload. Bare document ids from older publishers are still accepted.
type event struct {
	DocumentID string    `json:"document_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

func New(url, subject string) (*Queue, error) {
	return NewWithOptions(url, subject, Options{})
}

func NewWithOptions(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	group := options.QueueGroup
	if group == "" {
		group = DefaultQueueGroup
	}

	conn, err := nats.Connect(
		url,
		nats.Name("judgment-assistant"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:       conn,
		subject:    subject,
		queueGroup: group,
		executor:   options.ResilienceExecutor,
		logger:     logger,
		onLag:      options.OnLag,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishDocumentIngested(ctx context.Context, documentID string) error {
	payload, err := encodeEvent(documentID, time.Now().UTC())
	if err != nil {
		return err
	}
	call := func(_ context.Context) error {
		if err := q.conn.Publish(q.subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return wrapTemporaryIfNeeded(err)
	}
	return nil
}

// SubscribeDocumentIngested joins the worker queue group and blocks until ctx is done,
// then drains in-flight messages.
func (q *Queue) SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, q.queueGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		ev, err := decodeEvent(msg.Data)
		if err != nil {
			q.logger.Error("nats_event_invalid", "error", err)
			return
		}
		if q.onLag != nil && !ev.EnqueuedAt.IsZero() {
			q.onLag(time.Since(ev.EnqueuedAt))
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, ev.DocumentID); err != nil {
			q.logger.Error("worker_handler_failed", "document_id", ev.DocumentID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func encodeEvent(documentID string, at time.Time) ([]byte, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, errors.New("nats publish: empty document id")
	}
	payload, err := json.Marshal(event{DocumentID: documentID, EnqueuedAt: at})
	if err != nil {
		return nil, fmt.Errorf("marshal nats event: %w", err)
	}
	return payload, nil
}

func decodeEvent(data []byte) (event, error) {
	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return event{}, errors.New("empty event")
	}
	if !strings.HasPrefix(raw, "{") {
		return event{DocumentID: raw}, nil
	}
	var ev event
	if err := json.Unmarshal(data, &ev); err != nil {
		return event{}, fmt.Errorf("unmarshal nats event: %w", err)
	}
	if ev.DocumentID == "" {
		return event{}, errors.New("event without document id")
	}
	return ev, nil
}
