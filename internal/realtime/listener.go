package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Bdsolutionconsulting/linkhood/internal/retry"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Channel is the NOTIFY channel the change trigger publishes on.
const Channel = "linkhood_changes"

type notificationConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

var connect = func(ctx context.Context, url string) (notificationConn, error) {
	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Listener holds a dedicated connection on LISTEN and republishes every
// notification into a Hub, reconnecting when the connection drops.
type Listener struct {
	url    string
	hub    *Hub
	policy retry.Policy
}

func NewListener(url string, hub *Hub, policy retry.Policy) *Listener {
	return &Listener{url: url, hub: hub, policy: policy}
}

// Run blocks until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		slog.Error("realtime listener disconnected", "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.policy.Delay):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	var conn notificationConn
	err := l.policy.Do(ctx, "realtime_connect", func(ctx context.Context) error {
		c, err := connect(ctx, l.url)
		if err != nil {
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{Channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	slog.Info("realtime listener started", "resource", Channel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		change, err := DecodeChange(n.Payload)
		if err != nil {
			slog.Warn("realtime payload ignored", "error", err)
			continue
		}
		l.hub.Publish(change)
	}
}

// DecodeChange parses the JSON payload written by the change trigger.
func DecodeChange(payload string) (Change, error) {
	var c Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return Change{}, fmt.Errorf("decode change: %w", err)
	}
	if c.Table == "" || c.Type == "" {
		return Change{}, errors.New("decode change: table and type are required")
	}
	return c, nil
}
