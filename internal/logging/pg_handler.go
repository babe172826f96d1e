package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"os"
	"sync"
	"time"

	"github.com/Bdsolutionconsulting/linkhood/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const batchSize = 50

// PGHandler is an slog.Handler that batches ERROR+ logs to PostgreSQL.
type PGHandler struct {
	db    *gorm.DB
	attrs []slog.Attr
	sink  *batch
}

type batch struct {
	mu      sync.Mutex
	buffer  []models.SystemLog
	ticker  *time.Ticker
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

func NewPGHandler(db *gorm.DB) *PGHandler {
	h := &PGHandler{
		db: db,
		sink: &batch{
			buffer:  make([]models.SystemLog, 0, batchSize),
			ticker:  time.NewTicker(5 * time.Second),
			done:    make(chan struct{}),
			stopped: make(chan struct{}),
		},
	}
	go h.flushLoop()
	return h
}

func (h *PGHandler) flushLoop() {
	defer close(h.sink.stopped)
	for {
		select {
		case <-h.sink.ticker.C:
			h.flush()
		case <-h.sink.done:
			h.flush()
			return
		}
	}
}

func (h *PGHandler) flush() {
	h.sink.mu.Lock()
	if len(h.sink.buffer) == 0 {
		h.sink.mu.Unlock()
		return
	}
	entries := h.sink.buffer
	h.sink.buffer = make([]models.SystemLog, 0, batchSize)
	h.sink.mu.Unlock()

	if err := h.db.CreateInBatches(entries, batchSize).Error; err != nil {
		// Must not go through slog: the record would come straight back here.
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Warn("failed to flush system logs to DB", "error", err, "count", len(entries))
	}
}

// Stop flushes what is buffered, ends the background loop and waits for
// both.
func (h *PGHandler) Stop() {
	h.sink.once.Do(func() {
		h.sink.ticker.Stop()
		close(h.sink.done)
	})
	<-h.sink.stopped
}

// Enabled only handles ERROR and above.
func (h *PGHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *PGHandler) Handle(_ context.Context, record slog.Record) error {
	entry := toSystemLog(record, h.attrs)

	h.sink.mu.Lock()
	h.sink.buffer = append(h.sink.buffer, entry)
	needFlush := len(h.sink.buffer) >= batchSize
	h.sink.mu.Unlock()

	if needFlush {
		go h.flush()
	}
	return nil
}

func (h *PGHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &PGHandler{db: h.db, attrs: merged, sink: h.sink}
}

func (h *PGHandler) WithGroup(name string) slog.Handler {
	return h
}

// toSystemLog maps well-known attributes to columns and keeps the rest as
// JSON in Extra.
func toSystemLog(record slog.Record, preset []slog.Attr) models.SystemLog {
	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}

	extra := make(map[string]interface{})
	apply := func(a slog.Attr) bool {
		switch a.Key {
		case "resource":
			entry.Resource = a.Value.String()
		case "request_id":
			entry.RequestID = a.Value.String()
		case "user_id":
			s := a.Value.String()
			entry.UserID = &s
		case "action":
			entry.Action = a.Value.String()
		case "error":
			entry.Error = a.Value.String()
		case "latency_ms":
			switch v := a.Value.Any().(type) {
			case float64:
				entry.LatencyMs = int(math.Round(v))
			case int64:
				entry.LatencyMs = int(v)
			case time.Duration:
				entry.LatencyMs = int(v.Milliseconds())
			}
		default:
			extra[a.Key] = a.Value.Any()
		}
		return true
	}
	for _, a := range preset {
		apply(a)
	}
	record.Attrs(apply)

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}
	return entry
}
