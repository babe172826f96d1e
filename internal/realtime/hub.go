// Package realtime fans database change notifications out to connected
// clients, one subscription per socket.
package realtime

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Tables clients may subscribe to.
var Tables = []string{"reports", "report_status_history", "events", "markers", "posts", "comments"}

var (
	ErrUnknownTable  = errors.New("unknown table")
	ErrInvalidFilter = errors.New(`filter must look like "column=eq.value"`)
)

// Change is one row-level event as emitted by the database trigger.
type Change struct {
	Table  string         `json:"table"`
	Type   string         `json:"type"`
	Record map[string]any `json:"record"`
}

// RecordID returns the row id, or "" when the record has none.
func (c Change) RecordID() string {
	if c.Record == nil {
		return ""
	}
	if id, ok := c.Record["id"]; ok && id != nil {
		return fmt.Sprint(id)
	}
	return ""
}

// Notice is what subscribers receive: a hint to refetch, never row content.
// Count is how many changes were folded into it by the debounce.
type Notice struct {
	Table string `json:"table"`
	Type  string `json:"type"`
	ID    string `json:"id,omitempty"`
	Count int    `json:"count"`
}

// Filter restricts a subscription to rows whose column equals a value.
type Filter struct {
	Column string
	Value  string
}

// ParseFilter reads "column=eq.value". An empty string means no filter.
func ParseFilter(s string) (*Filter, error) {
	if s == "" {
		return nil, nil
	}
	col, rest, ok := strings.Cut(s, "=")
	if !ok || col == "" {
		return nil, ErrInvalidFilter
	}
	value, ok := strings.CutPrefix(rest, "eq.")
	if !ok || value == "" {
		return nil, ErrInvalidFilter
	}
	return &Filter{Column: col, Value: value}, nil
}

func (f *Filter) Match(c Change) bool {
	if f == nil {
		return true
	}
	v, ok := c.Record[f.Column]
	if !ok || v == nil {
		return false
	}
	return fmt.Sprint(v) == f.Value
}

// ValidateTables rejects tables that are not published.
func ValidateTables(tables []string) error {
	if len(tables) == 0 {
		return fmt.Errorf("%w: at least one table is required", ErrUnknownTable)
	}
	for _, t := range tables {
		found := false
		for _, known := range Tables {
			if t == known {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", ErrUnknownTable, t)
		}
	}
	return nil
}

type Hub struct {
	mu       sync.RWMutex
	subs     map[*Subscription]struct{}
	debounce time.Duration
	buffer   int
}

func NewHub(debounce time.Duration) *Hub {
	return &Hub{
		subs:     make(map[*Subscription]struct{}),
		debounce: debounce,
		buffer:   16,
	}
}

// Subscribe registers interest in changes to tables, optionally narrowed by
// filter. The caller must Close the subscription.
func (h *Hub) Subscribe(tables []string, filter *Filter) *Subscription {
	s := &Subscription{
		hub:    h,
		tables: make(map[string]bool, len(tables)),
		filter: filter,
		out:    make(chan Notice, h.buffer),
		wait:   h.debounce,
	}
	for _, t := range tables {
		s.tables[t] = true
	}

	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Publish delivers c to every matching subscription.
func (h *Hub) Publish(c Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		if s.tables[c.Table] && s.filter.Match(c) {
			s.offer(c)
		}
	}
}

// Len is the number of open subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[*Subscription]struct{})
	h.mu.Unlock()

	for s := range subs {
		s.shutdown()
	}
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}

// Subscription collapses bursts of changes into a single Notice emitted
// once no new change has arrived for the debounce window.
type Subscription struct {
	hub    *Hub
	tables map[string]bool
	filter *Filter
	out    chan Notice
	wait   time.Duration

	mu      sync.Mutex
	pending *Notice
	timer   *time.Timer
	closed  bool
}

// C delivers notices. It is closed when the subscription ends.
func (s *Subscription) C() <-chan Notice {
	return s.out
}

func (s *Subscription) Close() {
	s.hub.remove(s)
	s.shutdown()
}

func (s *Subscription) offer(c Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	count := 1
	if s.pending != nil {
		count = s.pending.Count + 1
	}
	s.pending = &Notice{Table: c.Table, Type: c.Type, ID: c.RecordID(), Count: count}

	if s.wait <= 0 {
		s.deliverLocked()
		return
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(s.wait, s.flush)
		return
	}
	s.timer.Reset(s.wait)
}

func (s *Subscription) flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.deliverLocked()
}

func (s *Subscription) deliverLocked() {
	if s.pending == nil {
		return
	}
	n := *s.pending
	s.pending = nil
	select {
	case s.out <- n:
	default:
		slog.Warn("realtime subscriber too slow, notice dropped", "resource", n.Table)
	}
}

func (s *Subscription) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	close(s.out)
}
