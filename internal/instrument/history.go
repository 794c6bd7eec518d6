package instrument

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Execution is one recorded report run.
type Execution struct {
	ID          string    `json:"id"`
	ChartType   string    `json:"chartType,omitempty"`
	Mode        string    `json:"mode"`
	Strategy    string    `json:"strategy,omitempty"`
	RowCount    int       `json:"rowCount"`
	DurationMs  int64     `json:"durationMs"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"startedAt"`
	ReportName  string    `json:"reportName,omitempty"`
	SourceCount int       `json:"sourceCount"`
}

// History keeps the most recent executions in a fixed-size ring buffer.
// Safe for concurrent use.
type History struct {
	mu   sync.Mutex
	ring []Execution
	next int
	full bool
}

func NewHistory(size int) *History {
	if size <= 0 {
		size = 100
	}
	return &History{ring: make([]Execution, size)}
}

// Record stores an execution and returns its assigned id.
func (h *History) Record(e Execution) string {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now().UTC()
	}
	h.mu.Lock()
	h.ring[h.next] = e
	h.next = (h.next + 1) % len(h.ring)
	if h.next == 0 {
		h.full = true
	}
	h.mu.Unlock()
	return e.ID
}

// Recent returns up to n executions, newest first.
func (h *History) Recent(n int) []Execution {
	h.mu.Lock()
	defer h.mu.Unlock()

	count := h.next
	if h.full {
		count = len(h.ring)
	}
	if n <= 0 || n > count {
		n = count
	}

	out := make([]Execution, 0, n)
	for i := 1; i <= n; i++ {
		idx := (h.next - i + len(h.ring)) % len(h.ring)
		out = append(out, h.ring[idx])
	}
	return out
}

// Len reports how many executions are currently retained.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.full {
		return len(h.ring)
	}
	return h.next
}
