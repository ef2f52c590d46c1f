package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	plansGeneratedTotal        atomic.Uint64
	plansBlockedCheckInTotal   atomic.Uint64
	plansBlockedClearanceTotal atomic.Uint64

	sessionEventsReceivedTotal  atomic.Uint64
	sessionEventsCompletedTotal atomic.Uint64
	sessionEventsFailedTotal    atomic.Uint64

	safetyStatus   = newLabeledCounter("GREEN", "YELLOW", "RED")
	adaptiveScreen = newLabeledCounter("PHASE_TRANSITION", "RETURNING", "NO_ENERGY", "PROGRESS_REFLECTION", "NONE")

	planDuration = newHistogram([]float64{1, 5, 10, 25, 50, 100, 250, 500, 1000})
)

// IncPlanGenerated counts a composed plan under its safety status.
func IncPlanGenerated(status string) {
	plansGeneratedTotal.Add(1)
	safetyStatus.inc(status)
}

// IncPlanBlockedCheckIn counts plan requests refused for a missing check-in.
func IncPlanBlockedCheckIn() {
	plansBlockedCheckInTotal.Add(1)
}

// IncPlanBlockedClearance counts plan requests refused by the screening gate.
func IncPlanBlockedClearance() {
	plansBlockedClearanceTotal.Add(1)
}

// IncAdaptiveScreen counts a resolved adaptive screen.
func IncAdaptiveScreen(screen string) {
	adaptiveScreen.inc(screen)
}

func IncSessionEventReceived() {
	sessionEventsReceivedTotal.Add(1)
}

func IncSessionEventCompleted() {
	sessionEventsCompletedTotal.Add(1)
}

func IncSessionEventFailed() {
	sessionEventsFailedTotal.Add(1)
}

// ObservePlanDurationMs records the wall time of one plan decision.
func ObservePlanDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	planDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "plans_generated_total", "Total daily plans composed", plansGeneratedTotal.Load())
	for _, label := range safetyStatus.labels {
		name := "plans_safety_" + strings.ToLower(label) + "_total"
		writeCounter(&buf, name, "Plans composed with safety status "+label, safetyStatus.load(label))
	}
	writeCounter(&buf, "plans_blocked_checkin_total", "Plan requests without a check-in for today", plansBlockedCheckInTotal.Load())
	writeCounter(&buf, "plans_blocked_clearance_total", "Plan requests blocked by safety screening", plansBlockedClearanceTotal.Load())
	for _, label := range adaptiveScreen.labels {
		name := "adaptive_screens_" + strings.ToLower(label) + "_total"
		writeCounter(&buf, name, "Adaptive screens resolved as "+label, adaptiveScreen.load(label))
	}
	writeCounter(&buf, "session_events_received_total", "Session events received", sessionEventsReceivedTotal.Load())
	writeCounter(&buf, "session_events_completed_total", "Session events applied", sessionEventsCompletedTotal.Load())
	writeCounter(&buf, "session_events_failed_total", "Session events that failed", sessionEventsFailedTotal.Load())
	writeHistogram(&buf, "plan_duration_ms", "Plan decision duration in milliseconds", planDuration.Snapshot())
	return buf.String()
}

// labeledCounter is a fixed set of counters. Unknown labels are ignored.
type labeledCounter struct {
	labels []string
	counts map[string]*atomic.Uint64
}

func newLabeledCounter(labels ...string) *labeledCounter {
	lc := &labeledCounter{labels: labels, counts: make(map[string]*atomic.Uint64, len(labels))}
	for _, l := range labels {
		lc.counts[l] = new(atomic.Uint64)
	}
	return lc
}

func (lc *labeledCounter) inc(label string) {
	if c, ok := lc.counts[label]; ok {
		c.Add(1)
	}
}

func (lc *labeledCounter) load(label string) uint64 {
	if c, ok := lc.counts[label]; ok {
		return c.Load()
	}
	return 0
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe records value in the first bucket that holds it; Render accumulates.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// Since returns milliseconds elapsed since start.
func Since(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}
