package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	documentsCompletedTotal atomic.Uint64
	documentsFailedTotal    atomic.Uint64
	documentsSkippedTotal   atomic.Uint64
	ocrAttemptsTotal        atomic.Uint64
	ocrTimeoutsTotal        atomic.Uint64
	reprocessJobsTotal      atomic.Uint64

	ocrDuration = newHistogram([]float64{250, 500, 1000, 2500, 5000, 10000, 20000, 30000, 60000})
)

// IncDocumentCompleted increments the completed-document counter.
func IncDocumentCompleted() {
	documentsCompletedTotal.Add(1)
}

// IncDocumentFailed increments the failed-document counter.
func IncDocumentFailed() {
	documentsFailedTotal.Add(1)
}

// IncDocumentSkipped increments the skipped-document counter.
func IncDocumentSkipped() {
	documentsSkippedTotal.Add(1)
}

// IncOCRAttempt increments the OCR engine attempt counter.
func IncOCRAttempt() {
	ocrAttemptsTotal.Add(1)
}

// IncOCRTimeout increments the OCR timeout counter.
func IncOCRTimeout() {
	ocrTimeoutsTotal.Add(1)
}

// IncReprocessJob increments the reprocess-job counter.
func IncReprocessJob() {
	reprocessJobsTotal.Add(1)
}

// ObserveOCRDurationMs records an OCR invocation duration in milliseconds.
func ObserveOCRDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	ocrDuration.Observe(value)
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
	writeCounter(&buf, "bol_documents_completed_total", "Total BOL documents processed to completed status", documentsCompletedTotal.Load())
	writeCounter(&buf, "bol_documents_failed_total", "Total BOL documents processed to failed status", documentsFailedTotal.Load())
	writeCounter(&buf, "bol_documents_skipped_total", "Total BOL documents stored without OCR", documentsSkippedTotal.Load())
	writeCounter(&buf, "bol_ocr_attempts_total", "Total OCR engine invocation attempts", ocrAttemptsTotal.Load())
	writeCounter(&buf, "bol_ocr_timeouts_total", "Total OCR engine attempts ended by timeout", ocrTimeoutsTotal.Load())
	writeCounter(&buf, "bol_reprocess_jobs_total", "Total re-OCR jobs handled by the worker", reprocessJobsTotal.Load())
	writeHistogram(&buf, "bol_ocr_duration_ms", "OCR invocation duration in milliseconds", ocrDuration.Snapshot())
	return buf.String()
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

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
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
