package intake

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"dock-optimizer/internal/analytics"
	"dock-optimizer/internal/appointments"
	"dock-optimizer/internal/documents"
	"dock-optimizer/internal/extract"
	"dock-optimizer/internal/ocr"
	localstore "dock-optimizer/internal/shared/storage/object/local"
)

// fakeEngine returns a canned result and counts invocations.
type fakeEngine struct {
	calls int
	res   *ocr.RawResult
	err   error
}

func (f *fakeEngine) Run(ctx context.Context, path string) (*ocr.RawResult, error) {
	f.calls++
	return f.res, f.err
}

// stallEngine blocks until the attempt deadline fires.
type stallEngine struct {
	calls int
}

func (s *stallEngine) Run(ctx context.Context, path string) (*ocr.RawResult, error) {
	s.calls++
	<-ctx.Done()
	return nil, ctx.Err()
}

// failLinkRepo simulates a foreign key violation on link insert.
type failLinkRepo struct{}

func (failLinkRepo) Create(ctx context.Context, link appointments.Link) error {
	return errors.New("violates foreign key constraint")
}

func (failLinkRepo) ListByDocument(ctx context.Context, documentID string) ([]appointments.Link, error) {
	return nil, nil
}

type harness struct {
	svc       *Service
	docs      *documents.MemoryRepo
	analytics *analytics.MemoryRepo
	links     appointments.Repo
	store     *localstore.Store
}

func newHarness(t *testing.T, engine ocr.Engine) *harness {
	t.Helper()
	store := localstore.New(t.TempDir())
	h := &harness{
		docs:      documents.NewMemoryRepo(),
		analytics: analytics.NewMemoryRepo(),
		links:     appointments.NewMemoryRepo(),
		store:     store,
	}
	h.svc = &Service{
		Documents: &documents.Service{Repo: h.docs},
		Invoker:   ocr.NewInvoker(engine, 50*time.Millisecond),
		Objects:   store,
		Paths:     store,
		Analytics: &analytics.Recorder{Repo: h.analytics},
		Linker:    &appointments.Linker{Repo: h.links},
	}
	return h
}

func denseResult(lines ...string) *ocr.RawResult {
	res := &ocr.RawResult{Success: true}
	for _, line := range lines {
		res.Lines = append(res.Lines, ocr.Region{Text: line, Confidence: 0.9})
	}
	return res
}

func scanOf12Regions() *ocr.RawResult {
	return denseResult(
		"BILL OF LADING",
		"BOL No: 445566",
		"Carrier: ACME Freight Lines",
		"Ship To: Acme Distribution Center",
		"PO Number: PO-556677",
		"MC# 123456",
		"Trailer No: TR-4411",
		"Gross Weight: 42,500 lbs",
		"Ship Date: 08/15/2026",
		"Delivery Date: 08/18/2026",
		"Driver: J. Smith",
		"Page 1 of 1",
	)
}

func (h *harness) docCount(t *testing.T) int {
	t.Helper()
	docs, err := h.docs.ListByTenant(context.Background(), 1, 100, 0)
	if err != nil {
		t.Fatalf("list documents: %v", err)
	}
	return len(docs)
}

func TestProcessDocumentRejectsEmptyFileBeforeOCR(t *testing.T) {
	engine := &fakeEngine{res: scanOf12Regions()}
	h := newHarness(t, engine)

	path := writeFile(t, "invoice.pdf", nil)
	_, err := h.svc.ProcessDocument(context.Background(), FileInfo{
		Name:         "invoice.pdf",
		OriginalName: "invoice.pdf",
		Path:         path,
		MimeType:     "application/pdf",
	}, 1, 0, nil)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Reason != "Empty file" {
		t.Fatalf("reason = %q", verr.Reason)
	}
	if engine.calls != 0 {
		t.Fatalf("engine invoked %d times for invalid file", engine.calls)
	}
	if n := h.docCount(t); n != 0 {
		t.Fatalf("document rows = %d, want 0", n)
	}
}

func TestProcessDocumentCompleted(t *testing.T) {
	engine := &fakeEngine{res: scanOf12Regions()}
	h := newHarness(t, engine)

	path := writeFile(t, "bol_scan.jpg", bytes.Repeat([]byte{0xFF}, 50*1024))
	result, err := h.svc.ProcessDocument(context.Background(), FileInfo{
		Name:         "bol_scan.jpg",
		OriginalName: "bol_scan.jpg",
		Path:         path,
		MimeType:     "image/jpeg",
	}, 1, 7, nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if result.Status != documents.StatusCompleted {
		t.Fatalf("status = %q, want completed", result.Status)
	}
	if result.Fields.BOLNumber != "445566" {
		t.Fatalf("bolNumber = %q", result.Fields.BOLNumber)
	}
	if result.Fields.BOLNumberSource != extract.SourceOCR {
		t.Fatalf("source = %q", result.Fields.BOLNumberSource)
	}
	if result.DocumentID == "" {
		t.Fatal("missing document id")
	}

	doc, err := h.docs.GetByID(context.Background(), result.DocumentID)
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	if doc.Status != documents.StatusCompleted {
		t.Fatalf("persisted status = %q", doc.Status)
	}
	if !strings.Contains(string(doc.ParsedData), `"bolNumber":"445566"`) {
		t.Fatalf("parsedData = %s", doc.ParsedData)
	}

	recs, err := h.analytics.ListByTenant(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("list analytics: %v", err)
	}
	if len(recs) != 1 || !recs[0].Success {
		t.Fatalf("analytics = %+v", recs)
	}
}

func TestProcessDocumentUnusableResultFallsBackToFilename(t *testing.T) {
	engine := &fakeEngine{res: denseResult("BILL", "blurry")}
	h := newHarness(t, engine)

	body := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{'x'}, 2000)...)
	path := writeFile(t, "bol_BOL-998877.pdf", body)
	result, err := h.svc.ProcessDocument(context.Background(), FileInfo{
		Name:         "bol_BOL-998877.pdf",
		OriginalName: "bol_BOL-998877.pdf",
		Path:         path,
		MimeType:     "application/pdf",
	}, 1, 0, nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if result.Status != documents.StatusFailed {
		t.Fatalf("status = %q, want failed for unusable result", result.Status)
	}
	if result.Fields.BOLNumber != "998877" {
		t.Fatalf("bolNumber = %q, want filename fallback", result.Fields.BOLNumber)
	}
	if result.Fields.BOLNumberSource != extract.SourceFilename {
		t.Fatalf("source = %q", result.Fields.BOLNumberSource)
	}
	if n := h.docCount(t); n != 1 {
		t.Fatalf("document rows = %d, want 1", n)
	}
}

func TestProcessDocumentTimeoutMakesTwoAttemptsAndFails(t *testing.T) {
	engine := &stallEngine{}
	h := newHarness(t, engine)

	path := writeFile(t, "large_scan.jpg", bytes.Repeat([]byte{0xFF}, 4096))
	result, err := h.svc.ProcessDocument(context.Background(), FileInfo{
		Name:         "large_scan.jpg",
		OriginalName: "large_scan.jpg",
		Path:         path,
		MimeType:     "image/jpeg",
	}, 1, 0, nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if result.Status != documents.StatusFailed {
		t.Fatalf("status = %q, want failed", result.Status)
	}
	if engine.calls != 2 {
		t.Fatalf("engine calls = %d, want exactly 2", engine.calls)
	}
	if result.Outcome.ErrorType != ocr.ErrorTypeTimeout {
		t.Fatalf("errorType = %q, want timeout", result.Outcome.ErrorType)
	}

	doc, err := h.docs.GetByID(context.Background(), result.DocumentID)
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	if !strings.Contains(string(doc.OCRData), `"errorType":"timeout"`) {
		t.Fatalf("ocrData = %s", doc.OCRData)
	}
}

func TestProcessDocumentLinkFailureDoesNotFailCall(t *testing.T) {
	engine := &fakeEngine{res: scanOf12Regions()}
	h := newHarness(t, engine)
	h.svc.Linker = &appointments.Linker{Repo: failLinkRepo{}}

	path := writeFile(t, "bol_scan.jpg", bytes.Repeat([]byte{0xFF}, 4096))
	schedule := int64(42)
	result, err := h.svc.ProcessDocument(context.Background(), FileInfo{
		Name:         "bol_scan.jpg",
		OriginalName: "bol_scan.jpg",
		Path:         path,
		MimeType:     "image/jpeg",
	}, 1, 0, &schedule)
	if err != nil {
		t.Fatalf("process returned error on link failure: %v", err)
	}
	if result.LinkCreated {
		t.Fatal("linkCreated = true, want false")
	}
	if n := h.docCount(t); n != 1 {
		t.Fatalf("document rows = %d, want 1", n)
	}
}

func TestProcessDocumentLinkSuccess(t *testing.T) {
	engine := &fakeEngine{res: scanOf12Regions()}
	h := newHarness(t, engine)

	path := writeFile(t, "bol_scan.jpg", bytes.Repeat([]byte{0xFF}, 4096))
	schedule := int64(42)
	result, err := h.svc.ProcessDocument(context.Background(), FileInfo{
		Name:         "bol_scan.jpg",
		OriginalName: "bol_scan.jpg",
		Path:         path,
		MimeType:     "image/jpeg",
	}, 1, 0, &schedule)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !result.LinkCreated {
		t.Fatal("linkCreated = false, want true")
	}

	links, err := h.links.ListByDocument(context.Background(), result.DocumentID)
	if err != nil {
		t.Fatalf("list links: %v", err)
	}
	if len(links) != 1 || links[0].ScheduleID != 42 {
		t.Fatalf("links = %+v", links)
	}
}

func TestProcessDocumentSkipsNonOCRMime(t *testing.T) {
	engine := &fakeEngine{res: scanOf12Regions()}
	h := newHarness(t, engine)

	body := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{'x'}, 2000)...)
	path := writeFile(t, "manifest.pdf", body)
	result, err := h.svc.ProcessDocument(context.Background(), FileInfo{
		Name:         "manifest.pdf",
		OriginalName: "manifest.pdf",
		Path:         path,
		MimeType:     "application/zip",
	}, 1, 0, nil)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if result.Status != documents.StatusSkipped {
		t.Fatalf("status = %q, want skipped", result.Status)
	}
	if engine.calls != 0 {
		t.Fatalf("engine invoked %d times for skipped document", engine.calls)
	}
	if n := h.docCount(t); n != 1 {
		t.Fatalf("document rows = %d, want 1 (skipped documents are still stored)", n)
	}
}

func TestIngestStoresAndProcesses(t *testing.T) {
	engine := &fakeEngine{res: scanOf12Regions()}
	h := newHarness(t, engine)

	payload := bytes.Repeat([]byte{0xFF, 0xD8, 0xFF, 0xE0}, 2048)
	result, err := h.svc.Ingest(context.Background(), "bol scan.jpg", bytes.NewReader(payload), 1, 7, nil)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if result.Status != documents.StatusCompleted {
		t.Fatalf("status = %q", result.Status)
	}

	doc, err := h.docs.GetByID(context.Background(), result.DocumentID)
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	if doc.StoragePath == "" {
		t.Fatal("storage path not recorded")
	}
	rc, err := h.store.Open(context.Background(), doc.StoragePath)
	if err != nil {
		t.Fatalf("open stored object: %v", err)
	}
	rc.Close()
}

func TestReprocessOverwritesOutcome(t *testing.T) {
	engine := &fakeEngine{res: denseResult("BILL", "blurry")}
	h := newHarness(t, engine)

	payload := bytes.Repeat([]byte{0xFF, 0xD8, 0xFF, 0xE0}, 2048)
	first, err := h.svc.Ingest(context.Background(), "bol_scan.jpg", bytes.NewReader(payload), 1, 0, nil)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if first.Status != documents.StatusFailed {
		t.Fatalf("first status = %q, want failed", first.Status)
	}

	// The rescan succeeds where the first pass produced thin output.
	engine.res = scanOf12Regions()
	second, err := h.svc.Reprocess(context.Background(), first.DocumentID)
	if err != nil {
		t.Fatalf("reprocess: %v", err)
	}
	if second.Status != documents.StatusCompleted {
		t.Fatalf("reprocess status = %q, want completed", second.Status)
	}

	doc, err := h.docs.GetByID(context.Background(), first.DocumentID)
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	if doc.Status != documents.StatusCompleted {
		t.Fatalf("persisted status = %q", doc.Status)
	}
	if !strings.Contains(string(doc.ParsedData), `"bolNumber":"445566"`) {
		t.Fatalf("parsedData = %s", doc.ParsedData)
	}
}
