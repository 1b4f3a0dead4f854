// Package intake runs the document processing pipeline: structural
// validation, OCR invocation, usability checking, field extraction, and
// unconditional persistence, followed by best-effort appointment linking
// and analytics recording.
package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"

	"dock-optimizer/internal/analytics"
	"dock-optimizer/internal/appointments"
	"dock-optimizer/internal/documents"
	"dock-optimizer/internal/extract"
	"dock-optimizer/internal/ocr"
	"dock-optimizer/internal/shared/metrics"
	"dock-optimizer/internal/shared/storage/object"
	"dock-optimizer/internal/shared/telemetry"
	"dock-optimizer/internal/shared/util"
)

// FileInfo describes a stored artifact ready for processing.
type FileInfo struct {
	Name         string
	OriginalName string
	Path         string
	Size         int64
	MimeType     string
	StorageKey   string
}

// Result is the definite outcome of a pipeline run. Callers always receive
// one unless validation rejected the file or the document row itself could
// not be written.
type Result struct {
	DocumentID  string
	Status      documents.Status
	Fields      extract.Fields
	Outcome     ocr.Outcome
	LinkCreated bool
}

// Service wires the pipeline stages together.
type Service struct {
	Documents *documents.Service
	Invoker   *ocr.Invoker
	Objects   object.ObjectStore
	Paths     object.PathResolver
	Analytics *analytics.Recorder
	Linker    *appointments.Linker
}

// ocrRecord is the persisted annotation around the raw engine payload.
type ocrRecord struct {
	Success          bool            `json:"success"`
	Error            string          `json:"error,omitempty"`
	ErrorType        string          `json:"errorType,omitempty"`
	Attempts         int             `json:"attempts,omitempty"`
	ProcessingTimeMs int64           `json:"processingTimeMs,omitempty"`
	Usable           bool            `json:"usable"`
	UnusableReason   string          `json:"unusableReason,omitempty"`
	Result           json.RawMessage `json:"result,omitempty"`
}

// Ingest stores the uploaded stream and runs the pipeline on the stored copy.
func (s *Service) Ingest(ctx context.Context, originalName string, r io.Reader, tenantID, userID int64, scheduleID *int64) (Result, error) {
	name, err := util.SanitizeFileName(originalName)
	if err != nil {
		return Result{}, &ValidationError{FileName: originalName, Reason: "Invalid file name"}
	}
	key, size, mimeType, err := s.Objects.Save(ctx, strconv.FormatInt(tenantID, 10), name, r)
	if err != nil {
		return Result{}, fmt.Errorf("store upload: %w", err)
	}
	path, err := s.Paths.AbsolutePath(key)
	if err != nil {
		return Result{}, fmt.Errorf("resolve storage path: %w", err)
	}
	info := FileInfo{
		Name:         name,
		OriginalName: originalName,
		Path:         path,
		Size:         size,
		MimeType:     mimeType,
		StorageKey:   key,
	}
	return s.ProcessDocument(ctx, info, tenantID, userID, scheduleID)
}

// ProcessDocument runs the full chain: validate, OCR, judge usability,
// extract fields, persist, then fire side effects. Only a validation
// rejection or a failed document write returns an error; every OCR failure
// mode is absorbed into the result's status.
func (s *Service) ProcessDocument(ctx context.Context, info FileInfo, tenantID, userID int64, scheduleID *int64) (Result, error) {
	v := Validate(info.Path, info.MimeType)
	if !v.IsValid {
		telemetry.Info("document rejected", map[string]any{
			"file":    info.OriginalName,
			"error":   v.Error,
			"details": v.Details,
		})
		return Result{}, &ValidationError{FileName: info.OriginalName, Reason: v.Error}
	}
	if v.Warning != "" {
		telemetry.Warn("document validation warning", map[string]any{
			"file":    info.OriginalName,
			"warning": v.Warning,
		})
	}

	processable := documents.OCRProcessable(info.MimeType)

	var (
		outcome ocr.Outcome
		usable  bool
		reason  string
		fields  extract.Fields
	)
	if processable {
		outcome = s.Invoker.Invoke(ctx, info.Path)
		if outcome.Raw != nil {
			usable, reason = ocr.ValidateOutcome(outcome.Raw)
			// Even a thin, unusable result is worth scanning: a single
			// legible line can still carry a reference number.
			fields = extract.Extract(outcome.Raw.TextLines())
		}
	}
	extract.ResolveBOLNumber(&fields, info.OriginalName)

	status := documents.DeriveStatus(processable, outcome.Success, usable)

	ocrData, err := json.Marshal(ocrRecord{
		Success:          outcome.Success,
		Error:            outcome.Error,
		ErrorType:        outcome.ErrorType,
		Attempts:         outcome.Attempts,
		ProcessingTimeMs: outcome.ProcessingTimeMs,
		Usable:           usable,
		UnusableReason:   reason,
		Result:           rawPayload(outcome.Raw),
	})
	if err != nil {
		return Result{}, fmt.Errorf("encode ocr data: %w", err)
	}
	parsedData, err := json.Marshal(fields)
	if err != nil {
		return Result{}, fmt.Errorf("encode parsed data: %w", err)
	}

	doc, err := s.Documents.SaveProcessed(ctx, documents.Document{
		TenantID:         tenantID,
		UserID:           userID,
		FileName:         info.Name,
		OriginalFilename: info.OriginalName,
		StoragePath:      info.StorageKey,
		SizeBytes:        v.FileSize,
		MimeType:         info.MimeType,
		OCRData:          ocrData,
		ParsedData:       parsedData,
		Status:           status,
	})
	if err != nil {
		return Result{}, err
	}

	countStatus(status)
	telemetry.Info("document processed", map[string]any{
		"documentId": doc.ID,
		"file":       info.OriginalName,
		"status":     string(status),
		"bolNumber":  fields.BOLNumber,
		"bolSource":  fields.BOLNumberSource,
		"attempts":   outcome.Attempts,
	})

	result := Result{
		DocumentID: doc.ID,
		Status:     status,
		Fields:     fields,
		Outcome:    outcome,
	}
	result.LinkCreated = s.sideEffects(ctx, doc, outcome, status, scheduleID)
	return result, nil
}

// Reprocess re-runs OCR and extraction for an existing document and writes
// the fresh outcome over the stored one.
func (s *Service) Reprocess(ctx context.Context, documentID string) (Result, error) {
	doc, err := s.Documents.Get(ctx, documentID)
	if err != nil {
		return Result{}, err
	}
	path, err := s.Paths.AbsolutePath(doc.StoragePath)
	if err != nil {
		return Result{}, fmt.Errorf("resolve storage path: %w", err)
	}

	processable := documents.OCRProcessable(doc.MimeType)

	var (
		outcome ocr.Outcome
		usable  bool
		reason  string
		fields  extract.Fields
	)
	if processable {
		outcome = s.Invoker.Invoke(ctx, path)
		if outcome.Raw != nil {
			usable, reason = ocr.ValidateOutcome(outcome.Raw)
			fields = extract.Extract(outcome.Raw.TextLines())
		}
	}
	extract.ResolveBOLNumber(&fields, doc.OriginalFilename)

	status := documents.DeriveStatus(processable, outcome.Success, usable)

	ocrData, err := json.Marshal(ocrRecord{
		Success:          outcome.Success,
		Error:            outcome.Error,
		ErrorType:        outcome.ErrorType,
		Attempts:         outcome.Attempts,
		ProcessingTimeMs: outcome.ProcessingTimeMs,
		Usable:           usable,
		UnusableReason:   reason,
		Result:           rawPayload(outcome.Raw),
	})
	if err != nil {
		return Result{}, fmt.Errorf("encode ocr data: %w", err)
	}
	parsedData, err := json.Marshal(fields)
	if err != nil {
		return Result{}, fmt.Errorf("encode parsed data: %w", err)
	}

	if err := s.Documents.ApplyReprocess(ctx, doc.ID, ocrData, parsedData, status); err != nil {
		return Result{}, err
	}

	countStatus(status)
	telemetry.Info("document reprocessed", map[string]any{
		"documentId": doc.ID,
		"status":     string(status),
		"bolNumber":  fields.BOLNumber,
	})

	s.recordAnalytics(ctx, doc, outcome, status)
	return Result{DocumentID: doc.ID, Status: status, Fields: fields, Outcome: outcome}, nil
}

// sideEffects runs linking and analytics concurrently after the document row
// is safely persisted. Both are best effort; neither can fail the call. The
// detached context keeps them alive if the caller's deadline has already
// fired.
func (s *Service) sideEffects(ctx context.Context, doc documents.Document, outcome ocr.Outcome, status documents.Status, scheduleID *int64) bool {
	bg := context.WithoutCancel(ctx)

	var (
		wg          sync.WaitGroup
		linkCreated bool
	)
	if scheduleID != nil && s.Linker != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			linkCreated = s.Linker.Link(bg, doc.ID, *scheduleID)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.recordAnalytics(bg, doc, outcome, status)
	}()
	wg.Wait()
	return linkCreated
}

func (s *Service) recordAnalytics(ctx context.Context, doc documents.Document, outcome ocr.Outcome, status documents.Status) {
	if s.Analytics == nil {
		return
	}
	s.Analytics.Record(ctx, analytics.Record{
		DocumentID:       doc.ID,
		DocumentType:     doc.MimeType,
		DocumentSize:     doc.SizeBytes,
		ProcessingTimeMs: outcome.ProcessingTimeMs,
		Success:          status == documents.StatusCompleted,
		ErrorType:        analyticsErrorType(outcome, status),
		TenantID:         doc.TenantID,
	})
}

// analyticsErrorType tags failed rows for later aggregation. Completed rows
// carry no tag.
func analyticsErrorType(outcome ocr.Outcome, status documents.Status) string {
	switch status {
	case documents.StatusCompleted:
		return ""
	case documents.StatusSkipped:
		return "skipped"
	}
	if outcome.ErrorType != "" {
		return outcome.ErrorType
	}
	return "unusable_result"
}

func countStatus(status documents.Status) {
	switch status {
	case documents.StatusCompleted:
		metrics.IncDocumentCompleted()
	case documents.StatusFailed:
		metrics.IncDocumentFailed()
	case documents.StatusSkipped:
		metrics.IncDocumentSkipped()
	}
}

func rawPayload(raw *ocr.RawResult) json.RawMessage {
	if raw == nil {
		return nil
	}
	return raw.Payload()
}
