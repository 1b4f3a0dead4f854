package workerproc

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hibiken/asynq"

	"dock-optimizer/internal/queue"
)

func TestParseMessageValid(t *testing.T) {
	body := `{"documentId":"doc-1","requestId":"req-1","enqueuedAt":"2026-08-30T22:00:00Z","version":1}`
	msg, meta, err := ParseMessage(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if msg.DocumentID != "doc-1" || msg.RequestID != "req-1" {
		t.Fatalf("msg = %+v", msg)
	}
	if meta.BodyLen != len(body) || meta.BodySHA == "" {
		t.Fatalf("meta = %+v", meta)
	}
}

func TestParseMessageEmptyBody(t *testing.T) {
	_, _, err := ParseMessage("   ")
	var empty ErrEmptyBody
	if !errors.As(err, &empty) {
		t.Fatalf("err = %v, want ErrEmptyBody", err)
	}
}

func TestParseMessageDecodeFailure(t *testing.T) {
	_, meta, err := ParseMessage("{broken")
	var decode ErrDecode
	if !errors.As(err, &decode) {
		t.Fatalf("err = %v, want ErrDecode", err)
	}
	if meta.BodyLen != len("{broken") {
		t.Fatalf("meta = %+v", meta)
	}
}

func TestParseMessageMissingDocumentID(t *testing.T) {
	_, _, err := ParseMessage(`{"requestId":"req-9","version":1}`)
	var missing ErrMissingDocumentID
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want ErrMissingDocumentID", err)
	}
	if missing.RequestID != "req-9" {
		t.Fatalf("requestId = %q", missing.RequestID)
	}
}

func TestComputeMetaEmpty(t *testing.T) {
	meta := ComputeMeta("")
	if meta.BodyLen != 0 || meta.BodySHA != "" {
		t.Fatalf("meta = %+v", meta)
	}
}

func TestHandlerRoutesReprocessTask(t *testing.T) {
	p := NewProcessor(nil)
	mux := p.Handler()

	payload, err := queue.EncodeMessage(queue.Message{DocumentID: "doc-1", Version: 1})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	err = mux.ProcessTask(context.Background(), asynq.NewTask(queue.TaskReprocessDocument, payload))
	if err == nil || !strings.Contains(err.Error(), "intake service not configured") {
		t.Fatalf("err = %v, want unconfigured service error", err)
	}
}
