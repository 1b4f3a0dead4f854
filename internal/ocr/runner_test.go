package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script engine tests require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "engine.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestRunnerDecodesStdout(t *testing.T) {
	script := writeScript(t, `echo '{"success":true,"lines":[{"text":"BOL No: 445566","confidence":0.9}]}'`)
	r := NewRunner(script)

	res, err := r.Run(context.Background(), "scan.jpg")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Success || len(res.Lines) != 1 {
		t.Fatalf("result = %+v", res)
	}
}

func TestRunnerPassesFileArgument(t *testing.T) {
	// The script echoes its final argument back as the detected text.
	script := writeScript(t, `last=""
for a in "$@"; do last="$a"; done
printf '{"success":true,"lines":[{"text":"%s","confidence":1}]}' "$last"`)
	r := NewRunner(script)

	res, err := r.Run(context.Background(), "/tmp/bol_scan.pdf")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Lines[0].Text != "/tmp/bol_scan.pdf" {
		t.Fatalf("engine argv missing file path, got %q", res.Lines[0].Text)
	}
}

func TestRunnerKilledOnTimeout(t *testing.T) {
	script := writeScript(t, "sleep 10")
	r := NewRunner(script)
	r.WaitDelay = 100 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.Run(ctx, "scan.jpg")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("runner not killed promptly, took %v", elapsed)
	}
}

func TestRunnerReportsEngineFailure(t *testing.T) {
	script := writeScript(t, `echo "model file missing" >&2
exit 3`)
	r := NewRunner(script)

	_, err := r.Run(context.Background(), "scan.jpg")
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
}

func TestRunnerMalformedStdout(t *testing.T) {
	script := writeScript(t, `echo "segfault dump"`)
	r := NewRunner(script)

	_, err := r.Run(context.Background(), "scan.jpg")
	if !errors.Is(err, ErrMalformedOutput) {
		t.Fatalf("err = %v, want ErrMalformedOutput", err)
	}
}
