package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// minOCRHeight is the pixel height below which images are upscaled before
// recognition; small phone scans OCR poorly at native resolution.
const minOCRHeight = 900

// Tesseract is an in-process engine backed by gosseract. It handles image
// inputs only; deployments that need PDF rasterization use the subprocess
// Runner instead. Cancellation is checked between stages but a recognition
// pass already underway cannot be interrupted.
type Tesseract struct {
	Lang string
}

// NewTesseract constructs an in-process Tesseract engine.
func NewTesseract(lang string) *Tesseract {
	if lang == "" {
		lang = "eng"
	}
	return &Tesseract{Lang: lang}
}

// Run preprocesses the image and collects per-line detections.
func (t *Tesseract) Run(ctx context.Context, path string) (*RawResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil, fmt.Errorf("tesseract engine does not rasterize PDFs: %s", filepath.Base(path))
	}

	input, cleanup, err := preprocess(path)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(t.Lang); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}
	if err := client.SetImage(input); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &RawResult{Success: true, Lines: make([]Region, 0, len(boxes))}
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		bbox, _ := marshalBox(box.Box.Min.X, box.Box.Min.Y, box.Box.Max.X, box.Box.Max.Y)
		res.Lines = append(res.Lines, Region{
			Text:       text,
			Confidence: box.Confidence / 100,
			Box:        bbox,
		})
	}
	return encodeRawResult(res)
}

// preprocess grayscales and upscales the image, writing a temp PNG for the
// recognizer. Returns the input path unchanged when preprocessing fails;
// Tesseract may still cope with the original.
func preprocess(path string) (string, func(), error) {
	noop := func() {}
	img, err := imaging.Open(path)
	if err != nil {
		return "", noop, fmt.Errorf("open image: %w", err)
	}
	gray := imaging.Grayscale(img)
	if gray.Bounds().Dy() < minOCRHeight {
		gray = imaging.Resize(gray, 0, 1200, imaging.Lanczos)
	}

	tmp, err := os.CreateTemp("", "bolocr-*.png")
	if err != nil {
		return path, noop, nil
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	if err := imaging.Save(gray, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return path, noop, nil
	}
	return tmpPath, func() { _ = os.Remove(tmpPath) }, nil
}

func marshalBox(x0, y0, x1, y1 int) ([]byte, error) {
	return []byte(fmt.Sprintf("[%d,%d,%d,%d]", x0, y0, x1, y1)), nil
}

var _ Engine = (*Tesseract)(nil)
