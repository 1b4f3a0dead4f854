package intake

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Minimum plausible sizes for scanned documents. Anything below these is
// rejected before OCR rather than burning engine time on garbage input.
const (
	minImageBytes = 500
	minPDFBytes   = 1000
)

var acceptedExtensions = map[string]struct{}{
	".pdf":  {},
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".tiff": {},
	".tif":  {},
	".bmp":  {},
	".gif":  {},
}

// ValidationResult is the outcome of the structural pre-check on an
// uploaded file.
type ValidationResult struct {
	IsValid   bool
	Error     string
	Details   string
	FileSize  int64
	PageCount int
	Warning   string
}

// Validate inspects the file on disk before any OCR work. It checks
// existence, size thresholds, the accepted extension set, and the PDF magic
// signature. Page counting for PDFs is best effort: a parse failure becomes
// a warning, never a rejection.
func Validate(path, declaredMimeType string) ValidationResult {
	info, err := os.Stat(path)
	if err != nil {
		return ValidationResult{Error: "File not found", Details: err.Error()}
	}
	size := info.Size()
	if size == 0 {
		return ValidationResult{Error: "Empty file", FileSize: 0}
	}

	ext := strings.ToLower(filepath.Ext(path))
	minSize := int64(minImageBytes)
	if ext == ".pdf" || declaredMimeType == "application/pdf" {
		minSize = minPDFBytes
	}
	if size < minSize {
		return ValidationResult{
			Error:    "File is suspiciously small",
			Details:  fmt.Sprintf("size %d bytes is below the %d byte minimum for %s files", size, minSize, strings.TrimPrefix(ext, ".")),
			FileSize: size,
		}
	}

	if _, ok := acceptedExtensions[ext]; !ok {
		return ValidationResult{
			Error:    "Unsupported file type",
			Details:  fmt.Sprintf("extension %q is not accepted", ext),
			FileSize: size,
		}
	}

	result := ValidationResult{IsValid: true, FileSize: size}

	if ext == ".pdf" {
		ok, err := hasPDFSignature(path)
		if err != nil {
			return ValidationResult{Error: "File not readable", Details: err.Error(), FileSize: size}
		}
		if !ok {
			return ValidationResult{
				Error:    "Invalid PDF signature",
				Details:  "file does not start with %PDF",
				FileSize: size,
			}
		}
		pages, err := countPDFPages(path)
		if err != nil {
			result.Warning = fmt.Sprintf("page count unavailable: %v", err)
		} else {
			result.PageCount = pages
		}
	}

	return result
}

func hasPDFSignature(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	header := make([]byte, 4)
	if _, err := f.Read(header); err != nil {
		return false, err
	}
	return string(header) == "%PDF", nil
}

func countPDFPages(path string) (pages int, err error) {
	// The pdf package panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return reader.NumPage(), nil
}
