package ocr

import (
	"fmt"
	"unicode/utf8"
)

// Usability thresholds. Engines routinely report success on blank or rotated
// pages that yield near-empty output; these floors filter such results
// without knowing anything about the engine.
const (
	MinRegions   = 5
	MinTextChars = 50
)

// ValidateOutcome judges whether an engine result that claims success is
// actually usable. It runs after, and independently of, the engine's own
// success flag.
func ValidateOutcome(raw *RawResult) (bool, string) {
	if raw == nil {
		return false, "no engine output"
	}
	if raw.Lines == nil {
		return false, "missing detected-region list"
	}
	if len(raw.Lines) < MinRegions {
		return false, fmt.Sprintf("only %d detected regions (minimum %d)", len(raw.Lines), MinRegions)
	}
	chars := 0
	for _, line := range raw.Lines {
		chars += utf8.RuneCountInString(line.Text)
	}
	if chars < MinTextChars {
		return false, fmt.Sprintf("only %d detected characters (minimum %d)", chars, MinTextChars)
	}
	return true, ""
}
