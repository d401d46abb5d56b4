package domain

import "strings"

// NotFoundSentinel is what the vision service is instructed to answer for an unreadable plate.
const NotFoundSentinel = "NOT_FOUND"

// OcrResult is the text read from one crop.
type OcrResult struct {
	Crop       string `json:"crop"`
	Text       string `json:"text,omitempty"`
	Unreadable bool   `json:"unreadable"`
	// Reason is set when the crop was marked unreadable because the OCR call failed.
	Reason string `json:"reason,omitempty"`
}

// Readable builds a result for recognized text. Empty text collapses to unreadable.
func Readable(crop, text string) OcrResult {
	if text == "" {
		return Unreadable(crop, "")
	}
	return OcrResult{Crop: crop, Text: text}
}

func Unreadable(crop, reason string) OcrResult {
	return OcrResult{Crop: crop, Unreadable: true, Reason: reason}
}

// OcrResultFromText interprets raw model output. The sentinel must match exactly after
// trimming; anything else has its whitespace removed and is uppercased.
func OcrResultFromText(crop, raw string) OcrResult {
	text := strings.TrimSpace(raw)
	if text == NotFoundSentinel {
		return Unreadable(crop, "")
	}
	text = strings.ToUpper(strings.Join(strings.Fields(text), ""))
	return Readable(crop, text)
}

// PlateCandidate is a normalized plate string and the crops it was read from.
type PlateCandidate struct {
	Text    string   `json:"text"`
	Sources []string `json:"sources"`
}

// NormalizePlate uppercases and keeps only A-Z and 0-9.
func NormalizePlate(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToUpper(s) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
