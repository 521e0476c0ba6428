package models

import "fmt"

// NoReadableText is the sentinel returned when a provider succeeded but
// found no discernible text in the image. Absence of content is not an
// error.
const NoReadableText = "No readable text"

// ErrorKind classifies an extraction failure. Adapters never let a
// provider-specific error escape; they map everything onto one of these.
type ErrorKind string

const (
	ErrorKindNone              ErrorKind = "none"
	ErrorKindFetchFailed       ErrorKind = "fetch-failed"
	ErrorKindAuthFailed        ErrorKind = "auth-failed"
	ErrorKindRateLimited       ErrorKind = "rate-limited"
	ErrorKindBadRequest        ErrorKind = "bad-request"
	ErrorKindProviderError     ErrorKind = "provider-error"
	ErrorKindTimeout           ErrorKind = "timeout"
	ErrorKindUnsupportedFormat ErrorKind = "unsupported-format"
)

// DocumentReference is one ordered input item of an extraction batch.
// Exactly one of URL, ObjectKey or Inline should be set; Index is the
// item's position in the submission and is preserved through every stage.
type DocumentReference struct {
	Index       int    `json:"index"`
	URL         string `json:"url,omitempty"`
	ObjectKey   string `json:"object_key,omitempty"`
	Inline      []byte `json:"inline,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// ExtractionOutcome is the per-item result of an extraction attempt. One
// outcome exists for every DocumentReference, in input order, even on
// failure.
type ExtractionOutcome struct {
	Index        int       `json:"index"`
	Text         string    `json:"text"`
	Success      bool      `json:"success"`
	ErrorKind    ErrorKind `json:"error_kind"`
	ProviderUsed string    `json:"provider_used,omitempty"`
}

// FailedOutcome builds the placeholder outcome used when no provider could
// serve an item at all.
func FailedOutcome(index int, kind ErrorKind) ExtractionOutcome {
	return ExtractionOutcome{
		Index:     index,
		Text:      fmt.Sprintf("Text extraction failed for image %d. Please ensure the image is clear and readable.", index+1),
		Success:   false,
		ErrorKind: kind,
	}
}
