package domain

import "errors"

var (
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidPattern signals a malformed regex pattern.
	ErrInvalidPattern = errors.New("invalid pattern")
	// ErrEmptyText signals a document payload without text.
	ErrEmptyText = errors.New("text is required")
	// ErrUnknownMethod signals an unrecognized analysis method.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrTranscriptionFailed signals a speech provider failure.
	ErrTranscriptionFailed = errors.New("transcription failed")
	// ErrEmptyAudio signals an empty or missing audio upload.
	ErrEmptyAudio = errors.New("empty audio upload")
)
