package app

import "errors"

// Failure kinds surfaced by the services. Handlers map these to response
// codes at the boundary; nothing below panics or leaks raw store errors.
var (
	ErrInvalidInput = errors.New("invalid input")

	// Ingestion preconditions, checked in order.
	ErrFileType     = errors.New("file type not allowed")
	ErrFileTooLarge = errors.New("file too large")
	ErrEmptyFile    = errors.New("file has no extractable text")
	ErrNoChunks     = errors.New("failed to chunk document")

	// Question answering. ErrNoDocuments (user owns nothing) is deliberately
	// distinct from ErrNoRelevantContent (documents exist, nothing close
	// enough to the question).
	ErrEmptyQuestion     = errors.New("question cannot be empty")
	ErrNoDocuments       = errors.New("no documents uploaded yet, please upload documents first")
	ErrNoRelevantContent = errors.New("no sufficiently relevant content found in documents")

	// Not-found and not-owned are merged so callers cannot probe for the
	// existence of other users' rows.
	ErrDocumentNotFound = errors.New("document not found or unauthorized")
	ErrSessionNotFound  = errors.New("chat session not found or unauthorized")
)
