package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// Document is a stored source judgment (scan, PDF or text) awaiting or after extraction.
type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	Pages       int            `json:"pages,omitempty"`
	Method      string         `json:"method,omitempty"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// SourceText is the page-ordered raw text produced for a document.
type SourceText struct {
	Text     string
	Pages    int
	Method   string
	Warnings []string
}

// BatchFileResult reports the outcome of one file in a directory ingestion.
type BatchFileResult struct {
	Path       string `json:"path"`
	DocumentID string `json:"document_id,omitempty"`
	CaseID     string `json:"case_id,omitempty"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

type BatchStats struct {
	Seen    int               `json:"seen"`
	Indexed int               `json:"indexed"`
	Failed  int               `json:"failed"`
	Skipped int               `json:"skipped"`
	Files   []BatchFileResult `json:"files"`
}
