package models

import "time"

type ResizeJob struct {
	ID         string        `json:"id"`
	SourcePath string        `json:"source_path"`
	OutputDir  string        `json:"output_dir,omitempty"`
	Request    ResizeRequest `json:"request"`
	Upload     bool          `json:"upload,omitempty"`
	Status     string        `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	Result     *ResizedImage `json:"result,omitempty"`
	Error      string        `json:"error,omitempty"`
}

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)
