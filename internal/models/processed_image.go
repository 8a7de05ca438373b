package models

import "time"

type ResizedImage struct {
	SourcePath        string    `json:"source_path"`
	OutputPath        string    `json:"output_path"`
	Width             int       `json:"width"`
	Height            int       `json:"height"`
	ProportionChanged bool      `json:"proportion_changed"`
	URL               string    `json:"url,omitempty"`
	ProcessedAt       time.Time `json:"processed_at"`
}
