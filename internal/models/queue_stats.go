package models

// QueueStats describes the job queue as the broker reports it.
type QueueStats struct {
	Name      string `json:"name"`
	Messages  int    `json:"messages"`
	Consumers int    `json:"consumers"`
	// Workers counts consumers running inside this process.
	Workers int `json:"workers,omitempty"`
}
