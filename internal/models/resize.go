package models

// ResizeRequest carries the optional dimensional parameters of one resize
// invocation. A nil field was not supplied by the user.
type ResizeRequest struct {
	Scale  *float64 `json:"scale,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

// Float returns a pointer to v, for building requests from parsed flags.
func Float(v float64) *float64 {
	return &v
}
