package models

// Response headers shared by the resize handler and the request logger.
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderResizeWidth   = "X-Resize-Width"
	HeaderResizeHeight  = "X-Resize-Height"
	HeaderResizeWarning = "X-Resize-Warning"
	HeaderCache         = "X-Cache"
)
