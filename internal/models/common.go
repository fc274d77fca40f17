package models

// ErrorResponse is a standardized error response for API
type ErrorResponse struct {
	Code    int    `json:"code"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	// Status carries the current pair status when a duplicate-edge
	// creation attempt is rejected, so clients can render the right
	// next action ("already connected" vs "request pending").
	Status string `json:"status,omitempty"`
}
