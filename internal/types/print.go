package types

// PrintRequest is the JSON body of POST /api/print. Content is the payload
// text, base64-encoded for the binary formats (pdf, image).
type PrintRequest struct {
	PrinterName string        `json:"printer_name,omitempty"`
	Content     string        `json:"content"`
	ContentType string        `json:"content_type"` // pdf | html | text | image
	Copies      int           `json:"copies,omitempty"`
	Options     *PrintOptions `json:"options,omitempty"`
}

// PrintOptions are accepted for forward compatibility; no pipeline enforces
// them yet, every format prints with its fixed defaults (A4, 0.75in margins
// for HTML).
type PrintOptions struct {
	PaperSize   string `json:"paper_size,omitempty"`
	Orientation string `json:"orientation,omitempty"`
	Color       *bool  `json:"color,omitempty"`
	Duplex      *bool  `json:"duplex,omitempty"`
}

// PrintResponse reports the outcome of a submission. JobID is the opaque
// identifier assigned by the spooler, empty when the pipeline could not
// recover one (browser fallback).
type PrintResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	JobID   string `json:"job_id,omitempty"`
}

// PrinterInfo describes one discovered printer and its capabilities.
type PrinterInfo struct {
	Name          string   `json:"name"`
	Status        string   `json:"status"` // idle | busy | disabled | unknown
	IsDefault     bool     `json:"is_default"`
	SupportsColor bool     `json:"supports_color"`
	PaperSizes    []string `json:"paper_sizes"`
}

// HealthResponse is the payload of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// ErrorResponse is the JSON body of every rejected or failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
