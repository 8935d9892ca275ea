package reports

import "time"

const (
	FormatPDF = "pdf"
	FormatCSV = "csv"
)

// Export is a rendered document ready to be served or uploaded.
type Export struct {
	Format      string
	ContentType string
	Filename    string
	Data        []byte
}

// CreateExportRequest is the body of POST /v1/exports.
type CreateExportRequest struct {
	Format string `json:"format"` // "pdf" or "csv"
}

// ExportDTO describes a stored export.
type ExportDTO struct {
	ID          string     `json:"id"`
	Format      string     `json:"format"`
	ObjectKey   string     `json:"object_key"`
	SizeBytes   int64      `json:"size_bytes"`
	DownloadURL string     `json:"download_url"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func contentTypeFor(format string) string {
	if format == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}
