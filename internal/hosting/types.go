package hosting

// File is one file of a deploy request.
type File struct {
	Name string
	Data []byte
}

// DeployResult is the body of POST /api/upload. A server-side failure comes
// back as OK=false with Error set, not as a Go error.
type DeployResult struct {
	OK    bool   `json:"ok"`
	Slug  string `json:"slug"`
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

// deployResponse tells a missing "ok" apart from "ok": false.
type deployResponse struct {
	OK    *bool  `json:"ok"`
	Slug  string `json:"slug"`
	URL   string `json:"url"`
	Error string `json:"error"`
}

// ActionResult is the body of the admin delete/restore endpoints.
type ActionResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// UsageStats is best-effort: any field may be missing from the response.
type UsageStats struct {
	TotalSites            *int    `json:"totalSites,omitempty"`
	ActiveSites           *int    `json:"activeSites,omitempty"`
	TotalFiles            *int    `json:"totalFiles,omitempty"`
	TotalStorageBytes     *int64  `json:"totalStorageBytes,omitempty"`
	TotalStorageFormatted *string `json:"totalStorageFormatted,omitempty"`
}

// SiteSummary is one entry of GET /api/admin/sites.
type SiteSummary struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	Status    string `json:"status"`
	FileCount *int   `json:"fileCount,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptime"`
}

type uploadFile struct {
	FileName string `json:"fileName"`
	FileData string `json:"fileData"`
}

type uploadRequest struct {
	SiteName string       `json:"siteName"`
	Files    []uploadFile `json:"files"`
}
