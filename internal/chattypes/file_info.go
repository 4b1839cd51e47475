package chattypes

// FileInfo describes a stored upload and how to reach it.
type FileInfo struct {
	URL      string `json:"url"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
	FileName string `json:"originalName"`
}
