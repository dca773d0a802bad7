// Package attachment holds metadata for uploaded files.
package attachment

import "time"

// Attachment describes one uploaded file. The bytes themselves live on disk
// under the configured upload directory; URL is the serving path.
type Attachment struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	Size         int64     `json:"size"`
	Folder       string    `json:"folder"`
	URL          string    `json:"url"`
	CreatedAt    time.Time `json:"createdAt"`
}
