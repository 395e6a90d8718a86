package model

import "time"

// File is a document stored against a chama (minutes, constitutions,
// statements). The binary content lives at URL; only metadata is modeled.
type File struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	FileType string `json:"fileType"`
	Size     int64  `json:"size"`
	Category string `json:"category"`

	UploadedAt time.Time `json:"uploadedAt"`
	ChamaID    string    `json:"chamaId"`

	// Uploader is nil when the uploading user has since been deleted.
	UploaderID *string `json:"uploaderId"`
	Uploader   *struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"uploader"`
}

// UploaderName returns the uploader's display name, or a placeholder
// when the account no longer exists.
func (f File) UploaderName() string {
	if f.Uploader == nil {
		return "Unknown"
	}
	return f.Uploader.FirstName + " " + f.Uploader.LastName
}
