package model

import "time"

// Uploader is the joined read-model view of the user who uploaded a note.
// It is populated from the users table on reads, not stored redundantly.
type Uploader struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Note represents an uploaded study note and its blob metadata.
// Downloads is incremented only by the download redirect and never decreases.
type Note struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	University  string    `json:"university"`
	Degree      string    `json:"degree"`
	Semester    string    `json:"semester"`
	Subject     string    `json:"subject"`
	FileName    string    `json:"fileName"`
	FileURL     string    `json:"fileUrl"`
	FileSize    int64     `json:"fileSize"`
	Uploader    Uploader  `json:"uploadedBy"`
	Downloads   int64     `json:"downloads"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
