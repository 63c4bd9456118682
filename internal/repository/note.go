package repository

import (
	"context"

	"notesapi/internal/model"
)

// NoteRepository defines data access for notes using SQL queries only.
// No business logic here — strictly persistence operations.
type NoteRepository interface {
	// Create inserts a new note record owned by note.Uploader.ID.
	// Returns the stored note with DB-assigned defaults populated.
	Create(ctx context.Context, note *model.Note) (*model.Note, error)

	// List returns notes matching the filter, newest-created first, each
	// joined with the uploader's name and email. An empty filter matches
	// every note. No pagination: the listing is intentionally unbounded.
	List(ctx context.Context, f NoteFilter) ([]model.Note, error)

	// IncrementDownloads atomically bumps the download counter in a single
	// UPDATE so concurrent downloads never lose increments. Returns the
	// updated note (id, file URL, counter) or sql.ErrNoRows when absent.
	IncrementDownloads(ctx context.Context, id string) (*model.Note, error)

	// DistinctFilterValues returns the distinct values currently present in
	// each classification column.
	DistinctFilterValues(ctx context.Context) (*FilterOptions, error)
}

// NoteFilter holds optional case-insensitive substring filters for listing
// notes. Field filters and Search are AND-combined; Search alone matches
// title, description, or subject.
type NoteFilter struct {
	University string
	Degree     string
	Semester   string
	Subject    string
	Search     string
}

// FilterOptions holds the distinct classification values across all notes,
// used to populate client-side selection controls.
type FilterOptions struct {
	Universities []string `json:"universities"`
	Degrees      []string `json:"degrees"`
	Semesters    []string `json:"semesters"`
	Subjects     []string `json:"subjects"`
}
