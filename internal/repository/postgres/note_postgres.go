package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"notesapi/internal/model"
	"notesapi/internal/repository"
)

// NotePostgres is a PostgreSQL implementation of repository.NoteRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type NotePostgres struct {
	db *sql.DB
}

// NewNotePostgres creates a new NotePostgres repository.
func NewNotePostgres(db *sql.DB) *NotePostgres {
	return &NotePostgres{db: db}
}

var _ repository.NoteRepository = (*NotePostgres)(nil)

const noteColumns = `n.id, n.title, n.description, n.university, n.degree, n.semester, n.subject,
		n.file_name, n.file_url, n.file_size, n.uploaded_by, n.downloads, n.created_at, n.updated_at`

// Create inserts a new note row and returns the stored record.
// The uploader's name/email are not re-read here; the service fills them
// from the authenticated user.
func (r *NotePostgres) Create(ctx context.Context, note *model.Note) (*model.Note, error) {
	const q = `
		INSERT INTO notes (id, title, description, university, degree, semester, subject,
			file_name, file_url, file_size, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, title, description, university, degree, semester, subject,
			file_name, file_url, file_size, uploaded_by, downloads, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, q,
		note.ID,
		note.Title,
		note.Description,
		note.University,
		note.Degree,
		note.Semester,
		note.Subject,
		note.FileName,
		note.FileURL,
		note.FileSize,
		note.Uploader.ID,
	)
	var out model.Note
	if err := row.Scan(
		&out.ID,
		&out.Title,
		&out.Description,
		&out.University,
		&out.Degree,
		&out.Semester,
		&out.Subject,
		&out.FileName,
		&out.FileURL,
		&out.FileSize,
		&out.Uploader.ID,
		&out.Downloads,
		&out.CreatedAt,
		&out.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns notes matching the filter, newest first, joined with the
// uploader. Field filters use case-insensitive substring matching (ILIKE);
// the search term matches title, description, or subject and is AND-combined
// with the field filters.
func (r *NotePostgres) List(ctx context.Context, f repository.NoteFilter) ([]model.Note, error) {
	var (
		where []string
		args  []any
	)

	addField := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s ILIKE '%%' || $%d || '%%'", column, len(args)))
	}
	addField("n.university", f.University)
	addField("n.degree", f.Degree)
	addField("n.semester", f.Semester)
	addField("n.subject", f.Subject)

	if f.Search != "" {
		args = append(args, f.Search)
		p := len(args)
		where = append(where, fmt.Sprintf(
			"(n.title ILIKE '%%' || $%d || '%%' OR n.description ILIKE '%%' || $%d || '%%' OR n.subject ILIKE '%%' || $%d || '%%')",
			p, p, p,
		))
	}

	q := `
		SELECT ` + noteColumns + `, u.name, u.email
		FROM notes n
		JOIN users u ON u.id = n.uploaded_by`
	if len(where) > 0 {
		q += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	q += "\n\t\tORDER BY n.created_at DESC, n.id DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]model.Note, 0)
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(
			&n.ID,
			&n.Title,
			&n.Description,
			&n.University,
			&n.Degree,
			&n.Semester,
			&n.Subject,
			&n.FileName,
			&n.FileURL,
			&n.FileSize,
			&n.Uploader.ID,
			&n.Downloads,
			&n.CreatedAt,
			&n.UpdatedAt,
			&n.Uploader.Name,
			&n.Uploader.Email,
		); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notes, nil
}

// IncrementDownloads bumps the counter in a single atomic UPDATE.
// Concurrent calls each add exactly one; a missing row yields sql.ErrNoRows
// and leaves no counter mutated anywhere.
func (r *NotePostgres) IncrementDownloads(ctx context.Context, id string) (*model.Note, error) {
	const q = `
		UPDATE notes
		SET downloads = downloads + 1, updated_at = now()
		WHERE id = $1
		RETURNING id, file_name, file_url, downloads
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var n model.Note
	if err := row.Scan(&n.ID, &n.FileName, &n.FileURL, &n.Downloads); err != nil {
		return nil, err
	}
	return &n, nil
}

// DistinctFilterValues returns each distinct classification value exactly once.
func (r *NotePostgres) DistinctFilterValues(ctx context.Context) (*repository.FilterOptions, error) {
	distinct := func(column string) ([]string, error) {
		q := fmt.Sprintf(`SELECT DISTINCT %s FROM notes ORDER BY %s`, column, column)
		rows, err := r.db.QueryContext(ctx, q)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		values := make([]string, 0)
		for rows.Next() {
			var v string
			if err := rows.Scan(&v); err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return values, rows.Err()
	}

	universities, err := distinct("university")
	if err != nil {
		return nil, err
	}
	degrees, err := distinct("degree")
	if err != nil {
		return nil, err
	}
	semesters, err := distinct("semester")
	if err != nil {
		return nil, err
	}
	subjects, err := distinct("subject")
	if err != nil {
		return nil, err
	}

	return &repository.FilterOptions{
		Universities: universities,
		Degrees:      degrees,
		Semesters:    semesters,
		Subjects:     subjects,
	}, nil
}
