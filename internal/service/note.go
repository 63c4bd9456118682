package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"notesapi/internal/model"
	"notesapi/internal/repository"
	"notesapi/internal/storage"
)

const (
	// MaxFileSize is the upload cap in bytes (10 MiB).
	MaxFileSize = 10 << 20

	pdfContentType = "application/pdf"
	storageFolder  = "notes-pdfs"
)

var (
	// ErrMissingFile is returned when no file was supplied with the upload.
	ErrMissingFile = errors.New("file is required")
	// ErrUnsupportedFileType is returned for any declared media type other than PDF.
	ErrUnsupportedFileType = errors.New("only PDF files are allowed")
	// ErrFileTooLarge is returned when the file exceeds MaxFileSize.
	ErrFileTooLarge = errors.New("file size exceeds the 10MB limit")
	// ErrNotFound is returned when a note id does not exist.
	ErrNotFound = errors.New("note not found")
)

// UploadInput holds the note metadata and file attributes supplied with an upload.
type UploadInput struct {
	Title       string
	Description string
	University  string
	Degree      string
	Semester    string
	Subject     string
	FileName    string
	ContentType string
	Size        int64
}

// NoteService defines the use cases for uploading, listing, and downloading notes.
type NoteService interface {
	// Upload validates the file (PDF only, size cap), stores the blob, saves
	// the note record, and rolls back the blob if the DB save fails. The
	// returned note carries the uploader's name/email joined in.
	Upload(ctx context.Context, uploader *model.User, r io.Reader, in UploadInput) (*model.Note, error)

	// List returns notes matching the filter, newest first.
	List(ctx context.Context, f repository.NoteFilter) ([]model.Note, error)

	// Download atomically increments the note's download counter and returns
	// the note so the caller can redirect to its file URL.
	Download(ctx context.Context, id string) (*model.Note, error)

	// FilterOptions returns the distinct classification values across all notes.
	FilterOptions(ctx context.Context) (*repository.FilterOptions, error)
}

type noteService struct {
	store storage.Storage
	repo  repository.NoteRepository
}

// NewNoteService constructs a new NoteService.
func NewNoteService(store storage.Storage, repo repository.NoteRepository) NoteService {
	return &noteService{store: store, repo: repo}
}

func (s *noteService) Upload(ctx context.Context, uploader *model.User, r io.Reader, in UploadInput) (*model.Note, error) {
	// All validation happens before any storage call.
	if r == nil || in.Size <= 0 {
		return nil, ErrMissingFile
	}
	if in.ContentType != pdfContentType {
		return nil, ErrUnsupportedFileType
	}
	if in.Size > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	key, err := storageKey(in.FileName)
	if err != nil {
		return nil, fmt.Errorf("generate storage key: %w", err)
	}

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: in.ContentType,
		Metadata: map[string]string{
			"original-filename": in.FileName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	note := &model.Note{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		University:  in.University,
		Degree:      in.Degree,
		Semester:    in.Semester,
		Subject:     in.Subject,
		FileName:    in.FileName,
		FileURL:     s.store.PublicURL(objInfo.Key),
		FileSize:    objInfo.Size,
		Uploader:    model.Uploader{ID: uploader.ID},
	}
	stored, err := s.repo.Create(ctx, note)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	// Read-model convenience: join the owner in, not stored redundantly.
	stored.Uploader = model.Uploader{ID: uploader.ID, Name: uploader.Name, Email: uploader.Email}
	return stored, nil
}

func (s *noteService) List(ctx context.Context, f repository.NoteFilter) ([]model.Note, error) {
	return s.repo.List(ctx, f)
}

func (s *noteService) Download(ctx context.Context, id string) (*model.Note, error) {
	note, err := s.repo.IncrementDownloads(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("increment downloads: %w", err)
	}
	return note, nil
}

func (s *noteService) FilterOptions(ctx context.Context) (*repository.FilterOptions, error) {
	return s.repo.DistinctFilterValues(ctx)
}

var nonKeyChars = regexp.MustCompile(`[^a-zA-Z0-9-_]`)

// sanitizeFileName strips the extension, replaces anything outside
// [A-Za-z0-9-_] with dashes, and lowercases the result.
func sanitizeFileName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return strings.ToLower(nonKeyChars.ReplaceAllString(base, "-"))
}

// storageKey builds a collision-resistant key: a unix-millis timestamp plus a
// random suffix keeps concurrent uploads of identically-named files apart.
func storageKey(originalFilename string) (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%d-%s-%s.pdf",
		storageFolder,
		time.Now().UnixMilli(),
		hex.EncodeToString(b),
		sanitizeFileName(originalFilename),
	), nil
}
