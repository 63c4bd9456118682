package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"

	"notesapi/internal/model"
	"notesapi/internal/repository"
	repoMocks "notesapi/internal/repository/mocks"
	"notesapi/internal/storage"
	storeMocks "notesapi/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testUploader = &model.User{
	ID:    "user-id",
	Name:  "Alice",
	Email: "alice@example.com",
}

func pdfInput(size int64) UploadInput {
	return UploadInput{
		Title:       "Calculus Midterm Notes",
		Description: "Derivatives and integrals",
		University:  "MIT",
		Degree:      "BSc",
		Semester:    "3",
		Subject:     "Calculus",
		FileName:    "Calc Notes (v2).pdf",
		ContentType: "application/pdf",
		Size:        size,
	}
}

func TestNoteService_Upload(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		input      UploadInput
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockNoteRepository) io.Reader
		wantErr    error
		wantErrMsg string
		checkNote  func(t *testing.T, note *model.Note)
	}{
		{
			name:  "happy path",
			input: pdfInput(11),
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockNoteRepository) io.Reader {
				r := strings.NewReader("hello world")
				mStore.On("Put", ctx, mock.MatchedBy(func(key string) bool {
					// Sanitized key: extension stripped, specials dashed, lowercased.
					return strings.HasPrefix(key, "notes-pdfs/") &&
						strings.HasSuffix(key, "-calc-notes--v2-.pdf")
				}), r, storage.PutObjectOptions{
					Size:        11,
					ContentType: "application/pdf",
					Metadata:    map[string]string{"original-filename": "Calc Notes (v2).pdf"},
				}).Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
					return storage.ObjectInfo{Key: key, Size: opt.Size, ContentType: opt.ContentType}
				}, nil)
				mStore.On("PublicURL", mock.Anything).Return("https://cdn.example.com/obj.pdf")

				mRepo.On("Create", ctx, mock.MatchedBy(func(n *model.Note) bool {
					return n.ID != "" &&
						n.FileName == "Calc Notes (v2).pdf" &&
						n.FileURL == "https://cdn.example.com/obj.pdf" &&
						n.FileSize == 11 &&
						n.Uploader.ID == "user-id"
				})).Return(func(ctx context.Context, n *model.Note) *model.Note {
					return n
				}, nil)

				return r
			},
			checkNote: func(t *testing.T, note *model.Note) {
				assert.Equal(t, "Alice", note.Uploader.Name)
				assert.Equal(t, "alice@example.com", note.Uploader.Email)
			},
		},
		{
			name:  "missing file - nil reader",
			input: pdfInput(11),
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockNoteRepository) io.Reader {
				return nil
			},
			wantErr: ErrMissingFile,
		},
		{
			name:  "missing file - zero size",
			input: pdfInput(0),
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockNoteRepository) io.Reader {
				return strings.NewReader("")
			},
			wantErr: ErrMissingFile,
		},
		{
			name: "non-PDF rejected before any storage call",
			input: func() UploadInput {
				in := pdfInput(11)
				in.ContentType = "image/png"
				return in
			}(),
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockNoteRepository) io.Reader {
				return strings.NewReader("hello world")
			},
			wantErr: ErrUnsupportedFileType,
		},
		{
			name:  "oversize rejected before any storage call",
			input: pdfInput(MaxFileSize + 1),
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockNoteRepository) io.Reader {
				return strings.NewReader("pretend this is huge")
			},
			wantErr: ErrFileTooLarge,
		},
		{
			name:  "exactly at the cap is accepted",
			input: pdfInput(MaxFileSize),
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockNoteRepository) io.Reader {
				r := strings.NewReader("content")
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(storage.ObjectInfo{Key: "notes-pdfs/k.pdf", Size: MaxFileSize}, nil)
				mStore.On("PublicURL", "notes-pdfs/k.pdf").Return("https://cdn/k.pdf")
				mRepo.On("Create", ctx, mock.Anything).
					Return(&model.Note{ID: "gen-id"}, nil)
				return r
			},
		},
		{
			name:  "storage error",
			input: pdfInput(5),
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockNoteRepository) io.Reader {
				r := strings.NewReader("hello")
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
				return r
			},
			wantErrMsg: "upload to storage: storage fail",
		},
		{
			name:  "repository error with successful rollback",
			input: pdfInput(5),
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockNoteRepository) io.Reader {
				r := strings.NewReader("hello")
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
						return storage.ObjectInfo{Key: key}
					}, nil)
				mStore.On("PublicURL", mock.Anything).Return("https://cdn/x.pdf")
				mRepo.On("Create", ctx, mock.Anything).
					Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, mock.Anything).Return(nil)
				return r
			},
			wantErrMsg: "db save failed: db fail",
		},
		{
			name:  "repository error with failed rollback",
			input: pdfInput(5),
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockNoteRepository) io.Reader {
				r := strings.NewReader("hello")
				mStore.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
						return storage.ObjectInfo{Key: key}
					}, nil)
				mStore.On("PublicURL", mock.Anything).Return("https://cdn/x.pdf")
				mRepo.On("Create", ctx, mock.Anything).
					Return(nil, errors.New("db fail"))
				mStore.On("Delete", ctx, mock.Anything).Return(errors.New("delete fail"))
				return r
			},
			wantErrMsg: "rollback delete failed: delete fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockNoteRepository)
			svc := NewNoteService(mStore, mRepo)

			r := tt.setupMocks(mStore, mRepo)

			note, err := svc.Upload(ctx, testUploader, r, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else if tt.wantErrMsg != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, note)
				if tt.checkNote != nil {
					tt.checkNote(t, note)
				}
			}

			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestNoteService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("passes the filter through", func(t *testing.T) {
		mRepo := new(repoMocks.MockNoteRepository)
		f := repository.NoteFilter{Subject: "calc", Search: "midterm"}
		mRepo.On("List", ctx, f).Return([]model.Note{{ID: "n1"}}, nil)

		svc := NewNoteService(nil, mRepo)
		notes, err := svc.List(ctx, f)

		assert.NoError(t, err)
		assert.Len(t, notes, 1)
		mRepo.AssertExpectations(t)
	})

	t.Run("repository error", func(t *testing.T) {
		mRepo := new(repoMocks.MockNoteRepository)
		mRepo.On("List", ctx, mock.Anything).Return(nil, errors.New("db fail"))

		svc := NewNoteService(nil, mRepo)
		notes, err := svc.List(ctx, repository.NoteFilter{})

		assert.Error(t, err)
		assert.Nil(t, notes)
	})
}

func TestNoteService_Download(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		id         string
		setupMocks func(mRepo *repoMocks.MockNoteRepository)
		wantErr    error
		wantURL    string
	}{
		{
			name: "happy path",
			id:   "note-id",
			setupMocks: func(mRepo *repoMocks.MockNoteRepository) {
				mRepo.On("IncrementDownloads", ctx, "note-id").
					Return(&model.Note{ID: "note-id", FileURL: "https://cdn/x.pdf", Downloads: 3}, nil)
			},
			wantURL: "https://cdn/x.pdf",
		},
		{
			name: "not found - mapping sql.ErrNoRows",
			id:   "missing",
			setupMocks: func(mRepo *repoMocks.MockNoteRepository) {
				mRepo.On("IncrementDownloads", ctx, "missing").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "counter write failure is not not-found",
			id:   "note-id",
			setupMocks: func(mRepo *repoMocks.MockNoteRepository) {
				mRepo.On("IncrementDownloads", ctx, "note-id").Return(nil, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockNoteRepository)
			svc := NewNoteService(nil, mRepo)

			tt.setupMocks(mRepo)

			note, err := svc.Download(ctx, tt.id)

			if tt.wantErr != nil {
				assert.Error(t, err)
				if errors.Is(tt.wantErr, ErrNotFound) {
					assert.ErrorIs(t, err, ErrNotFound)
				} else {
					assert.NotErrorIs(t, err, ErrNotFound)
				}
				assert.Nil(t, note)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantURL, note.FileURL)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestNoteService_FilterOptions(t *testing.T) {
	ctx := context.Background()

	mRepo := new(repoMocks.MockNoteRepository)
	mRepo.On("DistinctFilterValues", ctx).Return(&repository.FilterOptions{
		Universities: []string{"MIT"},
		Degrees:      []string{"BSc"},
		Semesters:    []string{"3"},
		Subjects:     []string{"Calculus"},
	}, nil)

	svc := NewNoteService(nil, mRepo)
	opts, err := svc.FilterOptions(ctx)

	assert.NoError(t, err)
	assert.Equal(t, []string{"MIT"}, opts.Universities)
	mRepo.AssertExpectations(t)
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Calc Notes (v2).pdf", "calc-notes--v2-"},
		{"simple.pdf", "simple"},
		{"Algebra_II-final.PDF", "algebra_ii-final"},
		{"weird名前!.pdf", "weird---"},
		{"noextension", "noextension"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFileName(tt.in), "input %q", tt.in)
	}
}
