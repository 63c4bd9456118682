package mocks

import (
	"context"
	"io"

	"notesapi/internal/model"
	"notesapi/internal/repository"
	"notesapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockNoteService struct {
	mock.Mock
}

func (m *MockNoteService) Upload(ctx context.Context, uploader *model.User, r io.Reader, in service.UploadInput) (*model.Note, error) {
	args := m.Called(ctx, uploader, r, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Note), args.Error(1)
}

func (m *MockNoteService) List(ctx context.Context, f repository.NoteFilter) ([]model.Note, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Note), args.Error(1)
}

func (m *MockNoteService) Download(ctx context.Context, id string) (*model.Note, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Note), args.Error(1)
}

func (m *MockNoteService) FilterOptions(ctx context.Context) (*repository.FilterOptions, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.FilterOptions), args.Error(1)
}
