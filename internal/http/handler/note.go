package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"notesapi/internal/http/middleware"
	"notesapi/internal/model"
	"notesapi/internal/repository"
	"notesapi/internal/service"
)

// UploadNote handles an authenticated multipart upload (field name: file)
// with the note's classification metadata as form values.
func UploadNote(noteSvc service.NoteService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := middleware.AuthenticatedUser(c)
		if user == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authorization required")
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "please upload a PDF file")
		}

		in := service.UploadInput{
			Title:       c.FormValue("title"),
			Description: c.FormValue("description"),
			University:  c.FormValue("university"),
			Degree:      c.FormValue("degree"),
			Semester:    c.FormValue("semester"),
			Subject:     c.FormValue("subject"),
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
		}
		if in.Title == "" || in.University == "" || in.Degree == "" || in.Semester == "" || in.Subject == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "title, university, degree, semester, and subject are required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		note, err := noteSvc.Upload(c.UserContext(), user, f, in)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrMissingFile):
				return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "please upload a PDF file")
			case errors.Is(err, service.ErrUnsupportedFileType):
				return writeError(c, fiber.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "only PDF files are allowed")
			case errors.Is(err, service.ErrFileTooLarge):
				return writeError(c, fiber.StatusBadRequest, "FILE_TOO_LARGE", "file size too large, maximum size is 10MB")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"message": "note uploaded successfully",
			"note":    note,
		})
	}
}

// ListNotes returns notes matching optional query filters, newest first.
func ListNotes(noteSvc service.NoteService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := repository.NoteFilter{
			University: c.Query("university"),
			Degree:     c.Query("degree"),
			Semester:   c.Query("semester"),
			Subject:    c.Query("subject"),
			Search:     c.Query("search"),
		}

		notes, err := noteSvc.List(c.UserContext(), filter)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		if notes == nil {
			notes = []model.Note{}
		}

		return c.JSON(fiber.Map{
			"success": true,
			"count":   len(notes),
			"notes":   notes,
		})
	}
}

// DownloadNote increments the download counter and redirects to the blob URL.
// The file bytes are served by the object store, not proxied here.
func DownloadNote(noteSvc service.NoteService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "note not found")
		}

		note, err := noteSvc.Download(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "note not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		return c.Redirect(note.FileURL, fiber.StatusFound)
	}
}

// GetFilterOptions returns the distinct classification values for dropdowns.
func GetFilterOptions(noteSvc service.NoteService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		opts, err := noteSvc.FilterOptions(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"filters": opts,
		})
	}
}
