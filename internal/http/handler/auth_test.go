package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"notesapi/internal/model"
	"notesapi/internal/service"
	serviceMocks "notesapi/internal/service/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewBuffer(b)
}

func TestRegister(t *testing.T) {
	mockSvc := new(serviceMocks.MockAuthService)
	app := fiber.New()
	app.Post("/auth/register", Register(mockSvc))

	t.Run("success", func(t *testing.T) {
		expected := &service.AuthResult{
			Token: "signed.jwt.token",
			User: model.Profile{
				ID:         uuid.New().String(),
				Name:       "Ana",
				Email:      "ana@example.com",
				University: "UPM",
			},
		}
		mockSvc.On("Register", mock.Anything, service.RegisterInput{
			Name:       "Ana",
			Email:      "ana@example.com",
			Password:   "s3cret",
			University: "UPM",
		}).Return(expected, nil).Once()

		body := jsonBody(t, map[string]string{
			"name":       "Ana",
			"email":      "ana@example.com",
			"password":   "s3cret",
			"university": "UPM",
		})
		req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result authResponse
		json.NewDecoder(resp.Body).Decode(&result)
		assert.True(t, result.Success)
		assert.Equal(t, expected.Token, result.Token)
		assert.Equal(t, "ana@example.com", result.User.Email)
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("{not json"))
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_INPUT", res.Error.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		body := jsonBody(t, map[string]string{"email": "ana@example.com"})
		req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_INPUT", res.Error.Code)
	})

	t.Run("duplicate user", func(t *testing.T) {
		mockSvc.On("Register", mock.Anything, mock.Anything).
			Return(nil, service.ErrDuplicateUser).Once()

		body := jsonBody(t, map[string]string{
			"name": "Ana", "email": "ana@example.com", "password": "s3cret", "university": "UPM",
		})
		req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "DUPLICATE_USER", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Register", mock.Anything, mock.Anything).
			Return(nil, errors.New("db down")).Once()

		body := jsonBody(t, map[string]string{
			"name": "Ana", "email": "ana@example.com", "password": "s3cret", "university": "UPM",
		})
		req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestLogin(t *testing.T) {
	mockSvc := new(serviceMocks.MockAuthService)
	app := fiber.New()
	app.Post("/auth/login", Login(mockSvc))

	t.Run("success", func(t *testing.T) {
		expected := &service.AuthResult{
			Token: "signed.jwt.token",
			User:  model.Profile{ID: uuid.New().String(), Email: "ana@example.com"},
		}
		mockSvc.On("Login", mock.Anything, "ana@example.com", "s3cret").
			Return(expected, nil).Once()

		body := jsonBody(t, map[string]string{"email": "ana@example.com", "password": "s3cret"})
		req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result authResponse
		json.NewDecoder(resp.Body).Decode(&result)
		assert.True(t, result.Success)
		assert.Equal(t, expected.Token, result.Token)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing fields", func(t *testing.T) {
		body := jsonBody(t, map[string]string{"email": "ana@example.com"})
		req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_INPUT", res.Error.Code)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		mockSvc.On("Login", mock.Anything, "ana@example.com", "wrong").
			Return(nil, service.ErrInvalidCredentials).Once()

		body := jsonBody(t, map[string]string{"email": "ana@example.com", "password": "wrong"})
		req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_CREDENTIALS", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Login", mock.Anything, "ana@example.com", "s3cret").
			Return(nil, errors.New("db down")).Once()

		body := jsonBody(t, map[string]string{"email": "ana@example.com", "password": "s3cret"})
		req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}
