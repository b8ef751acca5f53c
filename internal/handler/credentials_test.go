package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/tagship/tagship/internal/store"
)

type MockCredentialService struct {
	mock.Mock
}

func (m *MockCredentialService) CreateCredential(
	ctx context.Context,
	name, description, token string,
) (*store.Credential, error) {
	args := m.Called(ctx, name, description, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.Credential), args.Error(1)
}

func (m *MockCredentialService) ListCredentials(
	ctx context.Context,
) ([]*store.Credential, error) {
	args := m.Called(ctx)
	var credentials []*store.Credential
	if args.Get(0) != nil {
		credentials = args.Get(0).([]*store.Credential)
	}
	return credentials, args.Error(1)
}

func (m *MockCredentialService) UpdateCredential(
	ctx context.Context,
	credentialID int64,
	name, description string,
) error {
	args := m.Called(ctx, credentialID, name, description)
	return args.Error(0)
}

func (m *MockCredentialService) DeleteCredential(
	ctx context.Context,
	credentialID int64,
) error {
	args := m.Called(ctx, credentialID)
	return args.Error(0)
}

func TestCredentialHandler_PostCredential(t *testing.T) {
	t.Run("success - credential created without echoing the token", func(t *testing.T) {
		// arrange
		mockCredentialService := new(MockCredentialService)
		mockCredentialService.On(
			"CreateCredential", mock.Anything, "github", "release publishing", "ghp_example",
		).Return(&store.Credential{
			CredentialID: 1,
			Name:         "github",
			Description:  "release publishing",
			TokenHash:    "abc123",
		}, nil)

		e := echo.New()
		c, rec := newJSONContext(
			e, http.MethodPost, "/credentials",
			`{"name": "github", "description": "release publishing", "token": "ghp_example"}`,
		)
		h := NewCredentialHandler(mockCredentialService)

		// act
		err := h.PostCredential(c)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `"name":"github"`)
		assert.NotContains(t, body, "ghp_example")
		assert.NotContains(t, body, "abc123")
		mockCredentialService.AssertExpectations(t)
	})

	t.Run("fail - missing token", func(t *testing.T) {
		// arrange
		mockCredentialService := new(MockCredentialService)
		e := echo.New()
		c, _ := newJSONContext(
			e, http.MethodPost, "/credentials", `{"name": "github"}`,
		)
		h := NewCredentialHandler(mockCredentialService)

		// act
		err := h.PostCredential(c)

		// assert
		var httpErr *echo.HTTPError
		assert.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		mockCredentialService.AssertNotCalled(t, "CreateCredential")
	})

	t.Run("fail - store error", func(t *testing.T) {
		// arrange
		mockCredentialService := new(MockCredentialService)
		mockCredentialService.On(
			"CreateCredential", mock.Anything, "github", "", "ghp_example",
		).Return(nil, assert.AnError)

		e := echo.New()
		c, _ := newJSONContext(
			e, http.MethodPost, "/credentials",
			`{"name": "github", "token": "ghp_example"}`,
		)
		h := NewCredentialHandler(mockCredentialService)

		// act
		err := h.PostCredential(c)

		// assert
		var httpErr *echo.HTTPError
		assert.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
	})
}

func TestCredentialHandler_GetCredentials(t *testing.T) {
	t.Run("success - token hashes never leave the store", func(t *testing.T) {
		// arrange
		mockCredentialService := new(MockCredentialService)
		mockCredentialService.On("ListCredentials", mock.Anything).Return(
			[]*store.Credential{
				{CredentialID: 1, Name: "github", TokenHash: "abc123"},
			}, nil)

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/credentials", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		h := NewCredentialHandler(mockCredentialService)

		// act
		err := h.GetCredentials(c)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `"name":"github"`)
		assert.NotContains(t, body, "abc123")
	})
}

func TestCredentialHandler_DeleteCredential(t *testing.T) {
	t.Run("success - credential deleted", func(t *testing.T) {
		// arrange
		mockCredentialService := new(MockCredentialService)
		mockCredentialService.On("DeleteCredential", mock.Anything, int64(1)).Return(nil)

		e := echo.New()
		req := httptest.NewRequest(http.MethodDelete, "/credentials/1", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("credential_id")
		c.SetParamValues("1")
		h := NewCredentialHandler(mockCredentialService)

		// act
		err := h.DeleteCredential(c)

		// assert
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		mockCredentialService.AssertExpectations(t)
	})
}
