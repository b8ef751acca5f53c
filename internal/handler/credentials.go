package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tagship/tagship/internal/store"
)

type CredentialServicer interface {
	CreateCredential(
		ctx context.Context,
		name, description, token string,
	) (*store.Credential, error)
	ListCredentials(ctx context.Context) ([]*store.Credential, error)
	UpdateCredential(ctx context.Context, credentialID int64, name, description string) error
	DeleteCredential(ctx context.Context, credentialID int64) error
}

// Credential routes share the webhook key guard: the server has no user
// accounts, so the trigger key doubles as the admin key.
func SetupCredentialRoutes(
	e *echo.Echo,
	credentialService CredentialServicer,
	webhookKey string,
) {
	h := NewCredentialHandler(credentialService)
	g := e.Group("/credentials", WebhookKeyAuth(webhookKey))
	g.POST("", h.PostCredential)
	g.GET("", h.GetCredentials)
	g.PATCH("/:credential_id", h.PatchCredential)
	g.DELETE("/:credential_id", h.DeleteCredential)
}

type CredentialHandler struct {
	credentialService CredentialServicer
}

func NewCredentialHandler(credentialService CredentialServicer) *CredentialHandler {
	return &CredentialHandler{credentialService: credentialService}
}

type credentialResponse struct {
	CredentialID int64  `json:"credential_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
}

func (h *CredentialHandler) PostCredential(c echo.Context) error {
	cp := new(CredentialParams)
	if err := c.Bind(cp); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid credential data")
	}
	if cp.Name == "" || cp.Token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and token are required")
	}

	cred, err := h.credentialService.CreateCredential(
		c.Request().Context(), cp.Name, cp.Description, cp.Token,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return echo.NewHTTPError(http.StatusConflict, "credential name already in use")
		}
		return newError(err, http.StatusInternalServerError, "unable to create credential")
	}

	return c.JSON(http.StatusCreated, credentialResponse{
		CredentialID: cred.CredentialID,
		Name:         cred.Name,
		Description:  cred.Description,
	})
}

func (h *CredentialHandler) GetCredentials(c echo.Context) error {
	credentials, err := h.credentialService.ListCredentials(c.Request().Context())
	if err != nil {
		return newError(err, http.StatusInternalServerError, "unable to list credentials")
	}

	res := make([]credentialResponse, 0, len(credentials))
	for _, cred := range credentials {
		res = append(res, credentialResponse{
			CredentialID: cred.CredentialID,
			Name:         cred.Name,
			Description:  cred.Description,
		})
	}
	return c.JSON(http.StatusOK, res)
}

func (h *CredentialHandler) PatchCredential(c echo.Context) error {
	cp := new(CredentialParams)
	if err := c.Bind(cp); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid credential data")
	}

	if err := h.credentialService.UpdateCredential(
		c.Request().Context(), cp.CredentialID, cp.Name, cp.Description,
	); err != nil {
		return newError(err, http.StatusInternalServerError, "unable to update credential")
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CredentialHandler) DeleteCredential(c echo.Context) error {
	cp := new(CredentialParams)
	if err := c.Bind(cp); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid credential id")
	}

	if err := h.credentialService.DeleteCredential(
		c.Request().Context(), cp.CredentialID,
	); err != nil {
		return newError(err, http.StatusInternalServerError, "unable to delete credential")
	}

	return c.NoContent(http.StatusNoContent)
}
