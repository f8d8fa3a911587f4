package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct{}

func (stubVerifier) VerifyToken(ctx context.Context, token string) (string, error) {
	if token == "valid" {
		return "S1", nil
	}
	return "", stderrors.New("invalid token")
}

func TestAuthenticate(t *testing.T) {
	e := echo.New()
	m := NewAuthMiddleware(stubVerifier{})
	h := m.Authenticate(func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get("uid").(string))
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer valid", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			err := h(e.NewContext(req, rec))
			if tt.status == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, "S1", rec.Body.String())
				return
			}
			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.Code)
		})
	}
}
