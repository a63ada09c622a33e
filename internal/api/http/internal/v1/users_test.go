package v1

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteUser(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "user1", "user1@example.com", "password1")
	access, cookie := s.login(t, "user1", "password1")

	session, err := s.tokens.ParseRefreshToken(cookie.Value)
	require.NoError(t, err)
	path := "/api/v1/users/" + session.UserID.String()

	w := s.do(t, request{method: http.MethodDelete, path: path})
	assert.Equal(t, http.StatusUnauthorized, w.Code, "no basic auth")

	w = s.do(t, request{method: http.MethodDelete, path: path, admin: true})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, request{method: http.MethodDelete, path: path, admin: true})
	assert.Equal(t, http.StatusNotFound, w.Code, "already deleted")

	w = s.do(t, request{method: http.MethodPost, path: "/api/v1/auth/refresh-token", cookie: cookie})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, request{method: http.MethodGet, path: "/api/v1/auth/me", bearer: access})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, request{
		method: http.MethodPost,
		path:   "/api/v1/auth/login",
		body:   map[string]string{"loginOrEmail": "user1", "password": "password1"},
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteUserNotFound(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, request{method: http.MethodDelete, path: "/api/v1/users/" + uuid.NewString(), admin: true})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, request{method: http.MethodDelete, path: "/api/v1/users/42", admin: true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
