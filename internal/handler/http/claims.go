package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/hrplatform/attendance-backend-go/internal/domain/directory"
)

var errMissingUserClaim = errors.New("token is missing the user_id claim")

func userIDFromContext(r *http.Request) (string, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", err
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", errMissingUserClaim
	}

	return userID, nil
}

func isAdminFromContext(r *http.Request) bool {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return false
	}

	role, ok := claims["role"].(string)
	return ok && directory.Role(role) == directory.RoleAdmin
}
