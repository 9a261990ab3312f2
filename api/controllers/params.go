package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/api/middleware"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
)

const (
	msgCategoryNotFound    = "Category not found"
	msgSubCategoryNotFound = "Subcategory not found"
	msgProductNotFound     = "Product not found"
)

// pathID parses a uuid route parameter. A malformed id can never match a
// record, so it reports the entity as missing rather than as bad input.
func pathID(r *http.Request, key, entity, notFound string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, key)))
	if err != nil {
		return uuid.Nil, pkgerrors.NotFound(entity, notFound)
	}
	return id, nil
}

func currentUser(r *http.Request) (string, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "No token, authorization denied")
	}
	return userID, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
