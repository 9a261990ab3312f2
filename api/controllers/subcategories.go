package controllers

import (
	"net/http"

	"github.com/angelmondragon/catalog-backend/api/responses"
	"github.com/angelmondragon/catalog-backend/api/validators"
	"github.com/angelmondragon/catalog-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
)

type subCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	CategoryID  *string `json:"categoryId"`
}

func SubCategoryList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListSubCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func SubCategoryListByCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := pathID(r, "categoryId", pkgerrors.EntityCategory, msgCategoryNotFound)
		if err != nil {
			// an unparseable id simply has no subcategories
			responses.WriteSuccess(w, []catalog.SubCategoryDTO{})
			return
		}
		items, err := svc.ListSubCategoriesByCategory(r.Context(), categoryID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func SubCategoryCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body subCategoryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateSubCategory(r.Context(), catalog.CreateSubCategoryInput{
			Name:        deref(body.Name),
			Description: deref(body.Description),
			CategoryID:  deref(body.CategoryID),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func SubCategoryUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id", pkgerrors.EntitySubCategory, msgSubCategoryNotFound)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body subCategoryRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateSubCategory(r.Context(), id, catalog.UpdateSubCategoryInput{
			Name:        body.Name,
			Description: body.Description,
			CategoryID:  body.CategoryID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func SubCategoryDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id", pkgerrors.EntitySubCategory, msgSubCategoryNotFound)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteSubCategory(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "Subcategory deleted successfully")
	}
}
