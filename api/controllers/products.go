package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-backend/api/responses"
	"github.com/angelmondragon/catalog-backend/api/validators"
	"github.com/angelmondragon/catalog-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/angelmondragon/catalog-backend/pkg/logger"
	"github.com/angelmondragon/catalog-backend/pkg/pagination"
)

const maxSearchLength = 100

// variantRequest uses pointers so an omitted price or qty is rejected instead of read as zero.
type variantRequest struct {
	Ram   string           `json:"ram" validate:"required,max=100"`
	Price *decimal.Decimal `json:"price" validate:"required"`
	Qty   *int             `json:"qty" validate:"required"`
}

type productRequest struct {
	Name          *string           `json:"name" validate:"omitempty,max=200"`
	Description   *string           `json:"description" validate:"omitempty,max=5000"`
	Image         *string           `json:"image" validate:"omitempty,max=2048"`
	CategoryID    *string           `json:"categoryId"`
	SubCategoryID *string           `json:"subCategoryId"`
	Variants      *[]variantRequest `json:"variants" validate:"omitempty,dive"`
}

func (p productRequest) variants() *[]catalog.VariantInput {
	if p.Variants == nil {
		return nil
	}
	out := make([]catalog.VariantInput, 0, len(*p.Variants))
	for _, v := range *p.Variants {
		out = append(out, catalog.VariantInput{Ram: v.Ram, Price: *v.Price, Qty: *v.Qty})
	}
	return &out
}

// ProductList serves GET /products?categoryId=&subCategoryId=&search=&page=&limit=.
func ProductList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.ListProducts(r.Context(), catalog.ListProductsInput{
			CategoryID:    validators.QueryString(r, "categoryId", 64),
			SubCategoryID: validators.QueryString(r, "subCategoryId", 64),
			Search:        validators.QueryString(r, "search", maxSearchLength),
			Page:          validators.QueryPositiveInt(r, "page", pagination.DefaultPage),
			Limit:         validators.QueryPositiveInt(r, "limit", pagination.DefaultLimit),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ProductGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id", pkgerrors.EntityProduct, msgProductNotFound)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func ProductCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body productRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := catalog.CreateProductInput{
			Name:          deref(body.Name),
			Description:   deref(body.Description),
			Image:         deref(body.Image),
			CategoryID:    deref(body.CategoryID),
			SubCategoryID: deref(body.SubCategoryID),
		}
		if v := body.variants(); v != nil {
			input.Variants = *v
		}

		created, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// ProductUpdate applies a partial update; omitted fields keep their values.
func ProductUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id", pkgerrors.EntityProduct, msgProductNotFound)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body productRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateProduct(r.Context(), id, catalog.UpdateProductInput{
			Name:          body.Name,
			Description:   body.Description,
			Image:         body.Image,
			CategoryID:    body.CategoryID,
			SubCategoryID: body.SubCategoryID,
			Variants:      body.variants(),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func ProductDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id", pkgerrors.EntityProduct, msgProductNotFound)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, "Product deleted successfully")
	}
}
