package http

import (
	"net/http"

	"github.com/DRSN-tech/catalog-admin/internal/usecase"
	"github.com/DRSN-tech/catalog-admin/pkg/logger"
)

const maxReferenceBody = 64 << 10

// CatalogHandler обслуживает справочники категорий и производителей.
type CatalogHandler struct {
	catalogUsecase usecase.CatalogUC
	dev            bool
	logger         logger.Logger
}

func NewCatalogHandler(catalogUsecase usecase.CatalogUC, dev bool, logger logger.Logger) *CatalogHandler {
	return &CatalogHandler{catalogUsecase: catalogUsecase, dev: dev, logger: logger}
}

func (c *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.catalogUsecase.ListCategories(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}

	out := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, *toCategoryResponse(&categories[i]))
	}
	WriteSuccess(w, http.StatusOK, out)
}

func (c *CatalogHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	in, err := readReference(w, r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	category, err := c.catalogUsecase.CreateCategory(r.Context(), &usecase.CategoryReq{
		Name:        in.Name,
		Description: in.Description,
	})
	if err != nil {
		c.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toCategoryResponse(category))
}

func (c *CatalogHandler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	in, err := readReference(w, r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	category, err := c.catalogUsecase.UpdateCategory(r.Context(), &usecase.CategoryReq{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
	})
	if err != nil {
		c.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toCategoryResponse(category))
}

func (c *CatalogHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	if err := c.catalogUsecase.DeleteCategory(r.Context(), id); err != nil {
		c.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]bool{"success": true})
}

func (c *CatalogHandler) listManufacturers(w http.ResponseWriter, r *http.Request) {
	manufacturers, err := c.catalogUsecase.ListManufacturers(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}

	out := make([]ManufacturerResponse, 0, len(manufacturers))
	for i := range manufacturers {
		out = append(out, *toManufacturerResponse(&manufacturers[i]))
	}
	WriteSuccess(w, http.StatusOK, out)
}

func (c *CatalogHandler) createManufacturer(w http.ResponseWriter, r *http.Request) {
	in, err := readReference(w, r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	manufacturer, err := c.catalogUsecase.CreateManufacturer(r.Context(), &usecase.ManufacturerReq{
		Name:        in.Name,
		Description: in.Description,
	})
	if err != nil {
		c.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, toManufacturerResponse(manufacturer))
}

func (c *CatalogHandler) updateManufacturer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	in, err := readReference(w, r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	manufacturer, err := c.catalogUsecase.UpdateManufacturer(r.Context(), &usecase.ManufacturerReq{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
	})
	if err != nil {
		c.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toManufacturerResponse(manufacturer))
}

func (c *CatalogHandler) deleteManufacturer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	if err := c.catalogUsecase.DeleteManufacturer(r.Context(), id); err != nil {
		c.fail(w, r, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]bool{"success": true})
}

func readReference(w http.ResponseWriter, r *http.Request) (*referenceInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxReferenceBody)

	var in referenceInput
	if err := decodeJSON(r, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

func (c *CatalogHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	logFailure(c.logger, r, err)
	WriteError(w, err, c.dev)
}
