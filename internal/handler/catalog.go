package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/salon-booking/internal/model"
	"github.com/iliyamo/salon-booking/internal/service"
)

// Catalog is the treatment catalog.  *service.CatalogService implements it.
type Catalog interface {
	List(ctx context.Context, category string) ([]model.Service, error)
	Categories(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id uint64) (model.Service, error)
	Create(ctx context.Context, in service.NewServiceInput) (model.Service, error)
	SetActive(ctx context.Context, id uint64, active bool) error
}

// CatalogHandler exposes the public catalog.  Responses are cacheable.
type CatalogHandler struct {
	Catalog Catalog
}

func NewCatalogHandler(c Catalog) *CatalogHandler { return &CatalogHandler{Catalog: c} }

// List handles GET /v1/services[?category=].
func (h *CatalogHandler) List(c echo.Context) error {
	list, err := h.Catalog.List(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		return writeError(c, err, nil)
	}
	if list == nil {
		list = []model.Service{}
	}
	return c.JSON(http.StatusOK, echo.Map{"services": list, "count": len(list)})
}

// Categories handles GET /v1/services/categories.
func (h *CatalogHandler) Categories(c echo.Context) error {
	cats, err := h.Catalog.Categories(c.Request().Context())
	if err != nil {
		return writeError(c, err, nil)
	}
	if cats == nil {
		cats = []string{}
	}
	return c.JSON(http.StatusOK, echo.Map{"categories": cats})
}

// Get handles GET /v1/services/:id.
func (h *CatalogHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid service id")
	}
	svc, err := h.Catalog.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(http.StatusOK, svc)
}
