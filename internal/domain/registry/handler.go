package registry

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/basira/care-server/internal/platform/auth"
	"github.com/basira/care-server/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("nurse", "physician", "supervisor"))
	read.GET("/beneficiaries", h.ListBeneficiaries)
	read.GET("/beneficiaries/:id", h.GetBeneficiary)
}

func (h *Handler) GetBeneficiary(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.GetBeneficiary(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "beneficiary not found")
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) ListBeneficiaries(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListBeneficiaries(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
