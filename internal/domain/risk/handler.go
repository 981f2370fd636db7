package risk

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/basira/care-server/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("nurse", "physician", "supervisor"))
	read.GET("/beneficiaries/:id/risk", h.AssessBeneficiary)
	read.GET("/wards/tension", h.WardTension)
}

func (h *Handler) AssessBeneficiary(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	assessment, err := h.svc.Assess(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "beneficiary not found")
	}
	return c.JSON(http.StatusOK, assessment)
}

func (h *Handler) WardTension(c echo.Context) error {
	tension, err := h.svc.WardTension(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"tension": tension})
}
