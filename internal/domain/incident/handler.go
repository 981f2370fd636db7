package incident

import (
	"net/http"
	"time"

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
	staff := api.Group("", auth.RequireRole("nurse", "physician", "supervisor"))
	staff.POST("/incidents", h.CreateReport)
	staff.GET("/incidents", h.ListReports)
	staff.GET("/incidents/:id", h.GetReport)
}

type createReportRequest struct {
	BeneficiaryID *uuid.UUID `json:"beneficiary_id"`
	Category      string     `json:"category"`
	Severity      string     `json:"severity"`
	Description   string     `json:"description"`
	OccurredAt    time.Time  `json:"occurred_at"`
	Anonymous     bool       `json:"anonymous"`
}

func (h *Handler) CreateReport(c echo.Context) error {
	var req createReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	report := &Report{
		BeneficiaryID: req.BeneficiaryID,
		Category:      req.Category,
		Severity:      req.Severity,
		Description:   req.Description,
		OccurredAt:    req.OccurredAt,
		Anonymous:     req.Anonymous,
	}
	if !req.Anonymous {
		reporter := auth.UserIDFromContext(c.Request().Context())
		report.ReporterID = &reporter
	}

	if err := h.svc.CreateReport(c.Request().Context(), report); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, report)
}

func (h *Handler) GetReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	report, err := h.svc.GetReport(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "incident report not found")
	}
	return c.JSON(http.StatusOK, report)
}

func (h *Handler) ListReports(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListReports(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
