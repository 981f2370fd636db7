package conscience

import (
	"errors"
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
	staff := api.Group("", auth.RequireRole("nurse", "physician", "supervisor"))
	staff.POST("/conscience/evaluate", h.Evaluate)
	staff.POST("/conscience/decisions", h.Finalize)

	review := api.Group("", auth.RequireRole("supervisor"))
	review.GET("/conscience/log", h.ListLog)
}

type evaluateRequest struct {
	BeneficiaryID uuid.UUID  `json:"beneficiary_id"`
	Type          ActionType `json:"type"`
	Reason        string     `json:"reason"`
}

func (h *Handler) Evaluate(c echo.Context) error {
	var req evaluateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	action := ProposedAction{
		Type:        req.Type,
		Reason:      req.Reason,
		InitiatedBy: auth.UserIDFromContext(c.Request().Context()),
	}
	decision, err := h.svc.EvaluateAction(c.Request().Context(), action, req.BeneficiaryID)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusNotFound, "beneficiary not found")
	}
	return c.JSON(http.StatusOK, decision)
}

type finalizeRequest struct {
	Decision      Decision `json:"decision"`
	FinalAction   string   `json:"final_action"`
	HumanApprover string   `json:"human_approver"`
}

func (h *Handler) Finalize(c echo.Context) error {
	var req finalizeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	decision, err := h.svc.FinalizeAndRecord(c.Request().Context(), req.Decision, req.FinalAction, req.HumanApprover)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if errors.Is(err, ErrPersistence) {
			// The action already happened; report the decision with a warning
			// instead of failing the request.
			return c.JSON(http.StatusAccepted, map[string]interface{}{
				"decision": decision,
				"warning":  "decision finalized but audit record failed; retry recording",
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, decision)
}

func (h *Handler) ListLog(c echo.Context) error {
	pg := pagination.FromContext(c)

	var beneficiaryID uuid.UUID
	if raw := c.QueryParam("beneficiary_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid beneficiary_id")
		}
		beneficiaryID = id
	}

	items, total, err := h.svc.ListLog(c.Request().Context(), beneficiaryID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
