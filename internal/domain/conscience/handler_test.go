package conscience

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/basira/care-server/internal/platform/auth"
	"github.com/basira/care-server/internal/platform/culture"
)

func handlerFixture(t *testing.T, log DecisionLog) (*Handler, uuid.UUID) {
	t.Helper()
	svc, id := newServiceFixture(culture.NoneProvider{}, log)
	return NewHandler(svc), id
}

func doJSON(h echo.HandlerFunc, method, path, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	ctx := context.WithValue(req.Context(), auth.UserIDKey, "nurse-1")
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestHandler_Evaluate(t *testing.T) {
	h, id := handlerFixture(t, nil)

	body := `{"beneficiary_id":"` + id.String() + `","type":"RESTRAINT","reason":"acute agitation"}`
	rec := doJSON(h.Evaluate, http.MethodPost, "/api/v1/conscience/evaluate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var d Decision
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatal(err)
	}
	if d.EthicalScore != 50 {
		t.Fatalf("expected score 50, got %d", d.EthicalScore)
	}
	if !d.RequiresHumanApproval {
		t.Fatal("restraint must be gated")
	}
	if d.ProposedAction.InitiatedBy != "nurse-1" {
		t.Fatalf("initiator must come from the auth context, got %q", d.ProposedAction.InitiatedBy)
	}
}

func TestHandler_Evaluate_MissingReason(t *testing.T) {
	h, id := handlerFixture(t, nil)
	body := `{"beneficiary_id":"` + id.String() + `","type":"ISOLATION"}`
	rec := doJSON(h.Evaluate, http.MethodPost, "/api/v1/conscience/evaluate", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandler_Evaluate_UnknownBeneficiary(t *testing.T) {
	h, _ := handlerFixture(t, nil)
	body := `{"beneficiary_id":"` + uuid.NewString() + `","type":"ISOLATION","reason":"r"}`
	rec := doJSON(h.Evaluate, http.MethodPost, "/api/v1/conscience/evaluate", body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_Finalize(t *testing.T) {
	log := &mockDecisionLog{}
	h, id := handlerFixture(t, log)

	decision := finalizedDecision()
	decision.SubjectID = id
	decision.Status = StatusPendingApproval
	raw, _ := json.Marshal(finalizeRequest{
		Decision:      decision,
		FinalAction:   "restraint applied",
		HumanApprover: "supervisor-7",
	})

	rec := doJSON(h.Finalize, http.MethodPost, "/api/v1/conscience/decisions", string(raw))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(log.entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(log.entries))
	}
}

func TestHandler_Finalize_RejectsTamperedStatus(t *testing.T) {
	log := &mockDecisionLog{}
	h, id := handlerFixture(t, log)

	// A low score flagged auto-approvable must be re-gated server side.
	decision := finalizedDecision()
	decision.SubjectID = id
	decision.EthicalScore = 10
	decision.Status = StatusAutoApprovable
	decision.RequiresHumanApproval = false
	raw, _ := json.Marshal(finalizeRequest{Decision: decision, FinalAction: "restraint applied"})

	rec := doJSON(h.Finalize, http.MethodPost, "/api/v1/conscience/decisions", string(raw))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without approver, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(log.entries) != 0 {
		t.Fatalf("tampered decision must not be recorded, got %d entries", len(log.entries))
	}
}

func TestHandler_Finalize_PersistenceWarning(t *testing.T) {
	log := &mockDecisionLog{err: errors.New("disk full")}
	h, id := handlerFixture(t, log)

	decision := finalizedDecision()
	decision.SubjectID = id
	decision.EthicalScore = 80
	decision.Status = StatusAutoApprovable
	decision.RequiresHumanApproval = false
	raw, _ := json.Marshal(finalizeRequest{Decision: decision, FinalAction: "done"})

	rec := doJSON(h.Finalize, http.MethodPost, "/api/v1/conscience/decisions", string(raw))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 on audit failure, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if _, ok := resp["warning"]; !ok {
		t.Fatal("expected a warning field in the response")
	}
}
