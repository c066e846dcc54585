package sample

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func setupHandler() (*Handler, *fixture) {
	f := newFixture()
	return NewHandler(f.svc), f
}

func (f *fixture) seedSample(t *testing.T, testIDs ...uuid.UUID) *Sample {
	t.Helper()
	created, err := f.svc.Intake(context.Background(), f.validSample(), testIDs)
	if err != nil {
		t.Fatalf("seed sample: %v", err)
	}
	return created
}

func TestHandler_Create(t *testing.T) {
	h, f := setupHandler()
	e := echo.New()

	body := fmt.Sprintf(`{"patient_id":%q,"sample_type":"Blood","collection_date":"2026-03-14","collection_time":"09:30","priority":"Urgent","tests":[%q]}`,
		f.patientID, f.cbcID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/samples", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var smp Sample
	if err := json.Unmarshal(rec.Body.Bytes(), &smp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if smp.AccessionNumber != "ACC000001" {
		t.Errorf("expected generated accession ACC000001, got %s", smp.AccessionNumber)
	}
	if len(smp.Tests) != 1 {
		t.Errorf("expected 1 work item, got %d", len(smp.Tests))
	}
	if smp.Status != SampleProcessing {
		t.Errorf("expected status Processing, got %s", smp.Status)
	}
}

func TestHandler_Create_UnknownPatient(t *testing.T) {
	h, _ := setupHandler()
	e := echo.New()

	body := fmt.Sprintf(`{"patient_id":%q,"sample_type":"Blood","collection_date":"2026-03-14","collection_time":"09:30"}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/samples", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Create(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_Get(t *testing.T) {
	h, f := setupHandler()
	e := echo.New()
	smp := f.seedSample(t, f.cbcID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/samples/"+smp.ID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(smp.ID.String())

	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_Get_NotFound(t *testing.T) {
	h, _ := setupHandler()
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/samples/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	err := h.Get(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestHandler_GetByAccession(t *testing.T) {
	h, f := setupHandler()
	e := echo.New()
	smp := f.seedSample(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/samples/accession/"+smp.AccessionNumber, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("accessionNumber")
	c.SetParamValues(smp.AccessionNumber)

	if err := h.GetByAccession(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got Sample
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != smp.ID {
		t.Errorf("expected sample %s, got %s", smp.ID, got.ID)
	}
}

func TestHandler_ListByPatient(t *testing.T) {
	h, f := setupHandler()
	e := echo.New()
	f.seedSample(t)
	f.seedSample(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/"+f.patientID.String()+"/samples", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(f.patientID.String())

	if err := h.ListByPatient(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("expected total 2, got %d", resp.Total)
	}
}

func TestHandler_SyncTests_LossyConflict(t *testing.T) {
	h, f := setupHandler()
	e := echo.New()
	smp := f.seedSample(t, f.cbcID)

	st, _ := f.pivots.Get(context.Background(), smp.ID, f.cbcID)
	st.Results = map[string]string{"Hemoglobin": "14.1"}
	if err := f.pivots.Update(context.Background(), st); err != nil {
		t.Fatalf("seed results: %v", err)
	}

	body := fmt.Sprintf(`{"tests":[%q]}`, f.lipidID)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/samples/"+smp.ID.String()+"/tests", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(smp.ID.String())

	err := h.SyncTests(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
}

func TestHandler_SyncTests_Forced(t *testing.T) {
	h, f := setupHandler()
	e := echo.New()
	smp := f.seedSample(t, f.cbcID)

	st, _ := f.pivots.Get(context.Background(), smp.ID, f.cbcID)
	st.Results = map[string]string{"Hemoglobin": "14.1"}
	if err := f.pivots.Update(context.Background(), st); err != nil {
		t.Fatalf("seed results: %v", err)
	}

	body := fmt.Sprintf(`{"tests":[%q],"force":true}`, f.lipidID)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/samples/"+smp.ID.String()+"/tests", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(smp.ID.String())

	if err := h.SyncTests(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_UpdateTest_InvalidTransition(t *testing.T) {
	h, f := setupHandler()
	e := echo.New()
	smp := f.seedSample(t, f.cbcID)

	if _, err := f.svc.UpdateTestStatus(context.Background(), smp.ID, f.cbcID, StatusCompleted, nil); err != nil {
		t.Fatalf("seed status: %v", err)
	}

	body := `{"status":"Pending"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/samples/"+smp.ID.String()+"/tests/"+f.cbcID.String(), strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id", "testId")
	c.SetParamValues(smp.ID.String(), f.cbcID.String())

	err := h.UpdateTest(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_DetachTest_ForceQueryParam(t *testing.T) {
	h, f := setupHandler()
	e := echo.New()
	smp := f.seedSample(t, f.cbcID)

	st, _ := f.pivots.Get(context.Background(), smp.ID, f.cbcID)
	st.Results = map[string]string{"Hemoglobin": "14.1"}
	if err := f.pivots.Update(context.Background(), st); err != nil {
		t.Fatalf("seed results: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/samples/"+smp.ID.String()+"/tests/"+f.cbcID.String()+"?force=true", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id", "testId")
	c.SetParamValues(smp.ID.String(), f.cbcID.String())

	if err := h.DetachTest(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestHandler_Delete(t *testing.T) {
	h, f := setupHandler()
	e := echo.New()
	smp := f.seedSample(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/samples/"+smp.ID.String(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(smp.ID.String())

	if err := h.Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
