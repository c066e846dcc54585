package sample

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lims/lims/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(g *echo.Group) {
	g.GET("/samples", h.List)
	g.POST("/samples", h.Create)
	g.GET("/samples/accession/:accessionNumber", h.GetByAccession)
	g.GET("/samples/:id", h.Get)
	g.PUT("/samples/:id", h.Update)
	g.DELETE("/samples/:id", h.Delete)
	g.GET("/samples/:id/tests", h.ListTests)
	g.POST("/samples/:id/tests", h.AttachTests)
	g.PUT("/samples/:id/tests", h.SyncTests)
	g.PUT("/samples/:id/tests/:testId", h.UpdateTest)
	g.DELETE("/samples/:id/tests/:testId", h.DetachTest)
	g.GET("/patients/:id/samples", h.ListByPatient)
}

// CreateRequest is the intake payload.
type CreateRequest struct {
	AccessionNumber string      `json:"accession_number"`
	PatientID       uuid.UUID   `json:"patient_id"`
	SampleType      string      `json:"sample_type"`
	CollectionDate  string      `json:"collection_date"`
	CollectionTime  string      `json:"collection_time"`
	Priority        string      `json:"priority"`
	Location        *string     `json:"location"`
	Notes           *string     `json:"notes"`
	Tests           []uuid.UUID `json:"tests"`
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	smp := &Sample{
		AccessionNumber: req.AccessionNumber,
		PatientID:       req.PatientID,
		SampleType:      req.SampleType,
		CollectionDate:  req.CollectionDate,
		CollectionTime:  req.CollectionTime,
		Priority:        req.Priority,
		Location:        req.Location,
		Notes:           req.Notes,
	}
	created, err := h.svc.Intake(c.Request().Context(), smp, req.Tests)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	smp, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, smp)
}

func (h *Handler) GetByAccession(c echo.Context) error {
	smp, err := h.svc.GetByAccession(c.Request().Context(), c.Param("accessionNumber"))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, smp)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// UpdateRequest carries metadata changes. The test set is managed through
// the /samples/:id/tests operations.
type UpdateRequest struct {
	PatientID      uuid.UUID `json:"patient_id"`
	SampleType     string    `json:"sample_type"`
	CollectionDate string    `json:"collection_date"`
	CollectionTime string    `json:"collection_time"`
	Priority       string    `json:"priority"`
	Location       *string   `json:"location"`
	Notes          *string   `json:"notes"`
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	smp := &Sample{
		ID:             id,
		PatientID:      req.PatientID,
		SampleType:     req.SampleType,
		CollectionDate: req.CollectionDate,
		CollectionTime: req.CollectionTime,
		Priority:       req.Priority,
		Location:       req.Location,
		Notes:          req.Notes,
	}
	updated, err := h.svc.UpdateMetadata(c.Request().Context(), smp)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListTests(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.ListTests(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(err)
	}
	if items == nil {
		items = []*SampleTest{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": items})
}

type testSetRequest struct {
	Tests []uuid.UUID `json:"tests"`
	Force bool        `json:"force"`
}

func (h *Handler) AttachTests(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req testSetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	items, err := h.svc.AttachTests(c.Request().Context(), id, req.Tests)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": items})
}

func (h *Handler) SyncTests(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req testSetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	force := req.Force || c.QueryParam("force") == "true"
	items, err := h.svc.SyncTests(c.Request().Context(), id, req.Tests, force)
	if err != nil {
		return mapServiceError(err)
	}
	if items == nil {
		items = []*SampleTest{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": items})
}

type updateTestRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

func (h *Handler) UpdateTest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	testID, err := uuid.Parse(c.Param("testId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid test id")
	}
	var req updateTestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "status is required")
	}
	st, err := h.svc.UpdateTestStatus(c.Request().Context(), id, testID, req.Status, req.Notes)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) DetachTest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	testID, err := uuid.Parse(c.Param("testId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid test id")
	}
	force := c.QueryParam("force") == "true"
	if err := h.svc.DetachTest(c.Request().Context(), id, testID, force); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func mapServiceError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "sample not found")
	case errors.Is(err, ErrTestNotAttached):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicateAccession),
		errors.Is(err, ErrAlreadyAttached),
		errors.Is(err, ErrResultsWouldBeLost):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrUnknownPatient), errors.Is(err, ErrUnknownTest):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
