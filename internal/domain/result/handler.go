package result

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lims/lims/internal/domain/sample"
	"github.com/lims/lims/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(g *echo.Group) {
	g.GET("/sample-results", h.List)
	g.POST("/sample-results", h.Save)
	g.GET("/sample-results/:sampleId/:testId", h.Get)
	g.PUT("/sample-results/:sampleId", h.SaveForSample)
	g.GET("/sample-results-by-sample", h.ListBySample)
}

// SaveRequest records values for one (sample, test) work item.
type SaveRequest struct {
	SampleID uuid.UUID         `json:"sample_id"`
	TestID   uuid.UUID         `json:"test_id"`
	Results  map[string]string `json:"results"`
	Notes    *string           `json:"notes"`
}

func (h *Handler) Save(c echo.Context) error {
	var req SaveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.SampleID == uuid.Nil || req.TestID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "sample_id and test_id are required")
	}
	st, err := h.svc.Save(c.Request().Context(), req.SampleID, req.TestID, req.Results, req.Notes)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, st)
}

type saveForSampleRequest struct {
	Results map[uuid.UUID]map[string]string `json:"results"`
}

func (h *Handler) SaveForSample(c echo.Context) error {
	sampleID, err := uuid.Parse(c.Param("sampleId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid sample id")
	}
	var req saveForSampleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	items, err := h.svc.SaveForSample(c.Request().Context(), sampleID, req.Results)
	if err != nil {
		return mapServiceError(err)
	}
	if items == nil {
		items = []*sample.SampleTest{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": items})
}

func (h *Handler) Get(c echo.Context) error {
	sampleID, err := uuid.Parse(c.Param("sampleId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid sample id")
	}
	testID, err := uuid.Parse(c.Param("testId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid test id")
	}
	st, err := h.svc.Get(c.Request().Context(), sampleID, testID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListBySample(c echo.Context) error {
	raw := c.QueryParam("sample_id")
	if raw == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "sample_id query parameter is required")
	}
	sampleID, err := uuid.Parse(raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid sample id")
	}
	items, err := h.svc.ListForSample(c.Request().Context(), sampleID)
	if err != nil {
		return mapServiceError(err)
	}
	if items == nil {
		items = []*sample.SampleTest{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"data": items})
}

func mapServiceError(err error) error {
	switch {
	case errors.Is(err, sample.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "sample not found")
	case errors.Is(err, sample.ErrTestNotAttached):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNoResults):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}
