package report

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lims/lims/internal/domain/sample"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(g *echo.Group) {
	g.GET("/reports/:accessionNumber", h.Get)
	g.GET("/reports/:accessionNumber/html", h.Preview)
	g.GET("/reports/:accessionNumber/print", h.Print)
}

func (h *Handler) compose(c echo.Context) (*Document, error) {
	doc, err := h.svc.Compose(c.Request().Context(), c.Param("accessionNumber"))
	if err != nil {
		if errors.Is(err, sample.ErrNotFound) {
			return nil, echo.NewHTTPError(http.StatusNotFound, "sample not found")
		}
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return doc, nil
}

func (h *Handler) Get(c echo.Context) error {
	doc, err := h.compose(c)
	if err != nil {
		return err
	}
	h.svc.countGenerated("json")
	return c.JSON(http.StatusOK, doc)
}

func (h *Handler) Preview(c echo.Context) error {
	doc, err := h.compose(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := RenderPreview(&buf, doc); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.svc.countGenerated("html")
	return c.HTML(http.StatusOK, buf.String())
}

func (h *Handler) Print(c echo.Context) error {
	doc, err := h.compose(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := RenderPrint(&buf, doc); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	h.svc.countGenerated("print")
	return c.HTML(http.StatusOK, buf.String())
}
