// Package api serves the pure generation stages over HTTP so templates and
// scanners can be previewed without running the external tools.
package api

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/tflmgen/internal/metrics"
	"github.com/samcharles93/tflmgen/internal/reformat"
	"github.com/samcharles93/tflmgen/internal/scan"
	"github.com/samcharles93/tflmgen/internal/tmpl"
)

// DefaultMaxBody bounds request bodies. Model sources of a few megabytes
// are common.
const DefaultMaxBody int64 = 64 << 20

const (
	routeExtract   = "/v1/extract"
	routeReformat  = "/v1/reformat"
	routeRender    = "/v1/render"
	routeTemplates = "/v1/templates"
	routeMetrics   = "/metrics"
)

type Server struct {
	templates *tmpl.Set
	maxBody   int64
}

// NewServer returns a server rendering from set, or the embedded templates
// when set is nil.
func NewServer(set *tmpl.Set) *Server {
	if set == nil {
		set = tmpl.Default()
	}
	return &Server{templates: set, maxBody: DefaultMaxBody}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST(routeExtract, s.handleExtract)
	e.POST(routeReformat, s.handleReformat)
	e.POST(routeRender, s.handleRender)
	e.GET(routeTemplates, s.handleListTemplates)
	e.GET(routeTemplates+"/*", s.handleTemplateSource)
	e.GET(routeMetrics, func(c *echo.Context) error {
		metrics.Handler().ServeHTTP(c.Response(), c.Request())
		return nil
	})
}

func decodeBody[T any](s *Server, c *echo.Context) (T, error) {
	body := http.MaxBytesReader(c.Response(), c.Request().Body, s.maxBody)
	return decodeJSON[T](body)
}

func (s *Server) handleExtract(c *echo.Context) error {
	req, err := decodeBody[ExtractRequest](s, c)
	if err != nil {
		return writeStageError(c, routeExtract, err)
	}
	if err := requireField("model_source", req.ModelSource); err != nil {
		return writeStageError(c, routeExtract, err)
	}
	ids, err := scan.Extract(scan.New(), req.ModelSource, req.ResolverHeader, req.Stem)
	if err != nil {
		return writeStageError(c, routeExtract, err)
	}
	resp := ExtractResponse{
		Symbol:         ids.Symbol,
		Stem:           ids.Stem,
		Operations:     ids.Operations,
		OperationCount: ids.OperationCount,
	}
	if resp.Operations == nil {
		resp.Operations = []string{}
	}
	if ids.DeclaredOperators >= 0 {
		n := ids.DeclaredOperators
		resp.DeclaredOperators = &n
	}
	return writeJSON(c, routeExtract, http.StatusOK, resp)
}

func (s *Server) handleReformat(c *echo.Context) error {
	req, err := decodeBody[ReformatRequest](s, c)
	if err != nil {
		return writeStageError(c, routeReformat, err)
	}
	if err := requireField("source", req.Source); err != nil {
		return writeStageError(c, routeReformat, err)
	}
	sc := &scan.Scanner{OpenMarker: req.OpenMarker, CloseMarker: req.CloseMarker}
	res, err := reformat.Reformat(sc, req.Source)
	if err != nil {
		return writeStageError(c, routeReformat, err)
	}
	return writeJSON(c, routeReformat, http.StatusOK, ReformatResponse{
		Source:   res.Source,
		Elements: res.Elements,
		Rows:     res.Rows,
	})
}

func (s *Server) handleRender(c *echo.Context) error {
	req, err := decodeBody[RenderRequest](s, c)
	if err != nil {
		return writeStageError(c, routeRender, err)
	}
	if err := requireField("template", req.Template); err != nil {
		return writeStageError(c, routeRender, err)
	}
	r, err := s.templates.Render(req.Template, tmpl.Params(req.Params))
	if err != nil {
		return writeStageError(c, routeRender, err)
	}
	return writeJSON(c, routeRender, http.StatusOK, RenderResponse{
		Name:       r.Name,
		Text:       r.Text,
		Unresolved: r.Unresolved,
	})
}

func (s *Server) handleListTemplates(c *echo.Context) error {
	names := append([]string(nil), tmpl.Names...)
	return writeJSON(c, routeTemplates, http.StatusOK, TemplatesResponse{Templates: names})
}

func (s *Server) handleTemplateSource(c *echo.Context) error {
	src, err := s.templates.Source(c.Param("*"))
	if err != nil {
		return writeStageError(c, routeTemplates, err)
	}
	metrics.ObserveRequest(routeTemplates, http.StatusOK)
	return c.String(http.StatusOK, src)
}
