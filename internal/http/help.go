package http

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed help.html
var helpHTML string

var helpTemplate = template.Must(template.New("help").Parse(helpHTML))

type helpData struct {
	Service string
	Version string
}

// handleHelp serves a page with a small form for each endpoint.
func (s *Server) handleHelp(c echo.Context) error {
	var buf bytes.Buffer
	if err := helpTemplate.Execute(&buf, helpData{Service: s.config.Service, Version: s.config.Version}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to render help page").SetInternal(err)
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
