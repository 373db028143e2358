package http

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// uploadField is the multipart field carrying the document.
const uploadField = "f"

// bindAndValidate binds form (or JSON) fields and runs the validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.Validate(req)
}

// providerError maps a service failure to the client reply: 500 with the
// underlying error text unmodified.
func providerError(err error) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: s.config.Service,
		Version: s.config.Version,
	})
}

// handleCreateStore creates a vector store.
func (s *Server) handleCreateStore(c echo.Context) error {
	var req CreateStoreRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := s.library.CreateStore(c.Request().Context(), req.Name)
	if err != nil {
		return providerError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// handleUpload uploads the "f" file and attaches it to the store.
func (s *Server) handleUpload(c echo.Context) error {
	var req UploadRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	fh, err := c.FormFile(uploadField)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, uploadField+" is required")
	}

	content, err := s.openUpload(c, fh)
	if err != nil {
		return err
	}
	if closer, ok := content.(io.Closer); ok {
		defer closer.Close()
	}

	result, err := s.library.AddDocument(c.Request().Context(), req.VectorStoreID, fh.Filename, content)
	if err != nil {
		return providerError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// openUpload opens the uploaded file. With a guard configured, the document
// is read fully and refused with 400 if it contains secrets.
func (s *Server) openUpload(c echo.Context, fh *multipart.FileHeader) (io.Reader, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "failed to read "+uploadField).SetInternal(err)
	}
	if s.guard == nil {
		return f, nil
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "failed to read "+uploadField).SetInternal(err)
	}

	result := s.guard.CheckBytes(data)
	if result.HasFindings() {
		s.logger.Warn("upload rejected: secrets detected",
			zap.String("filename", fh.Filename),
			zap.Strings("rules", result.RuleIDs()),
			zap.Int("findings", len(result.Findings)),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		)
		return nil, echo.NewHTTPError(http.StatusBadRequest, result.Summary())
	}
	return bytes.NewReader(data), nil
}

// handleAsk answers a question from one store.
func (s *Server) handleAsk(c echo.Context) error {
	var req AskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := s.library.Ask(c.Request().Context(), req.VectorStoreID, req.Question)
	if err != nil {
		return providerError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// handleStatus lists the files in a store.
func (s *Server) handleStatus(c echo.Context) error {
	var req StatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := s.library.Status(c.Request().Context(), req.VectorStoreID)
	if err != nil {
		return providerError(err)
	}
	return c.JSON(http.StatusOK, result)
}
