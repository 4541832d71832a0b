package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gyanveer/coaching-admin-api/internal/importer"
	"github.com/gyanveer/coaching-admin-api/internal/service"
	appErrors "github.com/gyanveer/coaching-admin-api/pkg/errors"
	"github.com/gyanveer/coaching-admin-api/pkg/response"
)

const maxImportBytes = 20 << 20

// ImportHandler exposes the bulk spreadsheet import endpoint.
type ImportHandler struct {
	imports *service.ImportService
	metrics *service.MetricsService
}

// NewImportHandler constructs ImportHandler.
func NewImportHandler(imports *service.ImportService, metrics *service.MetricsService) *ImportHandler {
	return &ImportHandler{imports: imports, metrics: metrics}
}

// Run godoc
// @Summary Import a center spreadsheet export
// @Tags Import
// @Accept multipart/form-data
// @Produce json
// @Param format path string true "Source layout" Enums(nariyawal, thiriya)
// @Param file formData file true "CSV export file"
// @Success 200 {object} response.Envelope
// @Router /imports/{format} [post]
func (h *ImportHandler) Run(c *gin.Context) {
	format := importer.Format(c.Param("format"))
	if format != importer.FormatNariyawal && format != importer.FormatThiriya {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown import format"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "csv file missing"))
		return
	}
	if fileHeader.Size > maxImportBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "import exceeds the 20MB limit"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck
	raw, err := io.ReadAll(io.LimitReader(file, maxImportBytes+1))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}

	processed, err := h.imports.Run(c.Request.Context(), format, string(raw))
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordImport(string(format), processed)
	}
	response.JSON(c, http.StatusOK, gin.H{"processed": processed}, nil)
}
