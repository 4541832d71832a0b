package handler

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/gyanveer/coaching-admin-api/internal/models"
	"github.com/gyanveer/coaching-admin-api/internal/service"
	appErrors "github.com/gyanveer/coaching-admin-api/pkg/errors"
	"github.com/gyanveer/coaching-admin-api/pkg/response"
)

// ExportHandler exposes report generation and download endpoints.
type ExportHandler struct {
	exports      *service.ExportService
	certificates *service.CertificateService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService, certificates *service.CertificateService) *ExportHandler {
	return &ExportHandler{exports: exports, certificates: certificates}
}

// Generate godoc
// @Summary Generate a roster, arrears or ledger export
// @Tags Exports
// @Produce json
// @Param kind path string true "Export kind" Enums(roster, arrears, ledger)
// @Param format query string false "Output format" Enums(csv, pdf) default(csv)
// @Param center query string false "Restrict to one center"
// @Param registration query string false "Student registration (ledger exports)"
// @Success 200 {object} response.Envelope
// @Router /exports/{kind} [post]
func (h *ExportHandler) Generate(c *gin.Context) {
	req := service.ExportRequest{
		Kind:         models.ReportKind(c.Param("kind")),
		Format:       models.ReportFormat(c.DefaultQuery("format", "csv")),
		Center:       c.Query("center"),
		Registration: c.Query("registration"),
	}
	result, err := h.exports.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download a generated export by signed token
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200
// @Router /downloads/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, relPath, err := h.exports.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(relPath)))
	c.File(file.Name())
}

// Certificate godoc
// @Summary Issue a completion certificate for a fully paid student
// @Tags Exports
// @Produce json
// @Param registration path string true "Registration number"
// @Success 200 {object} response.Envelope
// @Router /students/{registration}/certificate [post]
func (h *ExportHandler) Certificate(c *gin.Context) {
	if h.certificates == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	result, err := h.certificates.Issue(c.Request.Context(), c.Param("registration"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
