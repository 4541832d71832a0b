package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gyanveer/coaching-admin-api/internal/service"
	appErrors "github.com/gyanveer/coaching-admin-api/pkg/errors"
	"github.com/gyanveer/coaching-admin-api/pkg/response"
)

// LedgerHandler exposes fee-ledger mutation endpoints.
type LedgerHandler struct {
	ledger  *service.LedgerService
	metrics *service.MetricsService
}

// NewLedgerHandler constructs LedgerHandler.
func NewLedgerHandler(ledger *service.LedgerService, metrics *service.MetricsService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, metrics: metrics}
}

// CollectFee godoc
// @Summary Record a fee payment
// @Tags Ledger
// @Accept json
// @Produce json
// @Param registration path string true "Registration number"
// @Param payload body service.CollectFeeRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Router /students/{registration}/installments [post]
func (h *LedgerHandler) CollectFee(c *gin.Context) {
	var req service.CollectFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	inst, err := h.ledger.CollectFee(c.Request.Context(), c.Param("registration"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordPayment(inst.Amount)
	}
	response.Created(c, inst)
}

// DeleteInstallment godoc
// @Summary Retract a recorded payment
// @Tags Ledger
// @Accept json
// @Produce json
// @Param registration path string true "Registration number"
// @Param payload body service.DeleteInstallmentRequest true "Installment selector"
// @Success 204
// @Router /students/{registration}/installments [delete]
func (h *LedgerHandler) DeleteInstallment(c *gin.Context) {
	var req service.DeleteInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.ledger.DeleteInstallment(c.Request.Context(), c.Param("registration"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// DeleteStudent godoc
// @Summary Delete a student and their ledger
// @Tags Ledger
// @Produce json
// @Param registration path string true "Registration number"
// @Success 204
// @Router /students/{registration} [delete]
func (h *LedgerHandler) DeleteStudent(c *gin.Context) {
	if err := h.ledger.DeleteStudent(c.Request.Context(), c.Param("registration")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Rekey godoc
// @Summary Move a student to a new registration number
// @Tags Ledger
// @Accept json
// @Produce json
// @Param registration path string true "Current registration number"
// @Param payload body service.RekeyRequest true "New registration"
// @Success 204
// @Router /students/{registration}/rekey [post]
func (h *LedgerHandler) Rekey(c *gin.Context) {
	var req service.RekeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.ledger.RekeyStudent(c.Request.Context(), c.Param("registration"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
