package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gyanveer/coaching-admin-api/internal/service"
	appErrors "github.com/gyanveer/coaching-admin-api/pkg/errors"
	"github.com/gyanveer/coaching-admin-api/pkg/response"
)

// CourseHandler exposes course fee endpoints.
type CourseHandler struct {
	courses *service.CourseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses *service.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// List godoc
// @Summary List configured courses
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Upsert godoc
// @Summary Configure a course fee
// @Tags Courses
// @Accept json
// @Produce json
// @Param name path string true "Course name"
// @Param payload body service.UpsertCourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{name} [put]
func (h *CourseHandler) Upsert(c *gin.Context) {
	var req service.UpsertCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.courses.Upsert(c.Request.Context(), c.Param("name"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"name": c.Param("name"), "fee": req.Fee}, nil)
}

// Standardize godoc
// @Summary Align every student's total fee with the canonical course table
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses/standardize [post]
func (h *CourseHandler) Standardize(c *gin.Context) {
	result, err := h.courses.Standardize(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
