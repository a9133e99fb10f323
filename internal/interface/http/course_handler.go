package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bootcamp-directory/internal/application"
	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/interface/middleware"
	"github.com/oksasatya/bootcamp-directory/pkg/response"
)

type CourseHandler struct {
	Svc    *application.CourseService
	Logger *logrus.Logger
}

func NewCourseHandler(svc *application.CourseService, logger *logrus.Logger) *CourseHandler {
	return &CourseHandler{Svc: svc, Logger: logger}
}

// ListByBootcamp serves /bootcamps/:id/courses without paging.
func (h *CourseHandler) ListByBootcamp(c *gin.Context) {
	out, err := h.Svc.ListByBootcamp(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.List(c, out)
}

func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, course)
}

// Create serves both /bootcamps/:id/courses and /courses. The nested route
// takes the bootcamp from the path; the flat one from the body.
func (h *CourseHandler) Create(c *gin.Context) {
	var req entity.NewCourse
	if !bindJSON(c, &req) {
		return
	}
	bootcampID := req.Bootcamp
	if id := c.Param("id"); id != "" {
		bootcampID = id
	}
	course, err := h.Svc.Create(c.Request.Context(), middleware.CurrentUser(c), bootcampID, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, course)
}

func (h *CourseHandler) Update(c *gin.Context) {
	var req entity.CourseUp
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.Svc.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, course)
}

func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, response.Empty{})
}
