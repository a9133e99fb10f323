package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bootcamp-directory/internal/application"
	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/interface/middleware"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
	"github.com/oksasatya/bootcamp-directory/pkg/response"
)

const (
	defaultSearchSize = 10
	maxSearchSize     = 100
)

type BootcampHandler struct {
	Svc    *application.BootcampService
	Logger *logrus.Logger
}

func NewBootcampHandler(svc *application.BootcampService, logger *logrus.Logger) *BootcampHandler {
	return &BootcampHandler{Svc: svc, Logger: logger}
}

func (h *BootcampHandler) Get(c *gin.Context) {
	b, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *BootcampHandler) Create(c *gin.Context) {
	var req entity.NewBootcamp
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Svc.Create(c.Request.Context(), middleware.CurrentUser(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, b)
}

func (h *BootcampHandler) Update(c *gin.Context) {
	var req entity.BootcampUp
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.Svc.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *BootcampHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, response.Empty{})
}

// WithinRadius serves /bootcamps/radius/:zipcode/:distance (distance in miles).
func (h *BootcampHandler) WithinRadius(c *gin.Context) {
	distance, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil {
		fail(c, apperror.Validation("distance must be a number"))
		return
	}
	out, err := h.Svc.WithinRadius(c.Request.Context(), c.Param("zipcode"), distance)
	if err != nil {
		fail(c, err)
		return
	}
	response.List(c, out)
}

// UploadPhoto reads the multipart field "file".
func (h *BootcampHandler) UploadPhoto(c *gin.Context) {
	var up *application.PhotoUpload
	fh, err := c.FormFile("file")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			fail(c, apperror.Validation("Please upload a file"))
			return
		}
		defer f.Close()
		up = &application.PhotoUpload{Filename: fh.Filename, Size: fh.Size, Body: f}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		fail(c, apperror.Validation("Please upload a file"))
		return
	}

	ref, err := h.Svc.UploadPhoto(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), up)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, ref)
}

// Search serves /bootcamps/search?q=&size=.
func (h *BootcampHandler) Search(c *gin.Context) {
	size := defaultSearchSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fail(c, apperror.Validation("size must be a positive integer"))
			return
		}
		size = min(n, maxSearchSize)
	}
	hits, err := h.Svc.SearchText(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		fail(c, err)
		return
	}
	response.List(c, hits)
}
