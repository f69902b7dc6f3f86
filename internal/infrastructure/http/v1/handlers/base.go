package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"custody/internal/core/apperror"
	"custody/internal/core/id"
	"custody/internal/infrastructure/http/v1/dto"
)

// BaseHandler holds the request plumbing shared by resource handlers.
// Handlers never write error bodies; middleware.ErrorHandler does.
type BaseHandler struct {
	now func() time.Time
}

func NewBaseHandler() *BaseHandler {
	return &BaseHandler{now: time.Now}
}

// BindJSON decodes and validates the body, registering a VALIDATION_ERROR on failure.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
	}
	return err == nil
}

// ParamID parses the ":id" path segment as a UUID.
func (h *BaseHandler) ParamID(c *gin.Context) (id.ID, bool) {
	raw := c.Param("id")
	v, err := id.Parse(raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("id", raw))
		return id.ID{}, false
	}
	return v, true
}

// QueryDate reads an optional YYYY-MM-DD query value; absent means today (UTC).
func (h *BaseHandler) QueryDate(c *gin.Context, key string) (time.Time, bool) {
	raw, present := c.GetQuery(key)
	if !present || raw == "" {
		return h.now().UTC().Truncate(24 * time.Hour), true
	}
	t, err := dto.ParseDate(key, &raw)
	if err != nil {
		h.Error(c, err)
		return time.Time{}, false
	}
	return *t, true
}

// Error records err for the error middleware and stops the chain.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
