package tag

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/NordCoder/Inkwell/internal/services/api/forms"
	"github.com/NordCoder/Inkwell/internal/services/api/middleware"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	uc   *Usecase
	auth middleware.Authenticator
}

func NewController(uc *Usecase, auth middleware.Authenticator) *Controller {
	return &Controller{uc: uc, auth: auth}
}

func (ct *Controller) Register(r gin.IRouter) {
	g := r.Group("/tags")
	g.GET("", ct.list)
	g.GET("/:slug", ct.getBySlug)

	admin := g.Group("", middleware.Auth(ct.auth), middleware.Admin())
	admin.POST("", ct.create)
	admin.PUT("/:slug", ct.update) // numeric id in the slug position
	admin.DELETE("/:slug", ct.delete)
}

func (ct *Controller) list(c *gin.Context) {
	out, err := ct.uc.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": out})
}

func (ct *Controller) getBySlug(c *gin.Context) {
	t, err := ct.uc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (ct *Controller) create(c *gin.Context) {
	var form forms.TagCreate
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := ct.uc.Create(c.Request.Context(), middleware.CurrentUser(c), form.Name, form.Description, form.Color)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (ct *Controller) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var form forms.TagUpdate
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := ct.uc.Update(c.Request.Context(), middleware.CurrentUser(c), id, Update{
		Name:        form.Name,
		Description: form.Description,
		Color:       form.Color,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (ct *Controller) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := ct.uc.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("slug"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
