package comment

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
	r.GET("/posts/:slug/comments", middleware.OptionalAuth(ct.auth), ct.listByPost)
	r.POST("/posts/:id/comments", middleware.Auth(ct.auth), ct.create)

	g := r.Group("/comments", middleware.Auth(ct.auth))
	g.PUT("/:id", ct.update)
	g.DELETE("/:id", ct.delete)
	g.PUT("/:id/approve", middleware.Admin(), ct.approve)
}

func (ct *Controller) listByPost(c *gin.Context) {
	out, err := ct.uc.ListBySlug(c.Request.Context(), c.Param("slug"), middleware.CurrentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": out})
}

func (ct *Controller) create(c *gin.Context) {
	postID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var form forms.CommentCreate
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := ct.uc.Create(c.Request.Context(), middleware.CurrentUser(c), postID, form.Content, form.ParentID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (ct *Controller) update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var form forms.CommentUpdate
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := ct.uc.Update(c.Request.Context(), middleware.CurrentUser(c), id, form.Content)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (ct *Controller) approve(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var form struct {
		Approved *bool `json:"approved" binding:"required"`
	}
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := ct.uc.Approve(c.Request.Context(), middleware.CurrentUser(c), id, *form.Approved)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (ct *Controller) delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := ct.uc.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidParent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
