package post

import (
	"errors"
	"net/http"
	"strconv"

	domain "github.com/NordCoder/Inkwell/internal/domain/post"
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
	g := r.Group("/posts")
	g.GET("", middleware.OptionalAuth(ct.auth), ct.list)
	g.GET("/:slug", middleware.OptionalAuth(ct.auth), ct.getBySlug)

	authed := g.Group("", middleware.Auth(ct.auth))
	authed.POST("", ct.create)
	authed.PUT("/:id", ct.update)
	authed.DELETE("/:id", ct.delete)
	authed.POST("/:id/like", ct.toggleLike)
}

func (ct *Controller) list(c *gin.Context) {
	var form forms.PostList
	if err := c.ShouldBindQuery(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f := domain.Filter{
		Page:     form.Page,
		PerPage:  form.PerPage,
		Status:   domain.Status(form.Status),
		AuthorID: form.Author,
		TagSlug:  form.Tag,
		Search:   form.Search,
	}.Normalized()

	posts, total, err := ct.uc.List(c.Request.Context(), f, middleware.CurrentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	if posts == nil {
		posts = []*domain.Post{}
	}
	c.JSON(http.StatusOK, gin.H{
		"posts":    posts,
		"total":    total,
		"page":     f.Page,
		"per_page": f.PerPage,
	})
}

func (ct *Controller) getBySlug(c *gin.Context) {
	p, err := ct.uc.GetBySlug(c.Request.Context(), c.Param("slug"), middleware.CurrentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (ct *Controller) create(c *gin.Context) {
	var form forms.PostCreate
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := ct.uc.Create(c.Request.Context(), middleware.CurrentUser(c), Input{
		Title:           form.Title,
		Content:         form.Content,
		Excerpt:         form.Excerpt,
		CoverImage:      form.CoverImage,
		Status:          domain.Status(form.Status),
		TagIDs:          form.TagIDs,
		MetaTitle:       form.MetaTitle,
		MetaDescription: form.MetaDescription,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (ct *Controller) update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		return
	}
	var form forms.PostUpdate
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var status *domain.Status
	if form.Status != nil {
		s := domain.Status(*form.Status)
		status = &s
	}
	p, err := ct.uc.Update(c.Request.Context(), middleware.CurrentUser(c), id, Update{
		Title:           form.Title,
		Content:         form.Content,
		Excerpt:         form.Excerpt,
		CoverImage:      form.CoverImage,
		Status:          status,
		TagIDs:          form.TagIDs,
		MetaTitle:       form.MetaTitle,
		MetaDescription: form.MetaDescription,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (ct *Controller) delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		return
	}
	if err := ct.uc.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (ct *Controller) toggleLike(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		return
	}
	liked, err := ct.uc.ToggleLike(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrTagNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
