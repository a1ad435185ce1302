package auth

import (
	"errors"
	"net/http"

	"github.com/NordCoder/Inkwell/internal/services/api/forms"
	"github.com/NordCoder/Inkwell/internal/services/api/middleware"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	uc *Usecase
}

func NewController(uc *Usecase) *Controller { return &Controller{uc: uc} }

func (ct *Controller) Register(r gin.IRouter) {
	g := r.Group("/auth")
	g.POST("/register", ct.register)
	g.POST("/login", ct.login)
	g.POST("/refresh", ct.refresh)
	g.GET("/verify", ct.verifyEmail)
	g.POST("/resend-verification", ct.resendVerification)

	authed := g.Group("", middleware.Auth(ct.uc))
	authed.POST("/logout", ct.logout)
	authed.GET("/me", ct.me)
}

func (ct *Controller) register(c *gin.Context) {
	var form forms.Register
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, pair, err := ct.uc.Register(c.Request.Context(), form.Email, form.Username, form.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": u, "tokens": pair})
}

func (ct *Controller) login(c *gin.Context) {
	var form forms.Login
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, pair, err := ct.uc.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "tokens": pair})
}

func (ct *Controller) refresh(c *gin.Context) {
	var form forms.Token
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pair, err := ct.uc.Refresh(c.Request.Context(), form.RefreshToken)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (ct *Controller) logout(c *gin.Context) {
	var form forms.Logout
	_ = c.ShouldBindJSON(&form)

	if err := ct.uc.Logout(c.Request.Context(), middleware.AccessToken(c), form.RefreshToken); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (ct *Controller) me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

func (ct *Controller) verifyEmail(c *gin.Context) {
	u, err := ct.uc.VerifyEmail(c.Request.Context(), c.Query("token"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "email verified", "user": u})
}

func (ct *Controller) resendVerification(c *gin.Context) {
	var form forms.ResendVerification
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := ct.uc.ResendVerification(c.Request.Context(), form.Email); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "verification email sent"})
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenRevoked):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, ErrUserInactive):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrEmailExists),
		errors.Is(err, ErrUsernameExists),
		errors.Is(err, ErrAlreadyVerified):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrInvalidVerification):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
