package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"valentine-storefront/internal/service/identity"
)

type signUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type federatedRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetConfirmRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password"`
}

func (a *api) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := a.deps.Auth.SignUp(c.Request.Context(), req.Email, req.Password, identity.ProfileExtras{
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (a *api) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := a.deps.Auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (a *api) signInFederated(c *gin.Context) {
	var req federatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := a.deps.Auth.SignInFederated(c.Request.Context(), req.IDToken)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (a *api) signOut(c *gin.Context) {
	sess := sessionFrom(c)
	if sess.SignedIn() {
		if err := a.deps.Auth.SignOut(c.Request.Context(), sess.Token()); err != nil {
			a.fail(c, err)
			return
		}
	}
	c.Status(http.StatusNoContent)
}

func (a *api) sendPasswordReset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := a.deps.Auth.SendPasswordReset(c.Request.Context(), req.Email); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "sent"})
}

func (a *api) confirmPasswordReset(c *gin.Context) {
	var req resetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := a.deps.Auth.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		a.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *api) signInMethods(c *gin.Context) {
	methods, err := a.deps.Auth.ListSignInMethods(c.Request.Context(), c.Query("email"))
	if err != nil {
		a.fail(c, err)
		return
	}
	if methods == nil {
		methods = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"methods": methods})
}
