package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"valentine-storefront/internal/service/inbox"
)

type questionRequest struct {
	Question string `json:"question"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

func (a *api) askQuestion(c *gin.Context) {
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, ok := a.lookupProduct(c, c.Param("id"))
	if !ok {
		return
	}
	m, err := a.deps.Inbox.Ask(c.Request.Context(), sessionFrom(c).Identity(), p, req.Question)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (a *api) contact(c *gin.Context) {
	var req inbox.ContactInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m, err := a.deps.Inbox.Contact(c.Request.Context(), sessionFrom(c).Identity(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (a *api) answerMessage(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	m, err := a.deps.Inbox.Answer(c.Request.Context(), c.Param("id"), req.Answer)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}
