package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"valentine-storefront/internal/domain"
	"valentine-storefront/internal/service/review"
)

func (a *api) reviewSummary(c *gin.Context) {
	id, err := domain.ParseProductID(c.Query("productId"))
	if err != nil {
		badRequest(c, errors.New("productId is required"))
		return
	}
	if a.deps.ReviewFeed == nil {
		c.JSON(http.StatusOK, domain.ReviewSummary{ProductID: id.String(), Latest: []domain.ReviewSnippet{}})
		return
	}
	c.JSON(http.StatusOK, a.deps.ReviewFeed.Summary(id.String()))
}

func (a *api) addReview(c *gin.Context) {
	var req review.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	rv, err := a.deps.Reviews.Add(c.Request.Context(), sessionFrom(c).Identity(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, rv)
}
