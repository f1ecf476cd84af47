package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"valentine-storefront/internal/domain"
)

type checkoutRequest struct {
	Shipping domain.ShippingDetails `json:"shipping"`
	Payment  domain.PaymentDetails  `json:"payment"`
}

func (a *api) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	o, err := a.deps.Orders.Checkout(c.Request.Context(), sessionFrom(c), a.openCart(c), req.Shipping, req.Payment)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (a *api) orders(c *gin.Context) {
	list, err := a.deps.Orders.ListForUser(c.Request.Context(), sessionFrom(c).UID())
	if err != nil {
		a.fail(c, err)
		return
	}
	if list == nil {
		list = []domain.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": list})
}
