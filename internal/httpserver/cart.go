package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"valentine-storefront/internal/domain"
	"valentine-storefront/internal/service/cart"
)

type addLineRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"customization"`
}

type updateLineRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Note      string `json:"customization"`
	Quantity  int    `json:"quantity"`
}

// openCart loads the cart for the caller's scope.
func (a *api) openCart(c *gin.Context) *cart.Store {
	return cart.Open(c.Request.Context(), a.deps.Carts, sessionFrom(c).Identity(), a.logger)
}

func (a *api) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, a.openCart(c).View())
}

func (a *api) addCartLine(c *gin.Context) {
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !sessionFrom(c).SignedIn() {
		abortWithError(c, domain.ErrAuthRequired)
		return
	}
	p, ok := a.lookupProduct(c, req.ProductID)
	if !ok {
		return
	}
	store := a.openCart(c)
	if err := store.Add(c.Request.Context(), p, req.Quantity, req.Note); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, store.View())
}

func (a *api) updateCartLine(c *gin.Context) {
	var req updateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	id, err := domain.ParseProductID(req.ProductID)
	if err != nil {
		badRequest(c, err)
		return
	}
	store := a.openCart(c)
	if err := store.UpdateQuantity(c.Request.Context(), id, req.Note, req.Quantity); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, store.View())
}

func (a *api) removeCartLine(c *gin.Context) {
	id, err := domain.ParseProductID(c.Query("productId"))
	if err != nil {
		badRequest(c, err)
		return
	}
	store := a.openCart(c)
	if err := store.Remove(c.Request.Context(), id, c.Query("customization")); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, store.View())
}

func (a *api) clearCart(c *gin.Context) {
	store := a.openCart(c)
	if err := store.Clear(c.Request.Context()); err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, store.View())
}
