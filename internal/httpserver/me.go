package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"valentine-storefront/internal/domain"
	"valentine-storefront/internal/service/favorites"
	"valentine-storefront/internal/service/inbox"
	"valentine-storefront/internal/service/profile"
)

func (a *api) me(c *gin.Context) {
	sess := sessionFrom(c)
	p, err := a.deps.Profiles.Get(c.Request.Context(), sess.Identity())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": sess.Identity(), "profile": p})
}

func (a *api) updateProfile(c *gin.Context) {
	var req profile.Details
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := a.deps.Profiles.Update(c.Request.Context(), sessionFrom(c).Identity(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// listFavorites lists favorite ids and the products still in the catalog.
func (a *api) listFavorites(c *gin.Context) {
	set, err := a.deps.Favorites.List(c.Request.Context(), sessionFrom(c).UID())
	if err != nil {
		a.fail(c, err)
		return
	}
	products := make([]domain.Product, 0, len(set))
	for _, raw := range set.Strings() {
		id, err := domain.ParseProductID(raw)
		if err != nil {
			continue
		}
		if p, err := a.deps.Catalog.Get(id); err == nil {
			products = append(products, p)
		}
	}
	c.JSON(http.StatusOK, gin.H{"favorites": set.Strings(), "products": products})
}

// toggleFavorite answers with the intended state. synced is false when the
// stored profile could not be updated.
func (a *api) toggleFavorite(c *gin.Context) {
	id, err := domain.ParseProductID(c.Param("productId"))
	if err != nil {
		abortWithError(c, domain.ErrNotFound)
		return
	}
	favorite, err := a.deps.Favorites.Toggle(c.Request.Context(), sessionFrom(c).Identity(), id)
	var syncErr *favorites.SyncError
	if err != nil && !errors.As(err, &syncErr) {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"productId": id, "favorite": favorite, "synced": err == nil})
}

func (a *api) getInbox(c *gin.Context) {
	list, err := a.deps.Inbox.List(c.Request.Context(), sessionFrom(c).UID())
	if err != nil {
		a.fail(c, err)
		return
	}
	if list == nil {
		list = []domain.Message{}
	}
	c.JSON(http.StatusOK, inbox.State{Unread: inbox.UnreadCount(list), Messages: list})
}
