package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"valentine-storefront/internal/catalog"
	"valentine-storefront/internal/domain"
	"valentine-storefront/internal/session"
)

type productDetail struct {
	Product  domain.Product        `json:"product"`
	Favorite bool                  `json:"favorite"`
	Reviews  *domain.ReviewSummary `json:"reviews,omitempty"`
}

func (a *api) categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories": a.deps.Catalog.Categories(),
		"tags":       a.deps.Catalog.Tags(),
	})
}

func (a *api) products(c *gin.Context) {
	f := catalog.ParseFilter(c.Request.URL.Query())
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		page = 1
	}
	viewer := a.viewer(c, sessionFrom(c))
	c.JSON(http.StatusOK, a.deps.Catalog.Browse(f, viewer, page))
}

func (a *api) product(c *gin.Context) {
	p, ok := a.lookupProduct(c, c.Param("id"))
	if !ok {
		return
	}
	out := productDetail{Product: p}
	if v := a.viewer(c, sessionFrom(c)); v.SignedIn {
		out.Favorite = v.Favorites.Has(p.ID)
	}
	if a.deps.ReviewFeed != nil {
		summary := a.deps.ReviewFeed.Summary(p.ID.String())
		out.Reviews = &summary
	}
	c.JSON(http.StatusOK, out)
}

// viewer loads the caller's favorites. A failed lookup browses without them.
func (a *api) viewer(c *gin.Context, sess session.Session) catalog.Viewer {
	if !sess.SignedIn() || a.deps.Favorites == nil {
		return catalog.Viewer{}
	}
	favs, err := a.deps.Favorites.List(c.Request.Context(), sess.UID())
	if err != nil {
		a.logger.Warn().Err(err).Str("uid", sess.UID()).Msg("favorites unavailable for browse")
		favs = domain.FavoriteSet{}
	}
	return catalog.Viewer{SignedIn: true, Favorites: favs}
}

// lookupProduct writes a 404 and reports false for unknown or malformed ids.
func (a *api) lookupProduct(c *gin.Context, raw string) (domain.Product, bool) {
	id, err := domain.ParseProductID(raw)
	if err != nil {
		abortWithError(c, domain.ErrNotFound)
		return domain.Product{}, false
	}
	p, err := a.deps.Catalog.Get(id)
	if err != nil {
		a.fail(c, err)
		return domain.Product{}, false
	}
	return p, true
}
