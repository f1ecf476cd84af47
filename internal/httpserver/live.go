package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"valentine-storefront/internal/domain"
	"valentine-storefront/internal/service/favorites"
	"valentine-storefront/internal/service/inbox"
)

type unreadEvent struct {
	Unread int `json:"unread"`
}

type favoritesEvent struct {
	Favorites []string `json:"favorites"`
}

// live streams the unread answer count and the favorite set as server-sent
// events. Both subscriptions belong to the request and end with it.
func (a *api) live(c *gin.Context) {
	ctx := c.Request.Context()
	who := sessionFrom(c).Identity()

	unread := make(chan inbox.State, 1)
	favs := make(chan domain.FavoriteSet, 1)

	watcher := inbox.NewWatcher(a.deps.MessageRepo, a.deps.Metrics, a.logger)
	defer watcher.Close()
	if err := watcher.Start(ctx, who, func(s inbox.State) { latest(unread, s) }); err != nil {
		a.fail(c, err)
		return
	}
	tracker := favorites.NewTracker(a.deps.ProfileRepo, a.logger)
	defer tracker.Close()
	if err := tracker.Start(ctx, who, func(s domain.FavoriteSet) { latest(favs, s) }); err != nil {
		a.fail(c, err)
		return
	}

	done := a.deps.Metrics.StreamOpened()
	defer done()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	keepAlive := time.NewTicker(a.deps.KeepAlive)
	defer keepAlive.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.deps.closing:
			return
		case s := <-unread:
			c.SSEvent("unread", unreadEvent{Unread: s.Unread})
		case s := <-favs:
			c.SSEvent("favorites", favoritesEvent{Favorites: s.Strings()})
		case <-keepAlive.C:
			if _, err := c.Writer.WriteString(": keep-alive\n\n"); err != nil {
				return
			}
		}
		c.Writer.Flush()
	}
}

// latest replaces any undelivered value so a slow client only sees the
// newest state.
func latest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
