package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/inkstream-app/backend/internal/cache"
	"github.com/inkstream-app/backend/internal/feed"
	"github.com/inkstream-app/backend/internal/middleware"
	"github.com/inkstream-app/backend/internal/social"
	"github.com/labstack/echo/v4"
)

// IndexCacheKey is the single slot used for the global feed page. The key
// deliberately ignores viewer and page number: only the first page of the
// global feed is cached, for everyone.
const IndexCacheKey = "pages:index"

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	assembler *feed.Assembler
	graph     *social.Graph
	pageCache cache.PageCache
	cacheTTL  time.Duration
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(assembler *feed.Assembler, graph *social.Graph, pageCache cache.PageCache, cacheTTL time.Duration) *FeedHandler {
	return &FeedHandler{
		assembler: assembler,
		graph:     graph,
		pageCache: pageCache,
		cacheTTL:  cacheTTL,
	}
}

// RegisterFeedRoutes registers the public feed routes
func (h *FeedHandler) RegisterFeedRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
	e.GET("/group/:slug/", h.GroupFeed)
	e.GET("/profile/:username/", h.ProfileFeed)
}

// RegisterFollowingFeedRoute registers the authenticated-only following feed
func (h *FeedHandler) RegisterFollowingFeedRoute(g *echo.Group) {
	g.GET("/follow/", h.FollowingFeed)
}

// Index returns the global feed. The default render (no page parameter) is
// served from the page cache for the configured TTL; edits inside that window
// are intentionally not visible until expiry.
func (h *FeedHandler) Index(c echo.Context) error {
	viewerID := middleware.ViewerID(c)
	pageParam := c.QueryParam("page")

	render := func() ([]byte, error) {
		page, err := h.assembler.Assemble(c.Request().Context(), feed.Global(), viewerID, parsePage(pageParam))
		if err != nil {
			return nil, err
		}
		return json.Marshal(feedPayload(page))
	}

	if pageParam == "" {
		body, err := cache.GetOrRender(c.Request().Context(), h.pageCache, IndexCacheKey, h.cacheTTL, render)
		if err != nil {
			return mapFeedError(c, err)
		}
		return c.JSONBlob(http.StatusOK, body)
	}

	body, err := render()
	if err != nil {
		return mapFeedError(c, err)
	}
	return c.JSONBlob(http.StatusOK, body)
}

// GroupFeed returns posts filed under one group
func (h *FeedHandler) GroupFeed(c echo.Context) error {
	page, err := h.assembler.Assemble(
		c.Request().Context(),
		feed.ByGroup(c.Param("slug")),
		middleware.ViewerID(c),
		parsePage(c.QueryParam("page")),
	)
	if err != nil {
		return mapFeedError(c, err)
	}
	return c.JSON(http.StatusOK, feedPayload(page))
}

// ProfileFeed returns posts by one author, plus whether the viewer follows them
func (h *FeedHandler) ProfileFeed(c echo.Context) error {
	viewerID := middleware.ViewerID(c)
	page, err := h.assembler.Assemble(
		c.Request().Context(),
		feed.ByAuthor(c.Param("username")),
		viewerID,
		parsePage(c.QueryParam("page")),
	)
	if err != nil {
		return mapFeedError(c, err)
	}

	following := false
	if viewerID != 0 && page.Author != nil {
		following, err = h.graph.IsFollowing(c.Request().Context(), viewerID, page.Author.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	followers, err := h.graph.FollowerCount(c.Request().Context(), page.Author.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	followingCount, err := h.graph.FollowingCount(c.Request().Context(), page.Author.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	payload := feedPayload(page)
	payload["following"] = following
	payload["followers_count"] = followers
	payload["following_count"] = followingCount
	return c.JSON(http.StatusOK, payload)
}

// FollowingFeed returns posts by the authors the viewer follows
func (h *FeedHandler) FollowingFeed(c echo.Context) error {
	page, err := h.assembler.Assemble(
		c.Request().Context(),
		feed.Following(),
		middleware.ViewerID(c),
		parsePage(c.QueryParam("page")),
	)
	if err != nil {
		return mapFeedError(c, err)
	}
	return c.JSON(http.StatusOK, feedPayload(page))
}

// feedPayload is the wire shape shared by every feed route
func feedPayload(page *feed.Page) echo.Map {
	payload := echo.Map{
		"posts": page.Posts,
		"meta": echo.Map{
			"currentPage":  page.Number,
			"totalPages":   page.TotalPages,
			"totalItems":   page.TotalItems,
			"itemsPerPage": len(page.Posts),
		},
	}
	if page.Group != nil {
		payload["group"] = page.Group
	}
	if page.Author != nil {
		payload["author"] = page.Author.ToCompact()
	}
	return payload
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func mapFeedError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, feed.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	case errors.Is(err, feed.ErrUnauthorized):
		return c.Redirect(http.StatusFound, middleware.LoginRedirectURL(c.Request().URL.RequestURI()))
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
