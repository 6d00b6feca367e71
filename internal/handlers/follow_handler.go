package handlers

import (
	"errors"
	"net/http"

	"github.com/inkstream-app/backend/internal/middleware"
	"github.com/inkstream-app/backend/internal/models"
	"github.com/inkstream-app/backend/internal/repositories"
	"github.com/inkstream-app/backend/internal/social"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	graph          *social.Graph
	userRepository repositories.UserRepository
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(graph *social.Graph, userRepo repositories.UserRepository) *FollowHandler {
	return &FollowHandler{
		graph:          graph,
		userRepository: userRepo,
	}
}

// RegisterFollowRoutes registers follow-related routes. GET is accepted
// alongside POST because the original page linked these as plain anchors.
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/profile/:username/follow/", h.Follow)
	g.GET("/profile/:username/follow/", h.Follow)
	g.POST("/profile/:username/unfollow/", h.Unfollow)
	g.GET("/profile/:username/unfollow/", h.Unfollow)
}

// Follow subscribes the viewer to an author. Self-follows and duplicates are
// collapsed into the same redirect as a successful follow; the caller cannot
// tell them apart and is not meant to.
func (h *FollowHandler) Follow(c echo.Context) error {
	author, err := h.loadAuthor(c)
	if err != nil {
		return err
	}

	if _, err := h.graph.Follow(c.Request().Context(), middleware.ViewerID(c), author.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.Redirect(http.StatusFound, "/profile/"+author.Username+"/")
}

// Unfollow removes the viewer's subscription to an author
func (h *FollowHandler) Unfollow(c echo.Context) error {
	author, err := h.loadAuthor(c)
	if err != nil {
		return err
	}

	if err := h.graph.Unfollow(c.Request().Context(), middleware.ViewerID(c), author.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.Redirect(http.StatusFound, "/profile/"+author.Username+"/")
}

func (h *FollowHandler) loadAuthor(c echo.Context) (*models.User, error) {
	author, err := h.userRepository.GetUserByUsername(c.Param("username"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return author, nil
}
