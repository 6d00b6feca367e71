package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/inkstream-app/backend/internal/models"
	"github.com/inkstream-app/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// GroupHandler handles group administration HTTP requests
type GroupHandler struct {
	groupRepository repositories.GroupRepository
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(groupRepo repositories.GroupRepository) *GroupHandler {
	return &GroupHandler{groupRepository: groupRepo}
}

// RegisterGroupRoutes registers the public group listing
func (h *GroupHandler) RegisterGroupRoutes(e *echo.Echo) {
	e.GET("/groups/", h.List)
}

// RegisterProtectedGroupRoutes registers group administration routes
func (h *GroupHandler) RegisterProtectedGroupRoutes(g *echo.Group) {
	g.POST("/groups/", h.Create)
	g.POST("/groups/:slug/delete/", h.Delete)
}

// List returns all groups
func (h *GroupHandler) List(c echo.Context) error {
	groups, err := h.groupRepository.GetGroups()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"groups": groups})
}

// Create creates a new group
func (h *GroupHandler) Create(c echo.Context) error {
	var req models.CreateGroupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := h.groupRepository.GetGroupBySlug(req.Slug); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "Slug already in use")
	}

	group := &models.Group{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
	}
	if err := h.groupRepository.CreateGroup(group); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, group)
}

// Delete removes a group. Posts filed under it stay up, just without a group.
func (h *GroupHandler) Delete(c echo.Context) error {
	group, err := h.groupRepository.GetGroupBySlug(c.Param("slug"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Group not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.groupRepository.DeleteGroup(group.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.Redirect(http.StatusFound, "/groups/")
}
