package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/inkstream-app/backend/internal/middleware"
	"github.com/inkstream-app/backend/internal/models"
	"github.com/inkstream-app/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// PostHandler handles post CRUD HTTP requests
type PostHandler struct {
	postRepository    repositories.PostRepository
	groupRepository   repositories.GroupRepository
	commentRepository repositories.CommentRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, groupRepo repositories.GroupRepository, commentRepo repositories.CommentRepository) *PostHandler {
	return &PostHandler{
		postRepository:    postRepo,
		groupRepository:   groupRepo,
		commentRepository: commentRepo,
	}
}

// RegisterPostRoutes registers the public post routes
func (h *PostHandler) RegisterPostRoutes(e *echo.Echo) {
	e.GET("/posts/:id/", h.Detail)
}

// RegisterProtectedPostRoutes registers the authenticated-only post routes
func (h *PostHandler) RegisterProtectedPostRoutes(g *echo.Group) {
	g.POST("/create/", h.Create)
	g.POST("/posts/:id/edit/", h.Edit)
	g.POST("/posts/:id/delete/", h.Delete)
}

// Detail returns a post with its comments, newest first
func (h *PostHandler) Detail(c echo.Context) error {
	post, err := h.loadPost(c)
	if err != nil {
		return err
	}

	comments, err := h.commentRepository.GetCommentsByPostID(post.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"post":     post,
		"comments": comments,
	})
}

// Create creates a new post and redirects to the author's profile
func (h *PostHandler) Create(c echo.Context) error {
	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if req.GroupID != nil {
		if err := h.groupExists(*req.GroupID); err != nil {
			return err
		}
	}

	post := &models.Post{
		Text:      req.Text,
		AuthorID:  middleware.ViewerID(c),
		GroupID:   req.GroupID,
		ImagePath: req.ImagePath,
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.Redirect(http.StatusFound, "/profile/"+middleware.ViewerUsername(c)+"/")
}

// Edit updates a post's text, group and image. Only the author may edit;
// anyone else is redirected to the detail view with the post untouched.
func (h *PostHandler) Edit(c echo.Context) error {
	post, err := h.loadPost(c)
	if err != nil {
		return err
	}

	detailPath := fmt.Sprintf("/posts/%d/", post.ID)
	if post.AuthorID != middleware.ViewerID(c) {
		return c.Redirect(http.StatusFound, detailPath)
	}

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if req.GroupID != nil {
		if err := h.groupExists(*req.GroupID); err != nil {
			return err
		}
	}

	post.Text = req.Text
	post.GroupID = req.GroupID
	post.ImagePath = req.ImagePath
	if err := h.postRepository.UpdatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.Redirect(http.StatusFound, detailPath)
}

// Delete removes a post and its comments. Non-authors are redirected away,
// same as Edit.
func (h *PostHandler) Delete(c echo.Context) error {
	post, err := h.loadPost(c)
	if err != nil {
		return err
	}

	if post.AuthorID != middleware.ViewerID(c) {
		return c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d/", post.ID))
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), post.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.Redirect(http.StatusFound, "/profile/"+middleware.ViewerUsername(c)+"/")
}

func (h *PostHandler) loadPost(c echo.Context) (*models.Post, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), uint(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return post, nil
}

func (h *PostHandler) groupExists(id uint) error {
	_, err := h.groupRepository.GetGroupByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusBadRequest, "Unknown group")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return nil
}
