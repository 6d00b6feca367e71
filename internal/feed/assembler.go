package feed

import (
	"context"
	"errors"
	"math"

	"github.com/inkstream-app/backend/internal/models"
	"github.com/inkstream-app/backend/internal/repositories"
	"github.com/inkstream-app/backend/internal/social"
	"gorm.io/gorm"
)

var (
	// ErrNotFound means the selector referenced a group or user that does not exist.
	ErrNotFound = errors.New("feed: subject not found")
	// ErrUnauthorized means the following feed was requested without a viewer.
	ErrUnauthorized = errors.New("feed: authenticated viewer required")
)

// Page is one slice of an assembled feed. Posts carry their author and group
// preloaded so callers render without extra round trips. Group and Author are
// set when the selector resolved one, so group and profile pages get their
// header entity from the same call.
type Page struct {
	Posts      []models.Post `json:"posts"`
	Number     int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	TotalItems int64         `json:"total_items"`
	Group      *models.Group `json:"group,omitempty"`
	Author     *models.User  `json:"author,omitempty"`
}

// Assembler turns a selector, viewer and page number into an ordered,
// paginated slice of posts.
type Assembler struct {
	posts    repositories.PostRepository
	groups   repositories.GroupRepository
	users    repositories.UserRepository
	graph    *social.Graph
	pageSize int
}

// NewAssembler creates an Assembler. pageSize values below 1 fall back to 10.
func NewAssembler(
	posts repositories.PostRepository,
	groups repositories.GroupRepository,
	users repositories.UserRepository,
	graph *social.Graph,
	pageSize int,
) *Assembler {
	if pageSize < 1 {
		pageSize = 10
	}
	return &Assembler{
		posts:    posts,
		groups:   groups,
		users:    users,
		graph:    graph,
		pageSize: pageSize,
	}
}

// PageSize returns the configured number of posts per page.
func (a *Assembler) PageSize() int {
	return a.pageSize
}

// Assemble resolves the selector, counts the filtered set and returns the
// requested page. Out-of-range page numbers are clamped to
// [1, total_pages], never an error. viewerID is zero for anonymous viewers.
func (a *Assembler) Assemble(ctx context.Context, sel Selector, viewerID uint, page int) (*Page, error) {
	var (
		filter repositories.PostFilter
		result Page
	)

	switch sel.Kind {
	case KindGlobal:
		// no filter

	case KindGroup:
		group, err := a.groups.GetGroupBySlug(sel.Slug)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		filter.GroupID = &group.ID
		result.Group = group

	case KindAuthor:
		author, err := a.users.GetUserByUsername(sel.Username)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		filter.AuthorID = &author.ID
		result.Author = author

	case KindFollowing:
		if viewerID == 0 {
			return nil, ErrUnauthorized
		}
		ids, err := a.graph.FollowingIDs(ctx, viewerID)
		if err != nil {
			return nil, err
		}
		if len(ids) == 0 {
			// Nothing followed: an empty feed, not an error.
			result.Number = 1
			result.TotalPages = 1
			result.Posts = []models.Post{}
			return &result, nil
		}
		filter.AuthorIDs = ids
	}

	total, err := a.posts.CountPosts(ctx, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(a.pageSize)))
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	offset := (page - 1) * a.pageSize
	posts, err := a.posts.ListPosts(ctx, filter, offset, a.pageSize)
	if err != nil {
		return nil, err
	}

	result.Posts = posts
	result.Number = page
	result.TotalPages = totalPages
	result.TotalItems = total
	return &result, nil
}
