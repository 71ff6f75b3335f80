package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"blog/domain"
	"blog/store"

	"github.com/labstack/echo/v4"
)

// pathID parses the :id route parameter. Anything but a positive integer
// cannot name a record.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, store.ErrNotFound
	}
	return id, nil
}

func (h *Handler) GetPosts(c echo.Context) error {
	posts, err := h.Store.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]PostDTO, 0, len(posts))
	for _, p := range posts {
		out = append(out, newPostDTO(p))
	}
	return c.JSON(http.StatusOK, out)
}

// NewPost creates a post owned by the caller. An owner in the payload is
// ignored.
func (h *Handler) NewPost(c echo.Context) error {
	caller := identity(c)
	if err := domain.RequireAuthenticated(caller); err != nil {
		return err
	}
	body, err := readPayload(c)
	if err != nil {
		return err
	}

	p := domain.Post{OwnerID: caller.UserID, Owner: caller.Username}
	if err := body.decodePost(&p, false, false); err != nil {
		return err
	}
	p.Highlighted = highlight(p.Body)

	created, err := h.Store.CreatePost(c.Request().Context(), p)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/%d/", created.ID))
	return c.JSON(http.StatusCreated, newPostDTO(created))
}

func (h *Handler) GetByID(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	p, err := h.Store.GetPost(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPostDTO(p))
}

// writablePost loads the post named by the route for a write by the caller.
func (h *Handler) writablePost(c echo.Context) (domain.Post, error) {
	caller := identity(c)
	if err := domain.RequireAuthenticated(caller); err != nil {
		return domain.Post{}, err
	}
	id, err := pathID(c)
	if err != nil {
		return domain.Post{}, err
	}
	p, err := h.Store.GetPost(c.Request().Context(), id)
	if err != nil {
		return domain.Post{}, err
	}
	if err := domain.AuthorizePost(c.Request().Method, caller, p); err != nil {
		return domain.Post{}, err
	}
	return p, nil
}

// EditPost serves both PUT (every writable field) and PATCH (only the
// supplied fields).
func (h *Handler) EditPost(c echo.Context) error {
	p, err := h.writablePost(c)
	if err != nil {
		return err
	}
	body, err := readPayload(c)
	if err != nil {
		return err
	}
	partial := c.Request().Method == http.MethodPatch
	if err := body.decodePost(&p, partial, true); err != nil {
		return err
	}
	p.Highlighted = highlight(p.Body)

	updated, err := h.Store.UpdatePost(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPostDTO(updated))
}

func (h *Handler) DeletePost(c echo.Context) error {
	p, err := h.writablePost(c)
	if err != nil {
		return err
	}
	if err := h.Store.DeletePost(c.Request().Context(), p.ID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
