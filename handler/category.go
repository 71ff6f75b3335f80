package handler

import (
	"fmt"
	"net/http"

	"blog/domain"

	"github.com/labstack/echo/v4"
)

func (h *Handler) GetCategories(c echo.Context) error {
	categories, err := h.Store.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]CategoryDTO, 0, len(categories))
	for _, category := range categories {
		out = append(out, newCategoryDTO(category))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) NewCategory(c echo.Context) error {
	if err := domain.RequireAuthenticated(identity(c)); err != nil {
		return err
	}
	body, err := readPayload(c)
	if err != nil {
		return err
	}
	var category domain.Category
	if err := body.decodeCategory(&category); err != nil {
		return err
	}
	created, err := h.Store.CreateCategory(c.Request().Context(), category)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/categories/%d/", created.ID))
	return c.JSON(http.StatusCreated, newCategoryDTO(created))
}

func (h *Handler) GetCategory(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	category, err := h.Store.GetCategory(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCategoryDTO(category))
}

// EditCategory keeps the current title when none is supplied.
func (h *Handler) EditCategory(c echo.Context) error {
	if err := domain.RequireAdmin(identity(c)); err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	category, err := h.Store.GetCategory(c.Request().Context(), id)
	if err != nil {
		return err
	}
	body, err := readPayload(c)
	if err != nil {
		return err
	}
	if err := body.decodeCategory(&category); err != nil {
		return err
	}
	updated, err := h.Store.UpdateCategory(c.Request().Context(), category)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCategoryDTO(updated))
}

// DeleteCategory also deletes every post in the category.
func (h *Handler) DeleteCategory(c echo.Context) error {
	if err := domain.RequireAdmin(identity(c)); err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.Store.DeleteCategory(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
