package handler

import (
	"time"

	"blog/store"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Handler struct {
	Store        *store.Store
	JWTSecret    string
	EnableSignup bool
	Environment  string
	TokenTTL     time.Duration
}

// NewEcho builds the router with every route and middleware the API needs.
func (h *Handler) NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = customHTTPErrorHandler

	e.Pre(middleware.AddTrailingSlash())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: `{"time":"${time_rfc3339}","id":"${id}","method":"${method}","uri":"${uri}",` +
			`"status":${status},"latency":"${latency_human}","error":"${error}"}` + "\n",
	}))
	e.Use(middleware.Recover())
	e.Use(h.authenticate(), h.withIdentity)

	// Posts
	get(e, "/", h.GetPosts)
	e.POST("/", h.NewPost)
	get(e, "/:id/", h.GetByID)
	e.PUT("/:id/", h.EditPost)
	e.PATCH("/:id/", h.EditPost)
	e.DELETE("/:id/", h.DeletePost)

	// Users
	get(e, "/users/", h.GetUsers)
	get(e, "/users/:id/", h.GetUser)

	// Categories
	get(e, "/categories/", h.GetCategories)
	e.POST("/categories/", h.NewCategory)
	get(e, "/categories/:id/", h.GetCategory)
	e.PUT("/categories/:id/", h.EditCategory)
	e.DELETE("/categories/:id/", h.DeleteCategory)

	// Auth
	e.POST("/auth/signup/", h.NewUser)
	e.POST("/auth/login/", h.Login)
	e.POST("/auth/logout/", h.Logout)

	return e
}

// get registers a read route for both GET and HEAD.
func get(e *echo.Echo, path string, fn echo.HandlerFunc) {
	e.GET(path, fn)
	e.HEAD(path, fn)
}
