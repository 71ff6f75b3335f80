package handler

import (
	"errors"
	"net/http"
	"time"

	"blog/config"
	"blog/domain"
	"blog/store"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	UserDTO
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func readCredentials(c echo.Context) (credentials, error) {
	body, err := readPayload(c)
	if err != nil {
		return credentials{}, err
	}
	v := domain.ValidationError{}
	var creds credentials
	if !body.decode(v, "username", &creds.Username) {
		v.Add("username", domain.MsgRequired)
	}
	if !body.decode(v, "password", &creds.Password) {
		v.Add("password", domain.MsgRequired)
	}
	return creds, v.OrNil()
}

// GetUsers lists every user. Admins only.
func (h *Handler) GetUsers(c echo.Context) error {
	if err := domain.RequireAdmin(identity(c)); err != nil {
		return err
	}
	users, err := h.Store.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, newUserDTO(u))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	u, err := h.Store.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newUserDTO(u))
}

// NewUser signs a user up and logs it in. Signup is always open in the dev
// environment.
func (h *Handler) NewUser(c echo.Context) error {
	if h.Environment != config.DevEnv && !h.EnableSignup {
		return echo.NewHTTPError(http.StatusForbidden, "Sign up has been disabled.")
	}
	creds, err := readCredentials(c)
	if err != nil {
		return err
	}
	v := domain.ValidationError{}
	mergeValidation(v, domain.User{Username: creds.Username}.ValidateUsername())
	if err := mergeValidation(v, domain.ValidatePassword(creds.Password)); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u, err := h.Store.CreateUser(c.Request().Context(), creds.Username, hashedPassword, false)
	if err != nil {
		return err
	}
	return h.respondWithToken(c, http.StatusCreated, u)
}

func (h *Handler) Login(c echo.Context) error {
	creds, err := readCredentials(c)
	if err != nil {
		return err
	}
	u, storedPassword, err := h.Store.Credentials(c.Request().Context(), creds.Username)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusBadRequest, "Wrong username or password.")
	}
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword(storedPassword, []byte(creds.Password)); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Wrong username or password.")
	}
	u, err = h.Store.GetUser(c.Request().Context(), u.ID)
	if err != nil {
		return err
	}
	return h.respondWithToken(c, http.StatusOK, u)
}

func (h *Handler) Logout(c echo.Context) error {
	cookie := authorizationCookie("", time.Now().Add(-1*time.Second))
	c.SetCookie(cookie)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) respondWithToken(c echo.Context, code int, u domain.User) error {
	token, exp, err := h.issueToken(u)
	if err != nil {
		return err
	}
	c.SetCookie(authorizationCookie(token, exp))
	return c.JSON(code, tokenResponse{
		UserDTO:   newUserDTO(u),
		Token:     token,
		ExpiresAt: exp.UTC(),
	})
}
