package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"blog/domain"
	"blog/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	cookieName  = "Authorization"
	identityKey = "identity"
)

// Claims is the payload of the tokens handed out by signup and login.
// The subject holds the user id.
type Claims struct {
	Username string `json:"username"`
	Admin    bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// authenticate parses the bearer token or the Authorization cookie. Requests
// without a token pass through as anonymous; a bad token is rejected.
func (h *Handler) authenticate() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(h.JWTSecret),
		TokenLookup: "header:Authorization:Bearer ,cookie:" + cookieName,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(Claims)
		},
		ContinueOnIgnoredError: true,
		ErrorHandler: func(c echo.Context, err error) error {
			var missing *echojwt.TokenExtractionError
			if errors.As(err, &missing) {
				return nil
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token.").SetInternal(err)
		},
	})
}

// withIdentity turns the verified token left by authenticate into the
// domain.Identity handlers work with. The token only names the user; the
// user must still exist and its admin flag is read from the store.
func (h *Handler) withIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			c.Set(identityKey, domain.Identity{})
			return next(c)
		}
		claims, ok := token.Claims.(*Claims)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token.")
		}
		userID, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil || userID <= 0 {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token.")
		}
		u, err := h.Store.GetUser(c.Request().Context(), userID)
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "User not found.")
		}
		if err != nil {
			return err
		}
		c.Set(identityKey, domain.Identity{
			UserID:   u.ID,
			Username: u.Username,
			Admin:    u.Admin,
		})
		return next(c)
	}
}

func identity(c echo.Context) domain.Identity {
	i, _ := c.Get(identityKey).(domain.Identity)
	return i
}

func (h *Handler) issueToken(u domain.User) (string, time.Time, error) {
	if h.JWTSecret == "" {
		return "", time.Time{}, errors.New("missing secret")
	}
	issued := time.Now()
	exp := issued.Add(h.TokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: u.Username,
		Admin:    u.Admin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(u.ID, 10),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString([]byte(h.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func authorizationCookie(token string, exp time.Time) *http.Cookie {
	cookie := new(http.Cookie)
	cookie.Name = cookieName
	cookie.Value = token
	cookie.Expires = exp
	cookie.Path = "/"
	cookie.HttpOnly = true
	cookie.SameSite = http.SameSiteLaxMode
	return cookie
}
