package domain

import "net/http"

// Identity is the caller of a request. The zero value is anonymous.
type Identity struct {
	UserID   int64
	Username string
	Admin    bool
}

func (i Identity) Authenticated() bool {
	return i.UserID != 0
}

func SafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// CanWrite reports whether i may update or delete p.
func CanWrite(i Identity, p Post) bool {
	return i.Authenticated() && i.UserID == p.OwnerID
}

// AuthorizePost gates a request with the given method against p. Reads are
// always allowed.
func AuthorizePost(method string, i Identity, p Post) error {
	if SafeMethod(method) {
		return nil
	}
	if !i.Authenticated() {
		return ErrUnauthenticated
	}
	if !CanWrite(i, p) {
		return ErrForbidden
	}
	return nil
}

func RequireAuthenticated(i Identity) error {
	if !i.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

func RequireAdmin(i Identity) error {
	if !i.Authenticated() {
		return ErrUnauthenticated
	}
	if !i.Admin {
		return ErrForbidden
	}
	return nil
}
