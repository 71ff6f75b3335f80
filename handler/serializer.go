package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"blog/domain"

	"github.com/labstack/echo/v4"
)

const msgNull = "This field may not be null."

type CategoryDTO struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PostDTO struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Category    int64     `json:"category"`
	Owner       string    `json:"owner"`
	Highlighted string    `json:"highlighted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UserDTO struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Posts    []int64 `json:"posts"`
}

func newCategoryDTO(c domain.Category) CategoryDTO {
	return CategoryDTO{
		ID:        c.ID,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func newPostDTO(p domain.Post) PostDTO {
	return PostDTO{
		ID:          p.ID,
		Title:       p.Title,
		Body:        p.Body,
		Category:    p.CategoryID,
		Owner:       p.Owner,
		Highlighted: p.Highlighted,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func newUserDTO(u domain.User) UserDTO {
	posts := u.PostIDs
	if posts == nil {
		posts = []int64{}
	}
	return UserDTO{ID: u.ID, Username: u.Username, Posts: posts}
}

// payload is a decoded JSON object whose fields are read one at a time, so a
// missing field, a null and a value of the wrong type can be told apart.
type payload map[string]json.RawMessage

func readPayload(c echo.Context) (payload, error) {
	var p payload
	dec := json.NewDecoder(c.Request().Body)
	err := dec.Decode(&p)
	if errors.Is(err, io.EOF) {
		return payload{}, nil
	}
	if err == nil {
		var extra json.RawMessage
		if err = dec.Decode(&extra); errors.Is(err, io.EOF) {
			err = nil
		} else if err == nil {
			err = errors.New("extra data after JSON object")
		}
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "JSON parse error - "+err.Error()).SetInternal(err)
	}
	if p == nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid data. Expected a dictionary, but got null.")
	}
	return p, nil
}

// decode reads field name into dst. It reports whether the field was present;
// a present but unusable value is recorded in v.
func (p payload) decode(v domain.ValidationError, name string, dst any) bool {
	raw, ok := p[name]
	if !ok {
		return false
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		v.Add(name, msgNull)
		return true
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		v.Add(name, domain.MsgIncorrectType)
	}
	return true
}

// decodeString reads a string field with surrounding whitespace trimmed.
func (p payload) decodeString(v domain.ValidationError, name string, dst *string) bool {
	if !p.decode(v, name, dst) {
		return false
	}
	*dst = strings.TrimSpace(*dst)
	return true
}

// decodePK reads a primary key given either as a JSON number or as a string
// holding an integer.
func (p payload) decodePK(v domain.ValidationError, name string, dst *int64) bool {
	raw, ok := p[name]
	if !ok {
		return false
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return p.decode(v, name, dst)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		v.Add(name, domain.MsgIncorrectType)
		return true
	}
	*dst = id
	return true
}

// decodePost applies the writable post fields of p onto post. Unless partial,
// every required field must be present. When checkOwner is set, an owner
// other than the current one is rejected; otherwise owner is ignored.
func (p payload) decodePost(post *domain.Post, partial, checkOwner bool) error {
	v := domain.ValidationError{}
	if !p.decodeString(v, "title", &post.Title) && !partial {
		v.Add("title", domain.MsgRequired)
	}
	if !p.decode(v, "body", &post.Body) && !partial {
		v.Add("body", domain.MsgRequired)
	}
	if p.decodePK(v, "category", &post.CategoryID) {
		if _, rejected := v["category"]; !rejected && post.CategoryID <= 0 {
			v.Add("category", domain.DoesNotExistMessage(post.CategoryID))
		}
	} else if !partial {
		v.Add("category", domain.MsgRequired)
	}
	if checkOwner {
		owner := post.Owner
		if p.decode(v, "owner", &owner) && owner != post.Owner {
			v.Add("owner", domain.MsgReadOnly)
		}
	}
	return mergeValidation(v, post.Validate())
}

func (p payload) decodeCategory(category *domain.Category) error {
	v := domain.ValidationError{}
	p.decodeString(v, "title", &category.Title)
	return mergeValidation(v, category.Validate())
}

// mergeValidation adds the errors of err for fields v has not rejected yet.
func mergeValidation(v domain.ValidationError, err error) error {
	var more domain.ValidationError
	if errors.As(err, &more) {
		for field, msgs := range more {
			if _, seen := v[field]; !seen {
				v[field] = msgs
			}
		}
	} else if err != nil {
		return err
	}
	return v.OrNil()
}
