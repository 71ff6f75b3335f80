package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const PostTitleMaxLength = 200

type Post struct {
	ID          int64
	Title       string
	Body        string
	CategoryID  int64
	OwnerID     int64
	Owner       string
	Highlighted string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the writable fields of p. It does not check that the
// referenced category exists, the store reports that.
func (p Post) Validate() error {
	v := ValidationError{}
	switch {
	case strings.TrimSpace(p.Title) == "":
		v.Add("title", MsgBlank)
	case utf8.RuneCountInString(p.Title) > PostTitleMaxLength:
		v.Add("title", maxLengthMessage(PostTitleMaxLength))
	}
	if strings.TrimSpace(p.Body) == "" {
		v.Add("body", MsgBlank)
	}
	if p.CategoryID <= 0 {
		v.Add("category", MsgRequired)
	}
	return v.OrNil()
}
