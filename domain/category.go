package domain

import (
	"time"
	"unicode/utf8"
)

const CategoryTitleMaxLength = 100

type Category struct {
	ID        int64
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the writable fields of c. Title may be blank.
func (c Category) Validate() error {
	v := ValidationError{}
	if utf8.RuneCountInString(c.Title) > CategoryTitleMaxLength {
		v.Add("title", maxLengthMessage(CategoryTitleMaxLength))
	}
	return v.OrNil()
}
