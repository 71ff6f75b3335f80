package domain

import (
	"regexp"
	"time"
	"unicode/utf8"
)

const UsernameMaxLength = 150

var usernameRegexp = regexp.MustCompile(`^[\w.@+-]+$`)

type User struct {
	ID        int64
	Username  string
	Admin     bool
	PostIDs   []int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u User) ValidateUsername() error {
	v := ValidationError{}
	switch {
	case u.Username == "":
		v.Add("username", MsgBlank)
	case utf8.RuneCountInString(u.Username) > UsernameMaxLength:
		v.Add("username", maxLengthMessage(UsernameMaxLength))
	case !usernameRegexp.MatchString(u.Username):
		v.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}
	return v.OrNil()
}

// ValidatePassword only rejects empty passwords.
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{"password": {MsgBlank}}
	}
	return nil
}
