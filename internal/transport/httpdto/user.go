package httpdto

import (
	"database/sql"

	"messagely/internal/domain/user"
)

// UsersResponse is returned by GET /users
type UsersResponse struct {
	Users []UserBasicDTO `json:"users"`
}

type UserBasicDTO struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// UserResponse is returned by GET /users/:username
type UserResponse struct {
	User UserDTO `json:"user"`
}

// UserDTO is a full profile. The password hash never appears here.
type UserDTO struct {
	Username    string  `json:"username"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Phone       string  `json:"phone"`
	JoinAt      string  `json:"join_at"`
	LastLoginAt *string `json:"last_login_at"`
}

// ContactDTO is the other party nested in message listings.
type ContactDTO struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

func FromUserBasic(u user.Basic) UserBasicDTO {
	return UserBasicDTO{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func FromUserBasicSlice(users []user.Basic) []UserBasicDTO {
	dtos := make([]UserBasicDTO, len(users))
	for i, u := range users {
		dtos[i] = FromUserBasic(u)
	}
	return dtos
}

func FromProfile(p user.Profile) UserDTO {
	return UserDTO{
		Username:    p.Username,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Phone:       p.Phone,
		JoinAt:      formatTime(p.JoinAt),
		LastLoginAt: formatNullTime(p.LastLoginAt),
	}
}

func FromContact(c user.Contact) ContactDTO {
	return ContactDTO{
		Username:  c.Username,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Phone:     c.Phone,
	}
}

func formatNullTime(t sql.NullTime) *string {
	if !t.Valid {
		return nil
	}
	s := formatTime(t.Time)
	return &s
}
