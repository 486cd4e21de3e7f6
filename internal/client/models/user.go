package models

import "fmt"

// Role is the authorization level of the signed-in principal.
type Role string

const (
	RoleNone    Role = ""
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ParseRole maps a server/stored role name to a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleAdmin:
		return Role(s), nil
	case RoleNone:
		return RoleNone, nil
	default:
		return RoleNone, fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}

// StudentStatus is the moderation state of a student account.
type StudentStatus string

const (
	StatusPending  StudentStatus = "pending"
	StatusApproved StudentStatus = "approved"
	StatusBlocked  StudentStatus = "blocked"
)

// User is the authenticated principal as returned by /auth/me and the login
// endpoints. Admin accounts carry Username; students carry the rest.
type User struct {
	ID         string        `json:"_id"`
	Name       string        `json:"name"`
	Email      string        `json:"email,omitempty"`
	Username   string        `json:"username,omitempty"`
	Role       Role          `json:"role"`
	Department string        `json:"department,omitempty"`
	Year       string        `json:"year,omitempty"`
	RollNo     string        `json:"rollno,omitempty"`
	Mobile     string        `json:"mobile,omitempty"`
	Status     StudentStatus `json:"status,omitempty"`
}

// DisplayName prefers the person's name, then the admin username, then email.
func (u *User) DisplayName() string {
	switch {
	case u == nil:
		return ""
	case u.Name != "":
		return u.Name
	case u.Username != "":
		return u.Username
	default:
		return u.Email
	}
}

// Registration is the payload of POST /auth/register.
type Registration struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	RollNo     string `json:"rollno"`
	Department string `json:"department"`
	Year       string `json:"year"`
	Mobile     string `json:"mobile"`
	Password   string `json:"password"`
}

// ProfileUpdate is the payload of PUT /students/profile. Empty fields are
// left unchanged by the server.
type ProfileUpdate struct {
	Name       string `json:"name,omitempty"`
	Department string `json:"department,omitempty"`
	Year       string `json:"year,omitempty"`
	Mobile     string `json:"mobile,omitempty"`
}

// TokenPair is the credential pair issued by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult is the data of a successful login.
type LoginResult struct {
	User User `json:"user"`
	TokenPair
}
