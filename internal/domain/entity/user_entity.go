package entity

import (
	"strings"
	"time"

	"github.com/oksasatya/bootcamp-directory/pkg/validation"
)

// ResetTokenTTL bounds how long an emailed reset token stays usable.
const ResetTokenTTL = 10 * time.Minute

// User is the aggregate root for accounts.
// Password holds the bcrypt hash and never leaves the service in JSON.
type User struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name" validate:"required"`
	Email               string     `json:"email" validate:"required,email"`
	Role                Role       `json:"role" validate:"required,role"`
	Password            string     `json:"-"`
	ResetPasswordToken  *string    `json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// Normalize trims user input and applies defaults.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = RoleUser
	}
}

func (u *User) Validate() error {
	u.Normalize()
	return validation.Struct(u)
}

// SetResetToken stores the hashed token with an expiry of now+ResetTokenTTL.
func (u *User) SetResetToken(hashed string, now time.Time) {
	exp := now.Add(ResetTokenTTL)
	u.ResetPasswordToken = &hashed
	u.ResetPasswordExpire = &exp
}

func (u *User) ClearResetToken() {
	u.ResetPasswordToken = nil
	u.ResetPasswordExpire = nil
}

// ResetTokenValid reports whether hashed matches an unexpired stored token.
func (u *User) ResetTokenValid(hashed string, now time.Time) bool {
	if u.ResetPasswordToken == nil || u.ResetPasswordExpire == nil {
		return false
	}
	return *u.ResetPasswordToken == hashed && now.Before(*u.ResetPasswordExpire)
}

// NewUser is the payload for registration and admin creation.
type NewUser struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Role     Role   `json:"role" binding:"omitempty,role"`
}

// UserUp is a partial update; nil fields are left untouched.
type UserUp struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Role     *Role   `json:"role"`
	Password *string `json:"password" binding:"omitempty,pwd"`
}

// Apply copies the set fields onto u. Password is handled by the caller
// because it has to be hashed first.
func (p UserUp) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
}
