package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// Role is one of the three portal roles.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleUser   Role = "user"
)

const (
	STATUS_ACTIVE    = "active"
	STATUS_SUSPENDED = "suspended"
)

// Roles lists the roles with their display labels, in privilege order.
var Roles = []struct {
	Value Role   `json:"value"`
	Label string `json:"label"`
}{
	{RoleAdmin, "Admin"},
	{RoleEditor, "Editor"},
	{RoleUser, "User"},
}

// ParseRole validates a raw role string.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleEditor, RoleUser:
		return r, nil
	}
	return "", fmt.Errorf("invalid role %q", s)
}

type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"type:varchar(255)" json:"name" validate:"required,max=255"`
	Email       string     `gorm:"uniqueIndex;type:varchar(255)" json:"email" validate:"required,email,max=255"`
	Password    string     `gorm:"type:varchar(255)" json:"-" validate:"required"`
	Role        Role       `gorm:"type:varchar(20);default:'user';index:idx_users_role_active,priority:1" json:"role" validate:"oneof=admin editor user"`
	IsActive    bool       `gorm:"not null;index:idx_users_role_active,priority:2" json:"is_active"`
	LastLoginAt *time.Time `gorm:"type:timestamp;default:null" json:"last_login_at"`
	LoginCount  int        `gorm:"default:0" json:"login_count"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	News      []News     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Documents []Document `gorm:"foreignKey:UploadedBy;constraint:OnDelete:CASCADE" json:"-"`
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

func NewUser(name, email, password string, role Role) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Name:     name,
		Email:    email,
		Password: pw,
		Role:     role,
		IsActive: true,
	}

	if err := u.Validate(); err != nil {
		return nil, err
	}

	return u, nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsEditor reports whether the user holds the editor role.
func (u *User) IsEditor() bool {
	return u != nil && u.Role == RoleEditor
}

// CanManageContent reports whether the user may create and edit news and documents.
func (u *User) CanManageContent() bool {
	return u.HasAnyRole(RoleAdmin, RoleEditor)
}

func (u *User) HasAnyRole(roles ...Role) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// Status renders the active flag the way the admin UI expects it.
func (u *User) Status() string {
	if u.IsActive {
		return STATUS_ACTIVE
	}
	return STATUS_SUSPENDED
}

// RecordLogin bumps the login counters.
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.LoginCount++
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// SetPassword hashes and sets a new password for the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}
