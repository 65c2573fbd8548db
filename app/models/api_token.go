package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// APIToken is a bearer token issued on login or registration. Only the hash is stored.
type APIToken struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Name       string     `gorm:"type:varchar(100);default:'auth_token'" json:"name"`
	TokenHash  string     `gorm:"type:char(64);uniqueIndex" json:"-"`
	Prefix     string     `gorm:"type:varchar(20);default:''" json:"prefix"`
	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

var tokenEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

const tokenPrefix = "ptl_"

// IssueAPIToken generates a new token for the user and returns the raw secret.
// Callers must persist the returned struct.
func IssueAPIToken(userID uint, name string) (*APIToken, string, error) {
	rawKey, prefix, hash, err := generateTokenMaterial()
	if err != nil {
		return nil, "", err
	}
	if name == "" {
		name = "auth_token"
	}
	return &APIToken{
		UserID:    userID,
		Name:      name,
		TokenHash: hash,
		Prefix:    prefix,
	}, rawKey, nil
}

// Touch updates the last-used timestamp metadata.
func (t *APIToken) Touch(at time.Time) {
	t.LastUsedAt = &at
}

// HashAPIKey returns the SHA-256 hash for the provided token.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(sum[:])
}

func generateTokenMaterial() (string, string, string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", "", err
	}
	encoded := strings.ToLower(tokenEncoding.EncodeToString(b))
	rawKey := tokenPrefix + encoded
	if len(rawKey) < 12 {
		return "", "", "", fmt.Errorf("token generation failed: key too short")
	}
	prefix := rawKey[:min(len(rawKey), 16)]
	return rawKey, prefix, HashAPIKey(rawKey), nil
}
