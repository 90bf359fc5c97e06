package project

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/pagesmith/pkg/element"
	"github.com/matzehuels/pagesmith/pkg/errors"
)

// User is a registered account. The password hash never leaves the server.
type User struct {
	ID             string    `json:"id" bson:"_id"`
	Username       string    `json:"username" bson:"username"`
	Email          string    `json:"email" bson:"email"`
	PasswordHash   []byte    `json:"-" bson:"password_hash"`
	ProfilePicture string    `json:"profilePicture,omitempty" bson:"profile_picture,omitempty"`
	CreatedAt      time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updated_at"`
}

// Project is a saved element document owned by one user.
type Project struct {
	ID           string            `json:"id" bson:"_id"`
	Name         string            `json:"name" bson:"name"`
	Owner        string            `json:"user" bson:"owner"`
	Elements     []element.Element `json:"elements" bson:"elements"`
	LastModified time.Time         `json:"lastModified" bson:"last_modified"`
	CreatedAt    time.Time         `json:"createdAt" bson:"created_at"`
	UpdatedAt    time.Time         `json:"updatedAt" bson:"updated_at"`
}

// Category groups templates in the gallery.
type Category string

// Template categories.
const (
	CategoryLanding   Category = "landing"
	CategoryPortfolio Category = "portfolio"
	CategoryBlog      Category = "blog"
	CategoryEcommerce Category = "ecommerce"
	CategoryOther     Category = "other"
)

// Categories lists the template categories in gallery order.
var Categories = []Category{CategoryLanding, CategoryPortfolio, CategoryBlog, CategoryEcommerce, CategoryOther}

// ParseCategory resolves a category name. Empty means other.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return CategoryOther, nil
	}
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidInput,
		"invalid category %q (must be one of: landing, portfolio, blog, ecommerce, other)", s)
}

// Template is a starter document new projects can be created from.
type Template struct {
	ID          string            `json:"id" bson:"_id" yaml:"id,omitempty"`
	Name        string            `json:"name" bson:"name" yaml:"name"`
	Description string            `json:"description" bson:"description" yaml:"description"`
	Thumbnail   string            `json:"thumbnail" bson:"thumbnail" yaml:"thumbnail"`
	Category    Category          `json:"category" bson:"category" yaml:"category"`
	Elements    []element.Element `json:"elements" bson:"elements" yaml:"elements"`
	CreatedBy   string            `json:"createdBy,omitempty" bson:"created_by,omitempty" yaml:"-"`
	CreatedAt   time.Time         `json:"createdAt" bson:"created_at" yaml:"-"`
	UpdatedAt   time.Time         `json:"updatedAt" bson:"updated_at" yaml:"-"`
}

// NewID returns a fresh record id.
func NewID() string { return uuid.NewString() }
