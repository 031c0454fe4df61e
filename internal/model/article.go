package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoRecord is returned by stores when a point lookup matches nothing.
var ErrNoRecord = errors.New("no record")

// Collection names the top-level set an Article belongs to.
type Collection string

const (
	Posts    Collection = "posts"
	Trabajos Collection = "trabajos"
)

// Collections lists every known collection in routing order.
var Collections = []Collection{Posts, Trabajos}

// ParseCollection maps a path segment to a Collection.
func ParseCollection(s string) (Collection, error) {
	for _, c := range Collections {
		if string(c) == s {
			return c, nil
		}
	}

	return "", fmt.Errorf("unknown collection %q", s)
}

func (c Collection) String() string { return string(c) }

// Article data model. One publishable piece of content: a blog post or a
// portfolio case study.
type Article struct {
	ID         string     `json:"id"`
	Collection Collection `json:"collection"`
	Slug       string     `json:"slug"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	Excerpt    string     `json:"excerpt"`
	ImageURL   string     `json:"imageUrl"`
	VideoURL   string     `json:"videoUrl"`
	ProjectURL string     `json:"projectUrl,omitempty"` // trabajos only
	LikesCount int64      `json:"likesCount"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Clone returns a copy so stores never hand out their own pointers.
func (a *Article) Clone() *Article {
	if a == nil {
		return nil
	}
	c := *a

	return &c
}
