package model

import "time"

// AnonymousAuthor replaces a blank comment author name.
const AnonymousAuthor = "Anonymous"

// Comment belongs to exactly one Article. Deleting the Article does not
// delete its comments.
type Comment struct {
	ID         string     `json:"id"`
	Collection Collection `json:"-"`
	ArticleID  string     `json:"articleId"`
	AuthorName string     `json:"authorName"`
	Text       string     `json:"text"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (c *Comment) Clone() *Comment {
	if c == nil {
		return nil
	}
	cc := *c

	return &cc
}
