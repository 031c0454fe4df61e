// Package client is a small Go client for the folio API, used by the
// integration tests and handy for scripting imports and moderation.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/SergeyParamoshkin/folio/internal/model"
	"github.com/SergeyParamoshkin/folio/internal/session"
	"github.com/SergeyParamoshkin/folio/internal/visitor"
)

type Client struct {
	http.Client
	Addr string

	// VisitorID identifies this client for likes. Empty lets the server
	// mint one, which is then kept for later calls.
	VisitorID string
	// Token is the operator session token, set by Login.
	Token string
}

// Error is a non-2xx answer from the API.
type Error struct {
	StatusCode int
	Status     string `json:"status"`
	Detail     string `json:"error"`
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("folio: %d %s: %s", e.StatusCode, e.Status, e.Detail)
	}

	return fmt.Sprintf("folio: %d %s", e.StatusCode, e.Status)
}

type Comment struct {
	model.Comment
	PublishedAt string `json:"publishedAt"`
}

type Article struct {
	model.Article
	EmbedURL    string `json:"embedUrl"`
	PublishedAt string `json:"publishedAt"`
}

// ArticlePage is an article as served on its page.
type ArticlePage struct {
	Article
	Liked    bool       `json:"liked"`
	Comments []*Comment `json:"comments"`
}

type Like struct {
	LikesCount int64 `json:"likesCount"`
	Liked      bool  `json:"liked"`
	Applied    bool  `json:"applied"`
}

func (c *Client) Ping(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Addr+"/ping", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), err
}

// Articles lists a collection newest first. limit <= 0 lists everything.
func (c *Client) Articles(ctx context.Context, coll model.Collection, limit int) ([]*Article, error) {
	path := "/" + coll.String() + "/"
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}

	var out []*Article

	return out, c.call(ctx, http.MethodGet, path, nil, &out)
}

// Article loads an article page by id or slug.
func (c *Client) Article(ctx context.Context, coll model.Collection, key string) (*ArticlePage, error) {
	var out ArticlePage
	if err := c.call(ctx, http.MethodGet, articlePath(coll, key, ""), nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) Like(ctx context.Context, coll model.Collection, key string) (*Like, error) {
	var out Like
	if err := c.call(ctx, http.MethodPost, articlePath(coll, key, "like"), nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) AddComment(ctx context.Context, coll model.Collection, key, author, text string) (*Comment, error) {
	in := map[string]string{"authorName": author, "text": text}

	var out Comment
	if err := c.call(ctx, http.MethodPost, articlePath(coll, key, "comments"), in, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) Comments(ctx context.Context, coll model.Collection, key string) ([]*Comment, error) {
	var out []*Comment

	return out, c.call(ctx, http.MethodGet, articlePath(coll, key, "comments"), nil, &out)
}

// DeleteComment needs a session; see Login.
func (c *Client) DeleteComment(ctx context.Context, coll model.Collection, key, commentID string) error {
	return c.call(ctx, http.MethodDelete, articlePath(coll, key, "comments/"+url.PathEscape(commentID)), nil, nil)
}

// Login opens an operator session and keeps its token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*session.Session, error) {
	in := map[string]string{"email": email, "password": password}

	var out session.Response
	if err := c.call(ctx, http.MethodPost, "/session", in, &out); err != nil {
		return nil, err
	}
	c.Token = out.Token

	return out.Session, nil
}

func articlePath(coll model.Collection, key, sub string) string {
	return "/" + coll.String() + "/" + url.PathEscape(key) + "/" + sub
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimSuffix(c.Addr, "/")+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.VisitorID != "" {
		req.Header.Set(visitor.Header, c.VisitorID)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if c.VisitorID == "" {
		c.VisitorID = resp.Header.Get(visitor.Header)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &Error{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Status = http.StatusText(resp.StatusCode)
		}

		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
