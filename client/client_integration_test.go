//go:build integration

package client

import (
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SergeyParamoshkin/folio/internal/model"
)

func addr() string {
	if a := os.Getenv("FOLIO_ADDR"); a != "" {
		return a
	}

	return "http://localhost:3333"
}

func TestPing(t *testing.T) {
	c := Client{Addr: addr(), Client: http.Client{}}

	s, err := c.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pong", s)
}

func TestListPosts(t *testing.T) {
	c := Client{Addr: addr(), Client: http.Client{}}

	_, err := c.Articles(context.Background(), model.Posts, 5)
	require.NoError(t, err)
}
