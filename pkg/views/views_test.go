package views

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Home(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = renderer.Home(&buf, HomeData{Title: "StreamMe OAuth2 Client Demo", Username: "alice"})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "StreamMe OAuth2 Client Demo")
	assert.Contains(t, html, "alice")
	assert.Contains(t, html, "/logout")
}

func TestRenderer_HomeAnonymous(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = renderer.Home(&buf, HomeData{Title: "StreamMe OAuth2 Client Demo"})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "/login")
	assert.NotContains(t, html, "/logout")
}

func TestRenderer_UserData(t *testing.T) {
	renderer, err := NewRenderer()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = renderer.UserData(&buf, UserData{
		Username:  "alice",
		Routename: "feed",
		Data:      "{\n    \"items\": []\n}",
	})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "feed")
	assert.Contains(t, html, "alice")
	assert.Contains(t, html, "items")
}
