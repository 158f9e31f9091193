package readme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown(t *testing.T) {
	out, rendered, err := Render("# Title\n\nSome *text*.", "text/markdown; variant=GFM")
	require.NoError(t, err)
	assert.True(t, rendered)
	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, "<em>text</em>")
}

func TestRenderMarkdownEscapesRawHTML(t *testing.T) {
	out, rendered, err := Render("hello <script>alert(1)</script>", "text/markdown")
	require.NoError(t, err)
	assert.True(t, rendered)
	assert.NotContains(t, out, "<script>")
}

func TestRenderPlainText(t *testing.T) {
	out, rendered, err := Render("a < b & c", "text/plain")
	require.NoError(t, err)
	assert.True(t, rendered)
	assert.Equal(t, "<pre>a &lt; b &amp; c</pre>", out)
}

func TestRenderRSTNotRendered(t *testing.T) {
	out, rendered, err := Render("Title\n=====\n", "text/x-rst")
	require.NoError(t, err)
	assert.False(t, rendered)
	assert.Empty(t, out)
}

func TestRenderDefaultsToRST(t *testing.T) {
	_, rendered, err := Render("anything", "")
	require.NoError(t, err)
	assert.False(t, rendered)
}

func TestRenderEmpty(t *testing.T) {
	out, rendered, err := Render("", "text/markdown")
	require.NoError(t, err)
	assert.False(t, rendered)
	assert.Empty(t, out)
}
