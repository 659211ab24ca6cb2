package markup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render("**done** with `deploy`")
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>done</strong>")
	assert.Contains(t, out, "<code>deploy</code>")
}

func TestRenderStripsScripts(t *testing.T) {
	r := NewRenderer()
	out, err := r.Render("hello <script>alert(1)</script> [x](javascript:alert(1))")
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "hello")
}
