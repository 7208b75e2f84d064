package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func articleFooter(width int) Footer {
	return Footer{
		Step: "2/4 Artículos",
		Groups: []HintGroup{
			{Label: "Catalog", Hints: []KeyHint{{Key: "space", Desc: "add"}, {Key: "enter", Desc: "continue"}}},
			{Label: "view", Hints: []KeyHint{{Key: "c", Desc: "category"}, {Key: "s", Desc: "sort"}}},
			{Label: "empty"},
		},
		Global: []KeyHint{{Key: "q", Desc: "quit"}},
		Width:  width,
	}
}

func TestFooter_RendersGroupsUnderTheirLabels(t *testing.T) {
	out := articleFooter(120).Render()

	assert.Contains(t, out, "2/4 Artículos")
	assert.Contains(t, out, "catalog:")
	assert.Contains(t, out, "view:")
	assert.Contains(t, out, "│")
	assert.NotContains(t, out, "empty:")
	assert.Less(t, strings.Index(out, "catalog:"), strings.Index(out, "view:"))
	assert.Less(t, strings.Index(out, "view:"), strings.Index(out, "quit"))
}

func TestFooter_DropsTrailingGroupsWhenNarrow(t *testing.T) {
	out := articleFooter(60).Render()

	assert.Contains(t, out, "catalog:")
	assert.NotContains(t, out, "view:")
	assert.Contains(t, out, "quit")
	assert.NotContains(t, out, "\n")
}

func TestFormFooter(t *testing.T) {
	out := FormFooter(100).Render()
	assert.Contains(t, out, "fields:")
	assert.Contains(t, out, "shift+tab")
	assert.Contains(t, out, "cancel")
}
