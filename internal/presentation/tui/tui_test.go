package tui_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxelgameslib/voxelgameslib/internal/presentation/tui"
)

func TestMarkdownTable(t *testing.T) {
	got := tui.MarkdownTable(
		[]string{"Name", "Version"},
		[][]string{{"HealFeature", "1.0"}, {"a|b", "2"}},
	)
	assert.Equal(t, "| Name | Version |\n| --- | --- |\n| HealFeature | 1.0 |\n| a\\|b | 2 |\n", got)
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "2.0.0")
	assert.Contains(t, buf.String(), "v2.0.0")
}

func TestNewRenderer(t *testing.T) {
	render := tui.NewRenderer()
	out, err := render("# Features\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Features")
}
