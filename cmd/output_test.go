package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const report = "# 連接器\n\n| Ticker | Name |\n|---|---|\n| 3533 | 嘉澤 |\n"

func TestOutput(t *testing.T) {
	var md strings.Builder
	require.NoError(t, (&output{format: formatMarkdown}).write(&md, report))
	assert.Equal(t, report, md.String())

	var html strings.Builder
	require.NoError(t, (&output{format: formatHTML}).write(&html, report))
	assert.Contains(t, html.String(), "<h1>連接器</h1>")
	assert.Contains(t, html.String(), "<td>3533</td>", "tables need the GFM extension")

	var term strings.Builder
	require.NoError(t, (&output{format: formatTerminal}).write(&term, report))
	assert.Contains(t, term.String(), "3533")
}

func TestOutputCheck(t *testing.T) {
	assert.NoError(t, (&output{format: formatHTML}).check())
	assert.Error(t, (&output{format: "pdf"}).check())
}
