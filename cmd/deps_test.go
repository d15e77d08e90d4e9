package cmd

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xolan/timetracker/internal/cli"
)

func TestLostPrompter_UsesDepsStreams(t *testing.T) {
	orig := isTerminal
	t.Cleanup(func() { isTerminal = orig })
	isTerminal = func(io.Reader) bool { return true }

	stdin := strings.NewReader("")
	stdout := &bytes.Buffer{}
	d := &Deps{Stdin: stdin, Stdout: stdout}

	p, ok := lostPrompter(d, ModeOneShot).(*cli.LostPrompter)
	require.True(t, ok)
	_, err := io.WriteString(p.Out, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", stdout.String())
	require.NoError(t, p.Out.Close())

	assert.Nil(t, lostPrompter(d, ModeInteractive), "the TUI never prompts on the terminal")

	isTerminal = func(io.Reader) bool { return false }
	assert.Nil(t, lostPrompter(d, ModeOneShot))
}
