package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/xolan/timetracker/internal/logsync"
	"github.com/xolan/timetracker/internal/osutil"
)

// Lost log choices, in menu order.
var lostChoices = []string{
	"Retry the original log",
	"Use a different log file",
	"Keep working in the temporary log",
	"Quit",
}

// LostPrompter asks on the terminal what to do when the log file cannot be
// reached. It implements logsync.Prompter.
type LostPrompter struct {
	In  io.ReadCloser
	Out io.WriteCloser

	// selectFn and pathFn are replaced in tests.
	selectFn func(label string, items []string) (int, error)
	pathFn   func(label string) (string, error)
}

// NewLostPrompter returns a prompter reading from in and drawing on out.
func NewLostPrompter(in io.ReadCloser, out io.WriteCloser) *LostPrompter {
	p := &LostPrompter{In: in, Out: out}
	p.selectFn = p.runSelect
	p.pathFn = p.runPath
	return p
}

// PromptLost shows the failure and a menu of recovery actions.
func (p *LostPrompter) PromptLost(ctx context.Context, info logsync.LostInfo) (logsync.Decision, error) {
	if err := ctx.Err(); err != nil {
		return logsync.Decision{}, err
	}
	_, _ = WarnStyle.Fprintf(p.Out, "The log file %s cannot be reached (%s: %v)\n", info.Path, info.Op, info.Err)

	idx, err := p.selectFn("What now?", lostChoices)
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return logsync.Quit(), nil
		}
		return logsync.Decision{}, err
	}

	switch idx {
	case 0:
		return logsync.Retry(), nil
	case 1:
		path, err := p.pathFn("Log file")
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return logsync.Quit(), nil
			}
			return logsync.Decision{}, err
		}
		expanded, err := osutil.Expand(strings.TrimSpace(path))
		if err != nil {
			return logsync.Decision{}, err
		}
		return logsync.UsePath(expanded), nil
	case 2:
		return logsync.UseTemp(), nil
	default:
		return logsync.Quit(), nil
	}
}

func (p *LostPrompter) runSelect(label string, items []string) (int, error) {
	sel := promptui.Select{
		Label:  label,
		Items:  items,
		Stdin:  p.In,
		Stdout: p.Out,
	}
	idx, _, err := sel.Run()
	return idx, err
}

func (p *LostPrompter) runPath(label string) (string, error) {
	templates := &promptui.PromptTemplates{
		Prompt:  "{{ . }}: ",
		Valid:   "{{ . | green }}: ",
		Invalid: "{{ . | red }}: ",
		Success: "{{ . | bold }}: ",
	}
	prompt := promptui.Prompt{
		Label:     label,
		Templates: templates,
		Stdin:     p.In,
		Stdout:    p.Out,
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return fmt.Errorf("path cannot be empty")
			}
			return nil
		},
	}
	return prompt.Run()
}
