package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_ExecuteError(t *testing.T) {
	originalArgs := os.Args
	defer func() { os.Args = originalArgs }()

	os.Args = []string{"tt", "--unknownflag"}
	assert.Equal(t, 1, run())
}

func TestMain_CallsExitWithRunResult(t *testing.T) {
	originalExit := exitFunc
	originalArgs := os.Args
	defer func() {
		exitFunc = originalExit
		os.Args = originalArgs
	}()

	captured := -1
	exitFunc = func(code int) { captured = code }
	os.Args = []string{"tt", "version", "--short"}

	main()
	assert.Equal(t, 0, captured)
}
