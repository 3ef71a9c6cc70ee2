package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// errOut is where error boxes are written. Swapped out in tests.
var errOut io.Writer = os.Stderr

var (
	shownMu sync.Mutex
	shown   []error
)

// ShowError prints the formatted error box without exiting, so commands can
// return the error and let cobra set the exit code.
func ShowError(context string, err error) {
	if err != nil {
		shownMu.Lock()
		shown = append(shown, err)
		shownMu.Unlock()
	}
	fmt.Fprintf(errOut, "\n---------------------------------------------------------\n")
	fmt.Fprintf(errOut, "🚨 FACELOG ERROR: %s\n", context)
	if err != nil {
		fmt.Fprintf(errOut, "DETAILS: %v\n", err)
	}
	fmt.Fprintf(errOut, "---------------------------------------------------------\n")
}

// Shown reports whether err, or an error it wraps, already went through
// ShowError, so the top level does not print it again.
func Shown(err error) bool {
	shownMu.Lock()
	defer shownMu.Unlock()
	for _, s := range shown {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}

// Die is the unified exit strategy for code paths that cannot return an error.
func Die(context string, err error) {
	ShowError(context, err)
	os.Exit(1)
}

// Warn prints a non-fatal problem.
func Warn(format string, args ...any) {
	fmt.Fprintf(errOut, "⚠️  "+format+"\n", args...)
}
