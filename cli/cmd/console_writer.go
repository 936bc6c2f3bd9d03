package cmd

import (
	"fmt"
	"io"
	"os"
)

// consoleWriter is where the command output goes, tests replace it to
// capture the output.
var consoleWriter consoleWrapper = &writerWrapper{out: os.Stdout}

type (
	consoleWrapper interface {
		Println(a ...any)
		Printf(format string, a ...any)
	}

	writerWrapper struct {
		out io.Writer
	}
)

func (w *writerWrapper) Println(a ...any) {
	fmt.Fprintln(w.out, a...)
}

func (w *writerWrapper) Printf(format string, a ...any) {
	fmt.Fprintf(w.out, format, a...)
}
