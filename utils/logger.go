package utils

import (
	"fmt"
	"io"
)

// Logger collects verbose per-import diagnostics. A nil *Logger is
// valid and drops everything, so callers do not need to guard.
type Logger struct {
	io.Writer
}

func (l *Logger) Println(a ...interface{}) {
	if l != nil {
		fmt.Fprintln(l, a...)
	}
}

func (l *Logger) Printf(format string, a ...interface{}) {
	if l != nil {
		fmt.Fprintf(l, format+"\n", a...)
	}
}
