package marvin

import (
	"fmt"
	"strings"
)

// Logger is the logging surface used across marvin.  The method set
// matches github.com/charmbracelet/log's *Logger, which host commands pass
// in; firmware uses Console.
type Logger interface {
	Debug(msg interface{}, keyvals ...interface{})
	Info(msg interface{}, keyvals ...interface{})
	Error(msg interface{}, keyvals ...interface{})
}

// Console is a Logger that prints to the serial console.  Debug lines are
// dropped unless Verbose is set.
type Console struct {
	Verbose bool
}

func (c Console) Debug(msg interface{}, keyvals ...interface{}) {
	if c.Verbose {
		c.print("DEBU", msg, keyvals)
	}
}

func (c Console) Info(msg interface{}, keyvals ...interface{}) {
	c.print("INFO", msg, keyvals)
}

func (c Console) Error(msg interface{}, keyvals ...interface{}) {
	c.print("ERRO", msg, keyvals)
}

func (c Console) print(level string, msg interface{}, keyvals []interface{}) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %v", level, msg)
	for i := 0; i < len(keyvals); i += 2 {
		if i+1 < len(keyvals) {
			fmt.Fprintf(&b, " %v=%v", keyvals[i], keyvals[i+1])
		} else {
			fmt.Fprintf(&b, " %v=MISSING", keyvals[i])
		}
	}
	fmt.Printf("%s\r\n", b.String())
}
