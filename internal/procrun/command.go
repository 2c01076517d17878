package procrun

import (
	"strconv"
	"strings"
)

// Command is a structured external invocation. Arguments are passed to the
// binary verbatim; nothing is interpreted by a shell.
type Command struct {
	Name  string
	Args  []string
	Dir   string
	Label string
}

// String renders the command line for logs, quoting arguments that contain
// whitespace or quotes.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, quoteArg(c.Name))
	for _, arg := range c.Args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

func quoteArg(arg string) string {
	if arg == "" {
		return `""`
	}
	if strings.ContainsAny(arg, " \t\n\"'\\") {
		return strconv.Quote(arg)
	}
	return arg
}
