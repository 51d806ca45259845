package model

import "strings"

// Command describes an external process invocation
type Command struct {
	Name string   // Executable name or path
	Args []string // Arguments, passed without shell expansion
	Dir  string   // Working directory; empty means the current directory
}

// String returns the command line for logging
func (c *Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// CommandResult holds the captured output of a finished process
type CommandResult struct {
	Stdout []byte
	Stderr []byte
}

// LastLine returns the last non-empty line of stdout, trimmed
func (r *CommandResult) LastLine() string {
	lines := strings.Split(strings.TrimSpace(string(r.Stdout)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
