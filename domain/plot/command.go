package plot

import (
	"regexp"
)

// commandPattern is anchored at both ends; Go's $ does not match before a
// trailing newline, so "[0:1]\nsin(x)\n" is rejected.
var commandPattern = regexp.MustCompile(
	`^\[(-?[0-9]+(?:\.[0-9]*)?):(-?[0-9]+(?:\.[0-9]*)?)\]\n([A-Za-z0-9]+(?:\([A-Za-z0-9]+\))?)$`,
)

// Command is the raw, unvalidated content of a plot request.
type Command struct {
	RawMin      string
	RawMax      string
	RawFunction string
}

// RawRange returns the range tokens as they appeared between the brackets.
func (c Command) RawRange() string {
	return c.RawMin + ":" + c.RawMax
}

// ParseCommand recognizes the two-line command grammar:
//
//	[<min>:<max>]
//	<name>(<arg>)   or a bare <name>
//
// The bare form exists so the identity function "x" is expressible.
func ParseCommand(text string) (Command, error) {
	m := commandPattern.FindStringSubmatch(text)
	if m == nil {
		return Command{}, ErrMalformedCommand
	}
	return Command{
		RawMin:      m[1],
		RawMax:      m[2],
		RawFunction: m[3],
	}, nil
}
