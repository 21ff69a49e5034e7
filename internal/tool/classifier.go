package tool

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnrecognizedTool is returned when a command references none of the known scripts.
var ErrUnrecognizedTool = errors.New("unrecognized tool")

// Classify recovers the Kind from a free-form shell command by looking for
// the script name each kind is launched through. It performs no I/O.
func Classify(command string) (Kind, error) {
	for _, d := range definitions {
		if strings.Contains(command, d.script) {
			return d.kind, nil
		}
	}
	return "", fmt.Errorf("%w: command %q does not reference a known script", ErrUnrecognizedTool, command)
}
