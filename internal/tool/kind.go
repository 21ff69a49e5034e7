// Package tool names the automation scripts botctl knows how to launch and
// recovers a Kind from the shell command line the admin console sends.
package tool

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies one of the fixed automation scripts.
type Kind string

const (
	LLMBot   Kind = "llm-bot"
	HaterBot Kind = "hater-bot"
	Replay   Kind = "replay"
)

// ErrUnknownKind is returned by ParseKind for names outside the closed set.
var ErrUnknownKind = errors.New("unknown tool kind")

// definition binds a Kind to the script name that identifies it and the file
// its stderr is appended to.
type definition struct {
	kind    Kind
	script  string
	logFile string
}

// definitions is ordered by descending script name length so that a longer
// script name always wins over a shorter one it contains.
var definitions = []definition{
	{kind: HaterBot, script: "hate_speech_generator.py", logFile: "hater_bot_error_log.txt"},
	{kind: Replay, script: "replay.py", logFile: "replay_error_log.txt"},
	{kind: LLMBot, script: "main.py", logFile: "llm_bot_error_log.txt"},
}

// AllKinds returns every known kind in a stable order.
func AllKinds() []Kind {
	return []Kind{LLMBot, HaterBot, Replay}
}

// ParseKind accepts the wire name of a kind, case-insensitively.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, d := range definitions {
		if d.kind == k {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Script returns the script file name that identifies the kind.
func (k Kind) Script() string {
	if d, ok := lookup(k); ok {
		return d.script
	}
	return ""
}

// LogFile returns the default stderr log file name for the kind.
func (k Kind) LogFile() string {
	if d, ok := lookup(k); ok {
		return d.logFile
	}
	return string(k) + "_error_log.txt"
}

func (k Kind) String() string {
	return string(k)
}

func lookup(k Kind) (definition, bool) {
	for _, d := range definitions {
		if d.kind == k {
			return d, true
		}
	}
	return definition{}, false
}
