package main

import (
	"os"
	"strings"
)

// init runs before Bubble Tea acquires the terminal (and before any TUI starts).
//
// In some PTY/TTY capture environments (notably agent runners), Bubble Tea's
// init triggers Lipgloss/Termenv background detection, which can emit OSC/DSR
// control sequences to stdout. Those sequences are harmless in a real terminal
// but can break JSON parsers consuming --robot-stats output.
//
// Robot-mode invocations are treated as non-interactive: setting CI=1 early
// makes Termenv skip TTY probing, so nothing extra reaches stdout.
func init() {
	if os.Getenv("CI") != "" {
		return
	}
	if !shouldSuppressTTYQueries(os.Args, os.Getenv("MG_ROBOT") == "1") {
		return
	}
	_ = os.Setenv("CI", "1")
}

func shouldSuppressTTYQueries(args []string, envRobot bool) bool {
	if envRobot {
		return true
	}
	for _, a := range args[1:] {
		switch {
		case a == "--robot-stats" || a == "-robot-stats":
			return true
		case strings.HasPrefix(a, "--snapshot") || strings.HasPrefix(a, "-snapshot"):
			return true
		}
	}
	return false
}
