package commsutil

import (
	"fmt"
	"strings"
)

// DefaultPrefix is the first token of every host bridge subject.
const DefaultPrefix = "frame"

// Subject suffixes under <prefix>.<app>.
const (
	SuffixLifecycle = "lifecycle"
	SuffixEmit      = "emit"
	SuffixWindows   = "windows"
	SuffixShutdown  = "shutdown"
)

// SanitizeToken makes s safe as a single subject token.
func SanitizeToken(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', ' ', '\t', '\n', '\r', '*', '>':
			return '_'
		}
		return r
	}, s)
}

// BuildAppSubject builds <prefix>.<app>.<suffix>.
func BuildAppSubject(prefix, app, suffix string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return fmt.Sprintf("%s.%s.%s", prefix, SanitizeToken(app), suffix)
}

// BuildLifecycleSubject builds the granular lifecycle subject for kind.
func BuildLifecycleSubject(prefix, app, kind string) string {
	return BuildAppSubject(prefix, app, SuffixLifecycle) + "." + kind
}
