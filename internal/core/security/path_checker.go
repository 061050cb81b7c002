package security

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Lin-Jiong-HDU/nlsh/internal/intent"
)

var driveRoot = regexp.MustCompile(`^[a-z]:$`)

// Windows system directories, matched with or without a drive prefix.
var windowsDenied = []string{
	`windows`,
	`program files`,
	`program files (x86)`,
	`programdata`,
}

// POSIX system directories, matched only on absolute paths.
var posixDenied = []string{
	"bin", "boot", "dev", "etc", "lib", "lib64", "proc",
	"root", "sbin", "sys", "usr", "var",
}

// Directories that may hold user data but must never be the target itself.
var exactDenied = []string{"home", "users"}

var bareDenied = map[string]bool{
	"~":  true,
	"*":  true,
	".":  true,
	"..": true,
}

// PathChecker decides whether a path may be the target of a destructive
// intent.
type PathChecker struct {
	protected []string
}

// NewPathChecker creates a new path checker.
func NewPathChecker(policy *Policy) *PathChecker {
	pc := &PathChecker{}
	if policy == nil {
		return pc
	}
	for _, p := range policy.ProtectedPaths {
		if n := normalize(expandHome(p)); n != "" {
			pc.protected = append(pc.protected, strings.TrimRight(n, `\`))
		}
	}
	return pc
}

var defaultChecker = NewPathChecker(nil)

// IsSafe checks a path against the built-in denylist only.
func IsSafe(path string) bool {
	return defaultChecker.IsSafe(path)
}

// IsSafe reports whether path may be targeted. An empty path is safe:
// there is nothing to protect.
func (pc *PathChecker) IsSafe(path string) bool {
	n := normalize(path)
	if n == "" {
		return true
	}

	trimmed := strings.TrimRight(n, `\`)
	if trimmed == "" || driveRoot.MatchString(trimmed) || bareDenied[trimmed] {
		return false
	}
	if strings.Contains(trimmed, `windows\system32`) {
		return false
	}

	rel := strings.TrimLeft(stripDrive(trimmed), `\`)
	for _, d := range windowsDenied {
		if within(rel, d) {
			return false
		}
	}

	if strings.HasPrefix(trimmed, `\`) {
		for _, d := range posixDenied {
			if within(rel, d) {
				return false
			}
		}
		for _, d := range exactDenied {
			if rel == d {
				return false
			}
		}
	}

	if len(pc.protected) > 0 {
		abs := trimmed
		if a, err := filepath.Abs(expandHome(intent.Unquote(strings.TrimSpace(path)))); err == nil {
			abs = strings.TrimRight(normalize(a), `\`)
		}
		for _, p := range pc.protected {
			if within(abs, p) || within(trimmed, p) {
				return false
			}
		}
	}

	return true
}

// normalize lower-cases path, strips enclosing quotes and unifies
// separators to backslash.
func normalize(path string) string {
	p := intent.Unquote(strings.TrimSpace(path))
	p = strings.ReplaceAll(p, "/", `\`)
	return strings.ToLower(strings.TrimSpace(p))
}

func stripDrive(p string) string {
	if len(p) >= 2 && p[1] == ':' && p[0] >= 'a' && p[0] <= 'z' {
		return p[2:]
	}
	return p
}

// within reports whether p equals dir or lies below it.
func within(p, dir string) bool {
	return p == dir || strings.HasPrefix(p, dir+`\`)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}
