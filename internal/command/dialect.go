package command

import (
	"fmt"
	"strings"
)

// Dialect is the shell vocabulary a command is rendered in.
type Dialect string

const (
	// Windows is the cmd.exe dialect.
	Windows Dialect = "windows"
	// Linux is the POSIX sh dialect, used for every non-Windows OS.
	Linux Dialect = "linux"
)

// ParseDialect converts a configuration value into a Dialect.
// "auto" and "" are resolved against goos.
func ParseDialect(s, goos string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return DetectDialect(goos), nil
	case "windows", "win", "cmd":
		return Windows, nil
	case "linux", "posix", "unix", "sh":
		return Linux, nil
	}
	return "", fmt.Errorf("unknown shell dialect %q", s)
}

// DetectDialect maps a GOOS value onto one of the two dialects.
func DetectDialect(goos string) Dialect {
	if goos == "windows" {
		return Windows
	}
	return Linux
}

// String returns the dialect name.
func (d Dialect) String() string {
	return string(d)
}
