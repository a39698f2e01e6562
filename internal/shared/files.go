package shared

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// MaxBaseNameLength caps the length of a sanitized file name stem.
const MaxBaseNameLength = 200

const sessionTimeLayout = "01-02-2006-15-04-05"

var (
	whitespaceRun = regexp.MustCompile(`[\s\p{Z}]+`)
	unsafeChars   = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
)

// Sanitize turns an arbitrary display string into a portable file name stem.
//
// Whitespace runs become "-", everything outside [A-Za-z0-9._-] is removed and
// the result is truncated to [MaxBaseNameLength]. The result may be empty.
func Sanitize(name string) string {
	name = whitespaceRun.ReplaceAllString(strings.TrimSpace(name), "-")
	name = unsafeChars.ReplaceAllString(name, "")
	if len(name) > MaxBaseNameLength {
		name = name[:MaxBaseNameLength]
	}
	return name
}

// AllocatePath returns the first of dir/base+ext, dir/base-1+ext, dir/base-2+ext, ...
// that does not exist yet. Nothing is created.
func AllocatePath(dir, base, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	candidate := filepath.Join(dir, base+ext)
	for i := 1; pathExists(candidate); i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d%s", base, i, ext))
	}
	return candidate
}

// EnsureDirectory creates dir and any missing parents.
func EnsureDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// SessionDirName names a session directory after its start time, e.g. sp-lib-builder-07-02-2025-17-55-19.
func SessionDirName(prefix string, t time.Time) string {
	if prefix == "" {
		prefix = DefaultSessionPrefix
	}
	return prefix + "-" + t.Format(sessionTimeLayout)
}

func pathExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
