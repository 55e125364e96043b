// Package storage implements the asset store: durable storage for uploaded
// binaries, addressed by stable reference paths.
package storage

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

const fallbackName = "upload"

// SafeName reduces an uploaded filename to a filesystem-safe ASCII name:
// accents are decomposed and dropped, path separators and whitespace become
// underscores, and anything outside [A-Za-z0-9_.-] is removed. Leading and
// trailing dots and underscores are trimmed. It never returns an empty string.
func SafeName(original string) string {
	decomposed := norm.NFKD.String(original)

	var b strings.Builder
	for _, r := range decomposed {
		switch {
		case r == '/' || r == '\\':
			b.WriteRune(' ')
		case r < unicode.MaxASCII:
			b.WriteRune(r)
		}
	}
	joined := strings.Join(strings.Fields(b.String()), "_")

	b.Reset()
	for _, r := range joined {
		if r == '_' || r == '.' || r == '-' ||
			('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
		}
	}

	name := strings.Trim(b.String(), "._")
	if name == "" {
		return fallbackName
	}
	return name
}

// ObjectName builds the stored name for an upload: a second-granularity
// timestamp, a random fragment that keeps same-second uploads of the same
// file apart, and the sanitized original name.
func ObjectName(now time.Time, original string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return now.Format("20060102_150405") + "_" + id + "_" + SafeName(original)
}
