package utils

import (
	"crypto/rand"
	"fmt"
	"path"
	"strings"
	"time"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewObjectKey derives a practically unique object key without any
// coordination step: millisecond timestamp, a random base36 component and
// the sanitized original filename.
func NewObjectKey(now time.Time, filename string) string {
	return fmt.Sprintf("%d-%s-%s", now.UnixMilli(), randomBase36(7), SanitizeFilename(filename))
}

// SanitizeFilename strips any path component and whitespace from a
// client-supplied filename. Empty names fall back to "upload".
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = strings.TrimSpace(name)
	name = strings.Join(strings.Fields(name), "-")
	if name == "" || name == "." || name == "/" {
		return "upload"
	}
	return name
}

func randomBase36(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; the timestamp
		// component still keeps keys effectively unique.
		panic("failed to read random bytes: " + err.Error())
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = base36Alphabet[int(b)%len(base36Alphabet)]
	}
	return string(out)
}
