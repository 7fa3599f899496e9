package utils_test

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tnqbao/gau-photobooth/utils"
)

func TestNewObjectKey_Format(t *testing.T) {
	now := time.UnixMilli(1756412345678)
	key := utils.NewObjectKey(now, "selfie.jpg")

	parts := strings.SplitN(key, "-", 3)
	require.Len(t, parts, 3)

	ms, err := strconv.ParseInt(parts[0], 10, 64)
	require.NoError(t, err)
	require.Equal(t, now.UnixMilli(), ms)

	require.Len(t, parts[1], 7)
	for _, c := range parts[1] {
		require.Contains(t, "0123456789abcdefghijklmnopqrstuvwxyz", string(c))
	}

	require.Equal(t, "selfie.jpg", parts[2])
}

func TestNewObjectKey_UniqueWithinMillisecond(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		key := utils.NewObjectKey(now, "photo.jpg")
		require.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"photo.jpg", "photo.jpg"},
		{"my holiday photo.jpg", "my-holiday-photo.jpg"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\pic.png`, "pic.png"},
		{"  spaced.jpg  ", "spaced.jpg"},
		{"", "upload"},
		{".", "upload"},
		{"/", "upload"},
		{"   ", "upload"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, utils.SanitizeFilename(tc.in), "input %q", tc.in)
	}
}
