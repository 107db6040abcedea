package core

import "strings"

// IsExtensionInString reports whether name appears as a whole
// space-separated token of extensions.
func IsExtensionInString(extensions, name string) bool {
	if name == "" || strings.ContainsRune(name, ' ') {
		return false
	}
	for _, ext := range strings.Fields(extensions) {
		if ext == name {
			return true
		}
	}
	return false
}

// ParseVersion finds the first "major.minor" in s and returns
// major*10+minor, or 0 when there is none or minor is not a single digit.
func ParseVersion(s string) int {
	i := strings.IndexAny(s, "0123456789")
	if i < 0 {
		return 0
	}
	s = s[i:]
	major, n := leadingInt(s)
	if n == 0 || n >= len(s) || s[n] != '.' {
		return 0
	}
	minor, m := leadingInt(s[n+1:])
	if m == 0 || minor > 9 {
		return 0
	}
	return major*10 + minor
}

func leadingInt(s string) (v, n int) {
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		v = v*10 + int(s[n]-'0')
		n++
	}
	return v, n
}
