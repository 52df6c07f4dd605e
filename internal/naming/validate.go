package naming

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"unicode/utf8"
)

// MaxFilenameLength is the longest name accepted by Validate, in characters
// and in UTF-8 bytes.
const MaxFilenameLength = 255

// ErrInvalidName is wrapped by Check when Validate rejects a name.
var ErrInvalidName = errors.New("invalid filename")

// Profile selects which filesystem rules Validate enforces.
type Profile string

const (
	ProfilePOSIX   Profile = "posix"
	ProfileWindows Profile = "windows"
)

var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// ProfileForOS returns the restrictive profile on Windows and POSIX elsewhere.
func ProfileForOS(goos string) Profile {
	if goos == "windows" {
		return ProfileWindows
	}
	return ProfilePOSIX
}

// ParseProfile maps a config value to a Profile. "auto" and "" follow the
// running OS.
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ProfileForOS(runtime.GOOS), nil
	case string(ProfileWindows):
		return ProfileWindows, nil
	case string(ProfilePOSIX):
		return ProfilePOSIX, nil
	default:
		return "", fmt.Errorf("unknown naming profile %q (want auto, windows or posix)", s)
	}
}

// Validate reports whether name is usable under profile, with a reason
// suitable for showing to a user.
func Validate(name string, profile Profile) (bool, string) {
	if name == "" {
		return false, "Filename cannot be empty"
	}
	if utf8.RuneCountInString(name) > MaxFilenameLength {
		return false, fmt.Sprintf("Filename too long (max %d characters)", MaxFilenameLength)
	}
	if len(name) > MaxFilenameLength {
		return false, fmt.Sprintf("Filename too long (max %d bytes)", MaxFilenameLength)
	}

	if profile == ProfileWindows {
		if strings.ContainsAny(name, forbidden) {
			return false, "Filename contains invalid characters"
		}
		base := name
		if i := strings.IndexByte(base, '.'); i >= 0 {
			base = base[:i]
		}
		if reservedNames[strings.ToUpper(strings.TrimSpace(base))] {
			return false, fmt.Sprintf("Filename '%s' is reserved on Windows", name)
		}
	} else if strings.ContainsRune(name, '/') {
		return false, "Filename contains invalid characters"
	}

	return true, "Valid filename"
}

// Check is Validate as an error, wrapping ErrInvalidName.
func Check(name string, profile Profile) error {
	if ok, reason := Validate(name, profile); !ok {
		return fmt.Errorf("%w: %s", ErrInvalidName, reason)
	}
	return nil
}
