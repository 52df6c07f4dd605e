package naming_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/blackwell-systems/bookpipe/internal/naming"
)

func TestValidate_Windows(t *testing.T) {
	tests := []struct {
		name   string
		ok     bool
		reason string
	}{
		{"report.pdf", true, "Valid filename"},
		{"CON", false, "Filename 'CON' is reserved on Windows"},
		{"con.txt", false, "Filename 'con.txt' is reserved on Windows"},
		{"Lpt9.tar.gz", false, "Filename 'Lpt9.tar.gz' is reserved on Windows"},
		{"COM10.txt", true, "Valid filename"},
		{"console.log", true, "Valid filename"},
		{"", false, "Filename cannot be empty"},
		{strings.Repeat("a", 300), false, "Filename too long (max 255 characters)"},
		{"a:b.pdf", false, "Filename contains invalid characters"},
	}
	for _, tt := range tests {
		ok, reason := naming.Validate(tt.name, naming.ProfileWindows)
		if ok != tt.ok || reason != tt.reason {
			t.Errorf("Validate(%q) = (%v, %q), want (%v, %q)", tt.name, ok, reason, tt.ok, tt.reason)
		}
	}
}

func TestValidate_POSIX(t *testing.T) {
	if ok, _ := naming.Validate("CON", naming.ProfilePOSIX); !ok {
		t.Error("CON should be valid on posix")
	}
	if ok, _ := naming.Validate("a:b", naming.ProfilePOSIX); !ok {
		t.Error("colon should be valid on posix")
	}
	if ok, _ := naming.Validate("a/b", naming.ProfilePOSIX); ok {
		t.Error("slash should be invalid on posix")
	}
	if ok, _ := naming.Validate(strings.Repeat("a", 256), naming.ProfilePOSIX); ok {
		t.Error("256 chars should be invalid on posix")
	}
	ok, reason := naming.Validate(strings.Repeat("书", 100)+".pdf", naming.ProfilePOSIX)
	if ok || reason != "Filename too long (max 255 bytes)" {
		t.Errorf("304-byte name: got (%v, %q)", ok, reason)
	}
}

func TestCheck(t *testing.T) {
	err := naming.Check("NUL", naming.ProfileWindows)
	if !errors.Is(err, naming.ErrInvalidName) {
		t.Fatalf("Check(NUL) = %v, want ErrInvalidName", err)
	}
	if err := naming.Check("book.epub", naming.ProfileWindows); err != nil {
		t.Errorf("Check(book.epub) = %v, want nil", err)
	}
}

func TestParseProfile(t *testing.T) {
	if p, err := naming.ParseProfile("Windows"); err != nil || p != naming.ProfileWindows {
		t.Errorf("ParseProfile(Windows) = %q, %v", p, err)
	}
	if p, err := naming.ParseProfile("posix"); err != nil || p != naming.ProfilePOSIX {
		t.Errorf("ParseProfile(posix) = %q, %v", p, err)
	}
	if _, err := naming.ParseProfile("auto"); err != nil {
		t.Errorf("ParseProfile(auto) = %v", err)
	}
	if _, err := naming.ParseProfile("fat32"); err == nil {
		t.Error("ParseProfile(fat32) should fail")
	}
	if naming.ProfileForOS("windows") != naming.ProfileWindows {
		t.Error("ProfileForOS(windows) should be restrictive")
	}
	if naming.ProfileForOS("linux") != naming.ProfilePOSIX {
		t.Error("ProfileForOS(linux) should be posix")
	}
}
