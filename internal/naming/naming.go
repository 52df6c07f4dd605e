// Package naming turns book metadata into file names that are safe on every
// common filesystem.
package naming

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxLength bounds Normalize when the caller passes a non-positive length.
	DefaultMaxLength = 160

	// Fallback is returned when nothing survives normalization.
	Fallback = "untitled"

	// stemBudget caps the stem in characters; fitName caps the whole name
	// in bytes.
	stemBudget = 140

	defaultExtension = "pdf"
	coverExtension   = "jpg"
	unknownTitle     = "Unknown Title"
)

const forbidden = `<>:"|?*\/`

// Normalize maps raw text to a bounded, filesystem-safe string.
//
// Forbidden characters become '_', whitespace runs collapse to a single
// space, and leading/trailing dots and spaces are trimmed both before and
// after truncation. The output never exceeds maxLength runes.
func Normalize(raw string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	var b strings.Builder
	b.Grow(len(raw))
	inSpace := false
	for _, r := range raw {
		switch {
		case strings.ContainsRune(forbidden, r):
			b.WriteRune('_')
			inSpace = false
		case unicode.IsSpace(r):
			if !inSpace {
				b.WriteRune(' ')
			}
			inSpace = true
		case unicode.IsControl(r):
			// dropped
		default:
			b.WriteRune(r)
			inSpace = false
		}
	}

	s := trimEdges(b.String())
	if runes := []rune(s); len(runes) > maxLength {
		s = strings.TrimRight(string(runes[:maxLength]), ". ")
	}
	if s == "" {
		return Fallback
	}
	return s
}

func trimEdges(s string) string {
	return strings.Trim(s, ". ")
}

// Record is the subset of book metadata needed to derive file names.
type Record interface {
	FilenameTitle() string
	FilenameAuthors() []string
	FilenameExtension() string
}

// Stem returns the normalized "{title} - {authors}" base name shared by a
// book and its cover.
func Stem(title string, authors []string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = unknownTitle
	}

	var names []string
	for _, a := range authors {
		if a = strings.TrimSpace(a); a != "" {
			names = append(names, a)
		}
	}

	base := title
	if len(names) > 0 {
		shown := names
		if len(shown) > 2 {
			shown = shown[:2]
		}
		base = title + " - " + strings.Join(shown, ", ")
		if len(names) > 2 {
			base += " et al"
		}
	}
	return Normalize(base, stemBudget)
}

// BookFilename returns the file name for a record's book file.
func BookFilename(rec Record) string {
	return fitName(Stem(rec.FilenameTitle(), rec.FilenameAuthors()), "", "."+cleanExtension(rec.FilenameExtension()))
}

// CoverFilename returns the cover image name paired with BookFilename.
func CoverFilename(rec Record) string {
	return fitName(Stem(rec.FilenameTitle(), rec.FilenameAuthors()), "", "."+coverExtension)
}

// extReserve is the room kept for "." plus the longest extension
// cleanExtension produces.
const extReserve = 1 + 16

// fitName joins stem, suffix and ext, cutting stem on a rune boundary so
// the result stays within MaxFilenameLength bytes. The cut ignores which
// extension follows, so a book and its cover keep a shared stem.
func fitName(stem, suffix, ext string) string {
	budget := MaxFilenameLength - len(suffix) - max(len(ext), extReserve)
	if len(stem) > budget {
		cut := budget
		for cut > 0 && !utf8.RuneStart(stem[cut]) {
			cut--
		}
		stem = strings.TrimRight(stem[:cut], ". ")
		if stem == "" {
			stem = Fallback
		}
	}
	return stem + suffix + ext
}

// Disambiguate appends " [tag]" to the stem of name so two books that
// normalize to the same file name stay apart. Book and cover names
// disambiguated with the same tag still share a stem.
func Disambiguate(name, tag string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	suffix := " [" + Normalize(tag, 32) + "]"
	return fitName(Normalize(stem, stemBudget-utf8.RuneCountInString(suffix)), suffix, ext)
}

func cleanExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	ext = strings.TrimLeft(ext, ".")
	ext = Normalize(ext, 16)
	if ext == Fallback {
		return defaultExtension
	}
	return ext
}
