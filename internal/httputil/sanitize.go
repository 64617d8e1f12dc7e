package httputil

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// illegalFilenameChars are replaced when sanitizing titles destined for
// filenames and Content-Disposition headers.
const illegalFilenameChars = `\/:*?"<>|`

// maxTitleLength bounds sanitized titles; upstream titles can be arbitrarily long.
const maxTitleLength = 120

// ValidateURL checks that a URL is well-formed and uses HTTPS.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("only HTTPS URLs are allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// ValidateMediaURL checks that a caller-supplied media URL is well-formed and
// uses http or https. Anything else (file, javascript, data, gopher) is
// rejected before the server fetches it on the caller's behalf.
func ValidateMediaURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// SanitizeTitle turns a free-text media title into something safe to embed in
// a filename: control characters and characters illegal in filenames become
// separators, whitespace collapses, and the result is truncated.
func SanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case r < 0x20 || r == 0x7f:
			b.WriteByte(' ')
		case strings.ContainsRune(illegalFilenameChars, r):
			b.WriteByte('-')
		default:
			b.WriteRune(r)
		}
	}

	cleaned := strings.Join(strings.Fields(b.String()), " ")
	runes := []rune(cleaned)
	if len(runes) > maxTitleLength {
		cleaned = strings.TrimSpace(string(runes[:maxTitleLength]))
	}
	return cleaned
}

// SanitizeFilename removes path traversal and dangerous characters from a
// filename. Returns just the base name, stripped of any directory components.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)

	replacer := strings.NewReplacer(
		"..", "_",
		"/", "_",
		"\\", "_",
		"\x00", "",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
	)
	name = replacer.Replace(name)

	if name == "" || name == "." || name == ".." {
		return "untitled"
	}

	return name
}

// SafeDownloadPath resolves and validates an output path, ensuring it stays
// within the target directory.
func SafeDownloadPath(dir, filename string) (string, error) {
	sanitized := SanitizeFilename(filename)

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	full := filepath.Join(absDir, sanitized)

	resolved, err := filepath.Abs(full)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	if !strings.HasPrefix(resolved, absDir+string(filepath.Separator)) && resolved != absDir {
		return "", fmt.Errorf("path traversal detected: %q escapes %q", resolved, absDir)
	}

	return resolved, nil
}

// ASCIIFallback replaces every non-printable-ASCII rune with a hyphen,
// producing the plain filename= form of Content-Disposition. Double quotes
// are dropped entirely since they would terminate the header value.
func ASCIIFallback(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '"':
		case r < 0x20 || r > 0x7e:
			b.WriteByte('-')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ContentDisposition builds an attachment header carrying both the ASCII-safe
// filename and the RFC 5987 percent-encoded UTF-8 form.
func ContentDisposition(filename string) string {
	ascii := ASCIIFallback(filename)
	if ascii == "" {
		ascii = "download"
	}
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, ascii, rfc5987Encode(filename))
}

// rfc5987Encode percent-encodes a UTF-8 string for the filename* parameter.
// Only the attr-char set of RFC 5987 passes through unescaped.
func rfc5987Encode(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '-' || c == '.' || c == '_' || c == '~' || c == '!' || c == '#' ||
			c == '$' || c == '&' || c == '+' || c == '^' || c == '`':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}
