package validation

import (
	"mime"
	"strings"
)

// SafeContentTypes lists the content types accepted for user uploads.
var SafeContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"image/svg+xml":   true,
	"video/mp4":       true,
	"video/webm":      true,
	"video/quicktime": true,
	"audio/mpeg":      true,
	"audio/wav":       true,
	"audio/ogg":       true,
	"text/plain":      true,
	"text/html":       true,
	"application/pdf": true,
	"application/zip": true,
}

// NormalizeContentType lowercases a content type and drops its parameters.
func NormalizeContentType(contentType string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(contentType, ";"); i != -1 {
		contentType = contentType[:i]
	}
	return strings.TrimSpace(contentType)
}

// IsSafeContentType checks a content type against the upload whitelist.
func IsSafeContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	return SafeContentTypes[NormalizeContentType(contentType)]
}

// ValidateSafeContentType returns a validation error for unsafe content types.
func ValidateSafeContentType(contentType string, fieldName string) error {
	if !IsSafeContentType(contentType) {
		return ValidationError{
			Field:   fieldName,
			Message: "is not a safe content type",
		}
	}
	return nil
}

// IsImageContentType reports whether a content type denotes an image.
func IsImageContentType(contentType string) bool {
	return strings.HasPrefix(NormalizeContentType(contentType), "image/")
}

// MatchesAllowedTypes reports whether contentType matches at least one entry
// of allowed by substring test. An empty allowed list matches everything.
func MatchesAllowedTypes(contentType string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	normalized := NormalizeContentType(contentType)
	for _, pattern := range allowed {
		if pattern == "" {
			continue
		}
		if strings.Contains(normalized, strings.ToLower(strings.TrimSpace(pattern))) {
			return true
		}
	}
	return false
}

// GetContentTypeFromExtension resolves a content type from a file name.
func GetContentTypeFromExtension(filename string) string {
	dotIndex := strings.LastIndex(filename, ".")
	if dotIndex == -1 {
		return ""
	}
	extension := strings.ToLower(filename[dotIndex:])

	if contentType := mime.TypeByExtension(extension); contentType != "" {
		return NormalizeContentType(contentType)
	}

	// Extensions the platform mime table tends to miss.
	extensionMap := map[string]string{
		".webp": "image/webp",
		".svg":  "image/svg+xml",
		".webm": "video/webm",
	}
	return extensionMap[extension]
}
