package storage

import (
	"fmt"
	"strings"
)

// AllowedContentTypes defines the MIME types the application stores.
var AllowedContentTypes = map[string]bool{
	"application/json": true,
	"text/plain":       true,
	"text/csv":         true,
}

// maxObjectKeyLen is the S3 limit, in bytes.
const maxObjectKeyLen = 1024

// ValidateContentType checks if the content type is allowed.
func ValidateContentType(contentType string) error {
	normalized := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(normalized, ';'); i >= 0 {
		normalized = strings.TrimSpace(normalized[:i])
	}

	if !AllowedContentTypes[normalized] {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	return nil
}

// ValidateObjectKey rejects keys that are empty, absolute, too long or that
// contain path traversal segments.
func ValidateObjectKey(key string) error {
	if key == "" {
		return fmt.Errorf("object key is empty")
	}
	if len(key) > maxObjectKeyLen {
		return fmt.Errorf("object key exceeds %d bytes", maxObjectKeyLen)
	}
	if strings.HasPrefix(key, "/") {
		return fmt.Errorf("object key %q must be relative", key)
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return fmt.Errorf("object key %q has an invalid segment", key)
		}
	}
	return nil
}
