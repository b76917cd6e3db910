package files

import (
	"fmt"
	"strings"
	"time"
)

// KeyCodec is the single home of the upload key encoding. Every key has the
// form <prefix>/<id>_<createdAtMillis>; the staging and durable locations of
// one object differ only in the prefix segment, so translation between them
// is a pure string substitution and the original timestamp is preserved.
type KeyCodec struct {
	stagingPrefix string
	durablePrefix string
}

func NewKeyCodec(stagingPrefix, durablePrefix string) *KeyCodec {
	return &KeyCodec{
		stagingPrefix: strings.Trim(stagingPrefix, "/"),
		durablePrefix: strings.Trim(durablePrefix, "/"),
	}
}

// StagingKey derives the staging location for a new upload. The timestamp is
// captured once at intent time and must be reused, not regenerated, whenever
// the durable key is derived later.
func (c *KeyCodec) StagingKey(id string, createdAt time.Time) string {
	return fmt.Sprintf("%s/%s_%d", c.stagingPrefix, id, createdAt.UnixMilli())
}

// ToDurableKey swaps the staging prefix for the durable prefix. Keys that do
// not start with the staging prefix are returned unchanged.
func (c *KeyCodec) ToDurableKey(stagingKey string) string {
	return swapPrefix(stagingKey, c.stagingPrefix, c.durablePrefix)
}

// ToStagingKey is the inverse of ToDurableKey.
func (c *KeyCodec) ToStagingKey(durableKey string) string {
	return swapPrefix(durableKey, c.durablePrefix, c.stagingPrefix)
}

func swapPrefix(key, from, to string) string {
	if strings.HasPrefix(key, from+"/") {
		return to + strings.TrimPrefix(key, from)
	}
	return key
}

// KeyID recovers the upload record id from a bare storage key: the id is the
// first path segment of the key body, before the first underscore. Keys that
// do not carry the encoding yield ok=false.
func (c *KeyCodec) KeyID(key string) (string, bool) {
	slash := strings.Index(key, "/")
	if slash == -1 {
		return "", false
	}
	body := key[slash+1:]
	if next := strings.Index(body, "/"); next != -1 {
		body = body[:next]
	}
	underscore := strings.Index(body, "_")
	if underscore <= 0 {
		return "", false
	}
	return body[:underscore], true
}

// HasFolderStructure gates variant expansion: only keys laid out in the
// current folder scheme participate, so objects from the legacy flat layout
// are never mis-deleted.
func HasFolderStructure(key string) bool {
	return strings.Contains(key, "/")
}
