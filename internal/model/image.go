package model

import (
	"fmt"
	"net/url"
	"time"
)

// ImageKey builds the object-store key for an upload: the upload time in
// Unix milliseconds, a dash, and the client's original filename.
// Two uploads of the same filename within one millisecond collide.
func ImageKey(uploadedAt time.Time, filename string) string {
	return fmt.Sprintf("%d-%s", uploadedAt.UnixMilli(), filename)
}

// ImagePath returns the URL path under which an image key is served.
func ImagePath(key string) string {
	return "/images/" + url.PathEscape(key)
}
