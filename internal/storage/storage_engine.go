package storage

import (
	"io"
	"time"
)

// ItemInfo describes a single stored item within a bucket.
type ItemInfo struct {
	Name string

	// LastModified is the item's modification time in milliseconds since
	// the Unix epoch, rounded to the nearest millisecond.
	LastModified int64
}

// Item is a stored item together with its full content.
type Item struct {
	ItemInfo
	Content []byte
}

// StorageEngine defines the interface for a storage backend that manages
// named items organized into buckets.
type StorageEngine interface {
	// EnsureBucket makes sure the bucket directory exists, creating it if
	// necessary, and returns its path. Creating a bucket that already exists
	// is not an error.
	EnsureBucket(bucket string) (string, error)

	// ListBuckets returns the names of all entries directly under the
	// storage root.
	ListBuckets() ([]string, error)

	// ListBucketContents returns the items of a bucket ordered by
	// modification time, newest first. A limit greater than zero truncates
	// the result. A bucket that does not exist yields an empty listing.
	ListBucketContents(bucket string, limit int) ([]ItemInfo, error)

	// ReadItem retrieves the full content and metadata of a stored item.
	ReadItem(bucket string, name string) (*Item, error)

	// WriteItem stores the contents of r as the named item, creating the
	// bucket if needed and replacing any existing item of the same name.
	WriteItem(bucket string, name string, r io.Reader) error
}

// UnixMillis converts t to milliseconds since the Unix epoch, rounded to the
// nearest millisecond.
func UnixMillis(t time.Time) int64 {
	return t.Round(time.Millisecond).UnixMilli()
}
