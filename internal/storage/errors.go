package storage

import "errors"

// Errors returned by the bucket store. They are wrapped with the failing
// bucket or item and the underlying filesystem error, so callers should
// match them with errors.Is.
var (
	ErrMissingBucket         = errors.New("bucket not specified")
	ErrDirectoryCreateFailed = errors.New("creating bucket dir failed")
	ErrDirectoryReadFailed   = errors.New("reading directory failed")
	ErrStatFailed            = errors.New("reading file stat failed")
	ErrItemNotFound          = errors.New("item not found")
	ErrUploadFailed          = errors.New("upload failed")
	ErrInvalidPath           = errors.New("invalid bucket or item name")
)
