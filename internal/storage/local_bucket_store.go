package storage

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// statConcurrency bounds the number of concurrent stat calls issued while
// listing a bucket.
const statConcurrency = 16

// Make sure *LocalBucketStore satisfies the StorageEngine interface.
var _ StorageEngine = (*LocalBucketStore)(nil)

// LocalBucketStore is a StorageEngine implementation that keeps every bucket
// as a directory directly under dataDir and every item as a plain file
// inside its bucket directory. All metadata is derived from the filesystem;
// nothing is stored alongside the items.
//
// The store holds no locks. Concurrent writes to the same item race at the
// filesystem level and the last writer wins.
type LocalBucketStore struct {
	dataDir string
}

// NewLocalBucketStore creates a new LocalBucketStore rooted at dataDir,
// creating the directory if it does not exist yet.
func NewLocalBucketStore(dataDir string) (*LocalBucketStore, error) {
	if dataDir == "" {
		return nil, errors.New("data directory must not be empty")
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data directory: %w", err)
	}

	info, err := os.Stat(absDataDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(absDataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating uploads dir failed %s: %w", absDataDir, err)
		}
		slog.Info("Uploads dir created", "path", absDataDir)
	case err != nil:
		return nil, fmt.Errorf("stat uploads dir %s: %w", absDataDir, err)
	case !info.IsDir():
		return nil, fmt.Errorf("uploads dir %s is not a directory", absDataDir)
	}

	return &LocalBucketStore{dataDir: absDataDir}, nil
}

// DataDir returns the absolute path of the storage root.
func (s *LocalBucketStore) DataDir() string {
	return s.dataDir
}

// validPathElement reports whether elem names exactly one entry inside its
// parent directory.
func validPathElement(elem string) bool {
	if elem == "" || elem == "." || elem == ".." {
		return false
	}
	return !strings.ContainsRune(elem, '/') &&
		!strings.ContainsRune(elem, filepath.Separator) &&
		!strings.ContainsRune(elem, 0)
}

// resolve joins elems onto the storage root. The result must stay strictly
// inside the root.
func (s *LocalBucketStore) resolve(elems ...string) (string, error) {
	for _, elem := range elems {
		if !validPathElement(elem) {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, elem)
		}
	}

	resolved := filepath.Join(append([]string{s.dataDir}, elems...)...)
	rel, err := filepath.Rel(s.dataDir, resolved)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, strings.Join(elems, "/"))
	}

	return resolved, nil
}

func (s *LocalBucketStore) EnsureBucket(bucket string) (string, error) {
	if bucket == "" {
		return "", ErrMissingBucket
	}

	bucketDir, err := s.resolve(bucket)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(bucketDir)
	if err == nil && info.IsDir() {
		return bucketDir, nil
	}

	// Another request may create the same bucket between the check above and
	// the mkdir below; MakeDir treats that as success.
	created, err := MakeDir(bucketDir)
	if err != nil {
		return "", fmt.Errorf("%w %s: %w", ErrDirectoryCreateFailed, bucketDir, err)
	}

	if created {
		slog.Debug("Bucket created", "bucket", bucket)
	}

	return bucketDir, nil
}

func (s *LocalBucketStore) ListBuckets() ([]string, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrDirectoryReadFailed, s.dataDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	return names, nil
}

func (s *LocalBucketStore) ListBucketContents(bucket string, limit int) ([]ItemInfo, error) {
	if bucket == "" {
		return nil, ErrMissingBucket
	}

	bucketDir, err := s.resolve(bucket)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(bucketDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []ItemInfo{}, nil
		}
		return nil, fmt.Errorf("%w %s: %w", ErrDirectoryReadFailed, bucketDir, err)
	}

	// A single failed stat fails the whole listing.
	items := make([]ItemInfo, len(entries))

	var eg errgroup.Group
	eg.SetLimit(statConcurrency)
	for i, entry := range entries {
		eg.Go(func() error {
			entryPath := filepath.Join(bucketDir, entry.Name())
			info, err := os.Stat(entryPath)
			if err != nil {
				return fmt.Errorf("%w file: %s: %w", ErrStatFailed, entryPath, err)
			}

			items[i] = ItemInfo{
				Name:         entry.Name(),
				LastModified: UnixMillis(info.ModTime()),
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(items, func(a, b ItemInfo) int {
		return cmp.Compare(b.LastModified, a.LastModified)
	})

	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	return items, nil
}

func (s *LocalBucketStore) ReadItem(bucket string, name string) (*Item, error) {
	if bucket == "" {
		return nil, ErrMissingBucket
	}

	itemPath, err := s.resolve(bucket, name)
	if err != nil {
		return nil, err
	}

	data, modTime, err := ReadFileWithModTime(itemPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %w", ErrItemNotFound, bucket, name, err)
	}

	return &Item{
		ItemInfo: ItemInfo{
			Name:         name,
			LastModified: UnixMillis(modTime),
		},
		Content: data,
	}, nil
}

// WriteItem streams r into the item file. There is no staging through a
// temporary file, so a failed write can leave a truncated item behind.
func (s *LocalBucketStore) WriteItem(bucket string, name string, r io.Reader) error {
	if bucket == "" {
		return ErrMissingBucket
	}

	itemPath, err := s.resolve(bucket, name)
	if err != nil {
		return err
	}

	if _, err := s.EnsureBucket(bucket); err != nil {
		return err
	}

	if _, err := WriteFileFrom(itemPath, r); err != nil {
		return fmt.Errorf("%w: %s/%s: %w", ErrUploadFailed, bucket, name, err)
	}

	return nil
}
