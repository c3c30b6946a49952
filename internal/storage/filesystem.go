package storage

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"time"
)

// MakeDir creates a single directory. It reports whether the directory was
// created by this call; an already existing directory is not an error.
func MakeDir(path string) (bool, error) {
	if err := os.Mkdir(path, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// WriteFileFrom creates or truncates the file at destPath and copies the
// contents of src into it.
func WriteFileFrom(destPath string, src io.Reader) (int64, error) {
	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}

	n, err := destFile.ReadFrom(src)
	if closeErr := destFile.Close(); err == nil {
		err = closeErr
	}
	return n, err
}

// ReadFileWithModTime reads the whole file at srcPath and returns its
// contents together with its modification time.
func ReadFileWithModTime(srcPath string) ([]byte, time.Time, error) {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return nil, time.Time{}, err
	}

	data, err := io.ReadAll(srcFile)
	if err != nil {
		return nil, time.Time{}, err
	}

	return data, info.ModTime(), nil
}
