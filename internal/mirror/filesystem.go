package mirror

import (
	"io/fs"
	"os"
)

// FileSystem abstracts the filesystem operations used by the synchronizer and batch driver.
type FileSystem interface {
	DirectoryExists(path string) (bool, error)
	ReadFile(path string) ([]byte, error)
	MkdirAll(path string, permissions fs.FileMode) error
	RemoveAll(path string) error
}

// OSFileSystem implements FileSystem using operating system facilities.
type OSFileSystem struct{}

// NewOSFileSystem constructs a FileSystem backed by the os package.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// DirectoryExists reports whether the path exists and refers to a directory.
func (fileSystem *OSFileSystem) DirectoryExists(path string) (bool, error) {
	pathInformation, statError := os.Stat(path)
	if statError != nil {
		if os.IsNotExist(statError) {
			return false, nil
		}
		return false, statError
	}
	return pathInformation.IsDir(), nil
}

// ReadFile returns the contents of the file at the path.
func (fileSystem *OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// MkdirAll creates the directory hierarchy for the path.
func (fileSystem *OSFileSystem) MkdirAll(path string, permissions fs.FileMode) error {
	return os.MkdirAll(path, permissions)
}

// RemoveAll deletes the path and everything beneath it.
func (fileSystem *OSFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}
