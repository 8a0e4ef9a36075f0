package settings

import "station/internal/fileutil"

// FileStore is byte-level persistence for the settings file and its backup
// companion. It owns no settings semantics.
type FileStore interface {
	// Read returns the file bytes, or ok=false when the file does not exist.
	Read(path string) (data []byte, ok bool, err error)
	// Write fully replaces the file contents.
	Write(path string, data []byte) error
	// Backup moves path aside to path+".bak", overwriting an earlier backup,
	// and returns the backup location.
	Backup(path string) (string, error)
}

// DiskStore is the FileStore backed by the local filesystem.
type DiskStore struct{}

func (DiskStore) Read(path string) ([]byte, bool, error) {
	return fileutil.ReadIfExists(path)
}

func (DiskStore) Write(path string, data []byte) error {
	return fileutil.WriteFileAtomic(path, data, 0o644)
}

func (DiskStore) Backup(path string) (string, error) {
	return fileutil.MoveAside(path)
}
