package ports

// FileWriter defines the interface for atomic file output.
//
//go:generate go run go.uber.org/mock/mockgen -source=file_writer.go -destination=mocks/mock_file_writer.go -package=mocks
type FileWriter interface {
	// WriteFile atomically replaces path with data. It reports whether the
	// file changed; identical content is left untouched.
	WriteFile(path string, data []byte) (bool, error)

	// CopyFile atomically copies src to dst, creating parent directories.
	CopyFile(src, dst string) error
}
