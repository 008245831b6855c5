package ports

//go:generate mockgen -source=filesystem.go -destination=mocks/mock_filesystem.go -package=mocks

// FileWriter writes generated files.
type FileWriter interface {
	// WriteIfDifferent replaces path with content unless it already holds
	// exactly that content. It reports whether the file changed.
	WriteIfDifferent(path string, content []byte) (bool, error)
}

// Locker guards a file against concurrent generation runs.
type Locker interface {
	// Acquire takes the lock without blocking. The returned function
	// releases and deletes it.
	Acquire(path string) (func() error, error)
}

// Hasher computes content digests.
type Hasher interface {
	Digest(content []byte) string
	DigestFile(path string) (string, error)
}
