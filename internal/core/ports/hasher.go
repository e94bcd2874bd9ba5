package ports

// Hasher defines the interface for fingerprinting file contents.
//
//go:generate mockgen -destination=mocks/mock_hasher.go -package=mocks -source=hasher.go
type Hasher interface {
	// HashFile returns the content hash of the file at path.
	HashFile(path string) (string, error)
}
