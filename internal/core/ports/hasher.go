package ports

// Hasher defines the interface for computing content hashes.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// HashGeneratorInput computes a stable key over a generator input document
	// and the contents of the listed files.
	HashGeneratorInput(input []byte, files []string) (string, error)
}
