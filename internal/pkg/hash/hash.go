package hash

// Hash turns a secret into a stored representation and checks candidates against it.
type Hash interface {
	// Hash returns the stored representation of str.
	Hash(str string) ([]byte, error)
	// Verify reports whether str matches the stored representation.
	Verify(hashed, str string) bool
}
