package store

const (
	ErrFailedBatchCommit = "failed to commit batch: %w"
)

// Prefix constants for all store types
const (
	prefixAccount byte = iota + 1
	prefixTokenAccount
)

// PrefixToString converts a prefix byte to a string
func PrefixToString(p byte) string {
	switch p {
	case prefixAccount:
		return "account"
	case prefixTokenAccount:
		return "tokenAccount"
	default:
		return "unknown"
	}
}

// makeKey creates a key from a prefix and an identity
func makeKey(prefix byte, id []byte) []byte {
	key := make([]byte, 1+len(id))
	key[0] = prefix
	copy(key[1:], id)
	return key
}
