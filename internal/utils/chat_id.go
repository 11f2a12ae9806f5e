package utils

// ChatID derives the canonical identifier of the conversation between two
// users. The two IDs are sorted lexicographically and joined with "_", so the
// result is the same regardless of argument order and distinct for every
// distinct unordered pair. User IDs are UUIDs and never contain an underscore,
// so the separator cannot produce a collision.
func ChatID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "_" + b
}
