package server

import "os"

// loadSigningKey reads the HMAC signing key bearerAuthMiddleware validates
// tokens against. Re-read on every request: the key file is expected to be
// small and rotated out-of-band by the operator, not cached in memory.
func loadSigningKey(path string) ([]byte, error) {
	return os.ReadFile(path)
}
