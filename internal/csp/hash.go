package csp

import (
	"crypto/sha256"
	"encoding/base64"
)

// Hash возвращает источник CSP для точного содержимого: sha256-<base64>.
func Hash(s string) string {
	return HashBytes([]byte(s))
}

func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return "sha256-" + base64.StdEncoding.EncodeToString(sum[:])
}

// HashToken — то же, но в кавычках, как пишется в значении директивы.
func HashToken(s string) string {
	return "'" + Hash(s) + "'"
}
