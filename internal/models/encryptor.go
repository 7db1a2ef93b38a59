package models

// Encryptor protects credential values at rest. Implementations must be safe for concurrent use.
type Encryptor interface {
	Encrypt(value string) (encrypted string, err error)
	Decrypt(value string) (decrypted string, err error)
}
