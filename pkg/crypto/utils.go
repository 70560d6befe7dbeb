package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gtank/cryptopasta"
)

// ErrSignature is returned by Decrypt when the HMAC doesn't check out, which
// in practice means the wrong passphrase.
var ErrSignature = errors.New("signature validation failed")

const (
	tagEncryption = "sfin encryption key"
	tagSignature  = "sfin signature key"
)

// NewRandomKey generates a random 32 byte key, base64 encoded.
func NewRandomKey() (string, error) {
	key := &[32]byte{}
	_, err := io.ReadFull(rand.Reader, key[:])
	return base64.RawURLEncoding.EncodeToString(key[:]), err
}

// Keys is a pair of encryption & signing keys.
type Keys struct {
	encryption *[32]byte
	signature  *[32]byte
}

// DeriveKeys turns a passphrase and salt into a pair of keys. The same
// passphrase & salt always give the same keys.
func DeriveKeys(passphrase, salt string) *Keys {
	data := []byte(salt + passphrase)
	return &Keys{
		encryption: toKey(cryptopasta.Hash(tagEncryption, data)),
		signature:  toKey(cryptopasta.Hash(tagSignature, data)),
	}
}

// Decrypt is the inverse of encrypt, checking the HMAC and decrpyting the
// encoded data, if possible.
func (k *Keys) Decrypt(encoded string) ([]byte, error) {
	// split into cyphertext & signature
	bits := strings.SplitN(encoded, ".", 2)
	if len(bits) != 2 {
		return nil, fmt.Errorf("decryption failed, encoded string invalid")
	}

	cypher, err := base64.RawURLEncoding.DecodeString(bits[0])
	if err != nil {
		return nil, err
	}

	signature, err := base64.RawURLEncoding.DecodeString(bits[1])
	if err != nil {
		return nil, err
	}

	if !cryptopasta.CheckHMAC(cypher, signature, k.signature) {
		return nil, ErrSignature
	}

	return cryptopasta.Decrypt(cypher, k.encryption)
}

// Encrypt encrypts & base64 encodes the result into a string.
// It also attaches a HMAC signature on the end.
func (k *Keys) Encrypt(plaintext []byte) (string, error) {
	cyphertext, err := cryptopasta.Encrypt(plaintext, k.encryption)
	if err != nil {
		return "", err
	}

	signature := cryptopasta.GenerateHMAC(cyphertext, k.signature)

	// smoosh together and we're done
	return fmt.Sprintf(
		"%s.%s",
		base64.RawURLEncoding.EncodeToString(cyphertext),
		base64.RawURLEncoding.EncodeToString(signature),
	), nil
}

// toKey copies a 32 byte hash into the *[32]byte cryptopasta wants.
func toKey(b []byte) *[32]byte {
	data := &[32]byte{}
	copy(data[:], b)
	return data
}
