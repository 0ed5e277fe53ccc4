package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/dmitrijs2005/nestkey/internal/common"
)

const (
	// NonceLen is the GCM nonce size; a fresh random nonce is drawn per Seal.
	NonceLen = 12
	// TagLen is the GCM authentication tag size.
	TagLen = 16
)

// SealedBlob is the self-contained output of Seal.
type SealedBlob struct {
	Nonce      []byte
	Tag        []byte
	Ciphertext []byte
}

func newGCM(key *Key) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext under key with AES-256-GCM.
//
// Each call draws a new random 12-byte nonce. The tag that GCM appends to the
// ciphertext is split off into SealedBlob.Tag.
func Seal(plaintext []byte, key Key) (*SealedBlob, error) {
	defer key.Wipe()

	aead, err := newGCM(&key)
	if err != nil {
		return nil, fmt.Errorf("seal: %w", err)
	}

	nonce, err := common.RandomBytes(NonceLen)
	if err != nil {
		return nil, fmt.Errorf("seal: %w", err)
	}

	sealed := aead.Seal(nil, nonce, plaintext, nil)
	split := len(sealed) - TagLen

	return &SealedBlob{
		Nonce:      nonce,
		Tag:        sealed[split:],
		Ciphertext: sealed[:split],
	}, nil
}

// Open authenticates and decrypts blob under key.
//
// Any failure (wrong key, altered nonce/tag/ciphertext, bad field lengths)
// is reported as common.ErrIntegrity and no plaintext is returned.
func Open(blob *SealedBlob, key Key) ([]byte, error) {
	defer key.Wipe()

	if blob == nil || len(blob.Nonce) != NonceLen || len(blob.Tag) != TagLen {
		return nil, common.ErrIntegrity
	}

	aead, err := newGCM(&key)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	sealed := make([]byte, 0, len(blob.Ciphertext)+TagLen)
	sealed = append(sealed, blob.Ciphertext...)
	sealed = append(sealed, blob.Tag...)

	plaintext, err := aead.Open(nil, blob.Nonce, sealed, nil)
	if err != nil {
		return nil, common.ErrIntegrity
	}
	return plaintext, nil
}
