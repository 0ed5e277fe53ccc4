package cryptox

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/nestkey/internal/common"
)

// blobJSON is the on-disk shape of a SealedBlob: every field hex encoded.
type blobJSON struct {
	IV   string `json:"iv"`
	Tag  string `json:"tag"`
	Data string `json:"data"`
}

// MarshalJSON encodes the blob as {"iv": ..., "tag": ..., "data": ...}.
func (b SealedBlob) MarshalJSON() ([]byte, error) {
	return json.Marshal(blobJSON{
		IV:   hex.EncodeToString(b.Nonce),
		Tag:  hex.EncodeToString(b.Tag),
		Data: hex.EncodeToString(b.Ciphertext),
	})
}

// UnmarshalJSON decodes the hex JSON form. Structural problems are reported
// as common.ErrMalformedBlob; authenticity is only checked by Open.
func (b *SealedBlob) UnmarshalJSON(data []byte) error {
	var raw blobJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", common.ErrMalformedBlob, err)
	}

	nonce, err := hex.DecodeString(raw.IV)
	if err != nil {
		return fmt.Errorf("%w: iv: %v", common.ErrMalformedBlob, err)
	}
	tag, err := hex.DecodeString(raw.Tag)
	if err != nil {
		return fmt.Errorf("%w: tag: %v", common.ErrMalformedBlob, err)
	}
	ct, err := hex.DecodeString(raw.Data)
	if err != nil {
		return fmt.Errorf("%w: data: %v", common.ErrMalformedBlob, err)
	}
	if len(nonce) != NonceLen || len(tag) != TagLen {
		return fmt.Errorf("%w: iv/tag length", common.ErrMalformedBlob)
	}

	b.Nonce, b.Tag, b.Ciphertext = nonce, tag, ct
	return nil
}

// EncodeBlob renders blob in its indented file form.
func EncodeBlob(blob *SealedBlob) ([]byte, error) {
	return json.MarshalIndent(blob, "", "  ")
}

// DecodeBlob parses the file form produced by EncodeBlob.
func DecodeBlob(data []byte) (*SealedBlob, error) {
	var blob SealedBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		if errors.Is(err, common.ErrMalformedBlob) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedBlob, err)
	}
	return &blob, nil
}
