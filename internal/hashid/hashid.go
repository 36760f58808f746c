// Package hashid maps internal integer ids to opaque, salted strings and back.
package hashid

import (
	"errors"
	"strings"

	"github.com/speps/go-hashids/v2"
)

// MinLength is the shortest opaque id the codec produces.
const MinLength = 8

// Codec encodes and decodes opaque ids under a single salt.
// It is safe for concurrent use.
type Codec struct {
	h *hashids.HashID
}

// New builds a codec for salt.
func New(salt string) (*Codec, error) {
	if strings.TrimSpace(salt) == "" {
		return nil, errors.New("hashid salt is required")
	}

	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = MinLength

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, err
	}
	return &Codec{h: h}, nil
}

// Encode returns the opaque id for id. Negative ids have no encoding and
// yield "".
func (c *Codec) Encode(id int) string {
	if id < 0 {
		return ""
	}
	code, err := c.h.Encode([]int{id})
	if err != nil {
		return ""
	}
	return code
}

// Decode returns the id encoded by code. ok is false for anything Encode
// could not have produced under this salt, and for zero.
func (c *Codec) Decode(code string) (id int, ok bool) {
	if code == "" || len(code) < MinLength {
		return 0, false
	}

	values, err := c.h.DecodeWithError(code)
	if err != nil || len(values) != 1 {
		return 0, false
	}
	if values[0] < 1 {
		return 0, false
	}
	if c.Encode(values[0]) != code {
		return 0, false
	}
	return values[0], true
}
