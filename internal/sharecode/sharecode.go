// Package sharecode turns course ids into short opaque codes for share
// links, so public URLs do not expose sequential database ids.
package sharecode

import (
	"errors"

	"github.com/speps/go-hashids/v2"
)

const minLength = 8

type Codec struct {
	h *hashids.HashID
}

func New(salt string) (*Codec, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = minLength

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, err
	}
	return &Codec{h: h}, nil
}

func (c *Codec) Encode(courseID int64) (string, error) {
	return c.h.EncodeInt64([]int64{courseID})
}

func (c *Codec) Decode(code string) (int64, error) {
	ids, err := c.h.DecodeInt64WithError(code)
	if err != nil {
		return 0, err
	}
	if len(ids) != 1 || ids[0] <= 0 {
		return 0, errors.New("sharecode: malformed code")
	}
	return ids[0], nil
}
