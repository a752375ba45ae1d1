// Package meetingcode derives short shareable references from numeric
// meeting ids, so clients can quote a meeting without leaking the raw
// sequence.
package meetingcode

import (
	"errors"

	hashids "github.com/speps/go-hashids/v2"
)

// Alphabet avoids characters that read ambiguously in calendar invites.
const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

type Generator struct {
	h *hashids.HashID
}

func NewGenerator(salt string) (*Generator, error) {
	hd := hashids.NewData()
	hd.Salt = salt
	hd.MinLength = 8
	hd.Alphabet = alphabet

	h, err := hashids.NewWithData(hd)
	if err != nil {
		return nil, err
	}
	return &Generator{h: h}, nil
}

func (g *Generator) Encode(id int64) string {
	code, err := g.h.EncodeInt64([]int64{id})
	if err != nil {
		// EncodeInt64 only fails on empty input or negative ids, neither of
		// which a store-assigned id can be.
		return ""
	}
	return code
}

func (g *Generator) Decode(code string) (int64, error) {
	ids, err := g.h.DecodeInt64WithError(code)
	if err != nil {
		return 0, err
	}
	if len(ids) != 1 {
		return 0, errors.New("malformed meeting code")
	}
	return ids[0], nil
}
