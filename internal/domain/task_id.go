package domain

import (
	"bytes"

	"github.com/google/uuid"
)

const crockfordBase32Alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// TaskID identifies a task independently of its position in any view.
// It is a Crockford Base32 encoded UUIDv7, so IDs sort by creation time.
type TaskID string

// NewTaskID generates a fresh TaskID.
func NewTaskID() TaskID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	return TaskID(encodeCrockfordB32(id[:]))
}

// String returns the string representation of the TaskID.
func (id TaskID) String() string {
	return string(id)
}

// Short returns an abbreviated form for log output.
func (id TaskID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}

	return string(id[len(id)-8:])
}

//nolint:gosec
func encodeCrockfordB32(input []byte) string {
	var (
		result bytes.Buffer
		bits   = 0
		accum  = 0
	)

	for _, b := range input {
		accum = accum<<8 | int(b)
		bits += 8

		for bits >= 5 {
			bits -= 5
			result.WriteByte(crockfordBase32Alphabet[(accum>>bits)&0x1F])
		}
	}

	if bits > 0 {
		result.WriteByte(crockfordBase32Alphabet[(accum<<uint(5-bits))&0x1F])
	}

	return result.String()
}
