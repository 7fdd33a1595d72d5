package uid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Snowflake generates Twitter-style 63-bit ids.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake picks a random node number within the 10-bit node space.
func NewSnowflake() (*Snowflake, error) {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		return nil, fmt.Errorf("uid: seed snowflake node: %w", err)
	}

	return NewSnowflakeNode(int64(binary.BigEndian.Uint16(b[:]) % 1024))
}

// NewSnowflakeNode returns a generator bound to an explicit node number.
func NewSnowflakeNode(node int64) (*Snowflake, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("uid: create snowflake node %d: %w", node, err)
	}

	return &Snowflake{node: n}, nil
}

// Generate returns the next id.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
