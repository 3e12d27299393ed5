package offers

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// CodeGenerator hands out customer-facing offer codes. Codes only need to be
// unlikely to collide; the offers table's unique index is what guarantees it.
type CodeGenerator interface {
	NewCode() string
}

// UUIDCodes produces codes like "OFF-3F2A9C1B7E4D".
type UUIDCodes struct {
	Prefix string
}

func (g UUIDCodes) NewCode() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return withPrefix(g.Prefix, strings.ToUpper(id[:12]))
}

// SnowflakeCodes produces time-ordered codes like "OFF-1DV9X0Q8LPS".
type SnowflakeCodes struct {
	Prefix string
	node   *snowflake.Node
}

func NewSnowflakeCodes(prefix string, nodeID int64) (*SnowflakeCodes, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}
	return &SnowflakeCodes{Prefix: prefix, node: node}, nil
}

func (g *SnowflakeCodes) NewCode() string {
	return withPrefix(g.Prefix, strings.ToUpper(g.node.Generate().Base36()))
}

func withPrefix(prefix, body string) string {
	if prefix == "" {
		return body
	}
	return prefix + "-" + body
}
