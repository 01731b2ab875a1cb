package model

import "fmt"

// NodeType is the closed set of node categories. It selects color, size and
// glyph in the renderer and marks anchors for the simulation.
type NodeType uint8

const (
	NodeUser NodeType = iota + 1
	NodeSkill
	NodeJob
	NodeCompany
	NodePreference
	NodeFact
)

// NumNodeTypes is the number of valid node types. Lookup tables indexed by
// NodeType are sized NumNodeTypes+1 so index 0 stays the invalid zero value.
const NumNodeTypes = 6

var nodeTypeNames = [NumNodeTypes + 1]string{
	"",
	"user",
	"skill",
	"job",
	"company",
	"preference",
	"fact",
}

// NodeTypes returns every valid node type in declaration order.
func NodeTypes() []NodeType {
	types := make([]NodeType, 0, NumNodeTypes)
	for t := NodeUser; t <= NodeFact; t++ {
		types = append(types, t)
	}
	return types
}

// ParseNodeType maps a lowercase name to its NodeType.
func ParseNodeType(s string) (NodeType, error) {
	for i := 1; i < len(nodeTypeNames); i++ {
		if nodeTypeNames[i] == s {
			return NodeType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown node type %q", s)
}

// String returns the string representation of the node type.
func (t NodeType) String() string {
	if !t.IsValid() {
		return fmt.Sprintf("NodeType(%d)", uint8(t))
	}
	return nodeTypeNames[t]
}

// IsValid checks whether the node type is a known value.
func (t NodeType) IsValid() bool {
	return t >= NodeUser && t <= NodeFact
}

// Anchor reports whether nodes of this type are pinned at the canvas center.
func (t NodeType) Anchor() bool {
	return t == NodeUser
}

func (t NodeType) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid node type %d", uint8(t))
	}
	return []byte(nodeTypeNames[t]), nil
}

func (t *NodeType) UnmarshalText(b []byte) error {
	v, err := ParseNodeType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
