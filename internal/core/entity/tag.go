package entity

import "strconv"

// BlockTagKind enumerates the symbolic block references plus exact heights.
type BlockTagKind uint8

const (
	TagLatest BlockTagKind = iota
	TagFinalized
	TagSafe
	TagEarliest
	TagPending
	TagNumber
)

// BlockTag is a symbolic or numeric reference to a block. Number is only
// meaningful when Kind is TagNumber.
type BlockTag struct {
	Kind   BlockTagKind
	Number uint64
}

var (
	Latest    = BlockTag{Kind: TagLatest}
	Finalized = BlockTag{Kind: TagFinalized}
	Safe      = BlockTag{Kind: TagSafe}
	Earliest  = BlockTag{Kind: TagEarliest}
	Pending   = BlockTag{Kind: TagPending}
)

// ExactNumber references the block at height n.
func ExactNumber(n uint64) BlockTag {
	return BlockTag{Kind: TagNumber, Number: n}
}

func (t BlockTag) String() string {
	switch t.Kind {
	case TagLatest:
		return "latest"
	case TagFinalized:
		return "finalized"
	case TagSafe:
		return "safe"
	case TagEarliest:
		return "earliest"
	case TagPending:
		return "pending"
	default:
		return "0x" + strconv.FormatUint(t.Number, 16)
	}
}
