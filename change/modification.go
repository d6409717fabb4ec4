package change

import "fmt"

// Kind is the kind of a logical edit.
type Kind uint8

const (
	Write  Kind = iota // overwrite bytes
	Insert             // insert bytes
	Delete             // remove bytes
)

func (k Kind) String() string {
	switch k {
	case Write:
		return "write"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Origin tells observers what caused a modification.
type Origin uint8

const (
	User Origin = iota // an edit operation of a client
	Undo               // undoing an edit
	Redo               // redoing an edit
)

func (o Origin) String() string {
	switch o {
	case User:
		return "user"
	case Undo:
		return "undo"
	case Redo:
		return "redo"
	}
	return fmt.Sprintf("origin(%d)", uint8(o))
}

// Modification describes a logical edit, independent of the number of chunks it
// touched.
//
// Data holds the bytes written or inserted, if known. Modifications reported
// for undo and redo may lack Data; observers have to read the buffer instead.
//
// A Write reaching past the end of the buffer extends it, but Length still
// covers the written range only. The growth, and the shrinking when such a
// write is undone, shows up solely as a change of the buffer length.
type Modification struct {
	Kind   Kind
	Offset int64
	Length int64
	Data   []byte
}

// WriteMod describes overwriting with data at offset.
func WriteMod(offset int64, data []byte) Modification {
	return Modification{Kind: Write, Offset: offset, Length: int64(len(data)), Data: data}
}

// InsertMod describes inserting data at offset.
func InsertMod(offset int64, data []byte) Modification {
	return Modification{Kind: Insert, Offset: offset, Length: int64(len(data)), Data: data}
}

// DeleteMod describes removing length bytes at offset.
func DeleteMod(offset, length int64) Modification {
	return Modification{Kind: Delete, Offset: offset, Length: length}
}

// Inverse returns the modification which reverts m.
//
// The inverse of a Write is a Write of the same range, even if m extended
// the buffer and reverting it truncates the buffer again.
func (m Modification) Inverse() Modification {
	switch m.Kind {
	case Insert:
		return DeleteMod(m.Offset, m.Length)
	case Delete:
		return Modification{Kind: Insert, Offset: m.Offset, Length: m.Length}
	}
	return Modification{Kind: Write, Offset: m.Offset, Length: m.Length}
}

// End returns the offset right after the modified range.
func (m Modification) End() int64 {
	return m.Offset + m.Length
}

func (m Modification) String() string {
	return fmt.Sprintf("%s[%d,%d)", m.Kind, m.Offset, m.End())
}
