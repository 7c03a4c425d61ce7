package schema

// Address is a word-granular stack address. The snapshot translator divides
// byte addresses by the target word size, so consecutive buffer indices map
// to consecutive addresses.
type Address uint64

// Word is one observed stack word.
type Word uint64

// StackFrame is a single observation of a contiguous stack memory range
// together with the stack and frame pointer values at that moment. The
// memory payload is consumed by the stack model; callers must not reuse it
// after handing the frame over.
type StackFrame struct {
	StackPointer Address
	FramePointer Address
	Memory       []Word
}

// Empty reports whether the frame carries no memory.
func (f *StackFrame) Empty() bool {
	return f == nil || len(f.Memory) == 0
}

// Highlight marks special rows in a stack view.
type Highlight uint8

const (
	// HighlightStackPointer marks the row containing the stack pointer.
	HighlightStackPointer Highlight = 1 << iota
	// HighlightFramePointer marks the row containing the frame pointer.
	HighlightFramePointer
)

// RowLabelUnreachable labels rows above the stack pointer, which cannot be
// reached through the frame pointer.
const RowLabelUnreachable = "n/a"

// StackRow is one display row of four stack words.
type StackRow struct {
	Address   Address
	Values    [4]Word
	Label     string
	Greyed    bool
	Highlight Highlight
}

// StackView is the row-oriented projection of the merged stack window.
type StackView struct {
	Top  Address
	Size int
	Rows []StackRow
}
