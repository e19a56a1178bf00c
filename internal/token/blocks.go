package token

// BlockStep is what one token does to block nesting.
type BlockStep uint8

const (
	// BlockNone leaves nesting unchanged.
	BlockNone BlockStep = iota
	// BlockOpen opens a block closed by a later End.
	BlockOpen
	// BlockClose closes the innermost open block.
	BlockClose
	// BlockUnbalanced is an End with no open block.
	BlockUnbalanced
)

// Blocks tracks macro/proc/do nesting. `proc name do ... end` is one block:
// the do that follows a proc continues it instead of opening another one.
// Any other do (`while cond do ... end`) opens its own block.
type Blocks struct {
	// open kinds, innermost last; Proc means the proc has not seen its do
	open []Kind
}

// Step feeds the next token kind.
func (b *Blocks) Step(k Kind) BlockStep {
	switch k {
	case Macro, Proc:
		b.open = append(b.open, k)
		return BlockOpen
	case Do:
		if n := len(b.open); n > 0 && b.open[n-1] == Proc {
			b.open[n-1] = Do
			return BlockNone
		}
		b.open = append(b.open, Do)
		return BlockOpen
	case End:
		if len(b.open) == 0 {
			return BlockUnbalanced
		}
		b.open = b.open[:len(b.open)-1]
		return BlockClose
	}
	return BlockNone
}

// Depth is the number of open blocks.
func (b *Blocks) Depth() int {
	return len(b.open)
}
