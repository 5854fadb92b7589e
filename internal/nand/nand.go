// Package nand models the physical NAND flash medium: an array of erase
// blocks, each holding a fixed number of pages, each page holding a data
// region and a small out-of-band region. The chip enforces the physical
// program/erase asymmetry at byte granularity and nothing else — no
// latency, no wear effects, no ECC.
package nand

// Fixed geometry constants of the medium.
const (
	PageDataSize  = 4096
	OobSize       = 64
	PagesPerBlock = 64
)

// Status is the outcome of a NAND operation. There are no exceptions —
// every operation is total and returns one of these.
type Status int

const (
	StatusSuccess Status = iota
	StatusWriteError
	StatusInvalidAddress
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusWriteError:
		return "WriteError"
	case StatusInvalidAddress:
		return "InvalidAddress"
	default:
		return "Unknown"
	}
}

// page holds one page's data and spare regions. Freshly constructed pages
// read as all-ones: in NAND flash an "empty" cell is a 1, not a 0.
type page struct {
	data [PageDataSize]byte
	oob  [OobSize]byte
}

func newPage() page {
	var p page
	fill(p.data[:], 0xFF)
	fill(p.oob[:], 0xFF)
	return p
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}

// block is the smallest erasable unit: PagesPerBlock pages plus wear and
// factory-defect bookkeeping.
type block struct {
	pages      [PagesPerBlock]page
	isBad      bool
	eraseCount uint32
}

func newBlock() block {
	var b block
	for i := range b.pages {
		b.pages[i] = newPage()
	}
	return b
}

func (b *block) erase() {
	for i := range b.pages {
		fill(b.pages[i].data[:], 0xFF)
		fill(b.pages[i].oob[:], 0xFF)
	}
	b.eraseCount++
}

// Chip is an array of erase blocks addressed by (block, page). It owns all
// pages for the device's lifetime and has no I/O latency of its own.
type Chip struct {
	blocks []block
}

// NewChip allocates a chip with the given number of blocks, all erased.
func NewChip(numBlocks int) *Chip {
	c := &Chip{blocks: make([]block, numBlocks)}
	for i := range c.blocks {
		c.blocks[i] = newBlock()
	}
	return c
}

// BlockCount returns the number of blocks on the chip.
func (c *Chip) BlockCount() int {
	return len(c.blocks)
}

// EraseCount reports a block's erase count, for diagnostics.
func (c *Chip) EraseCount(blockIdx int) uint32 {
	if blockIdx < 0 || blockIdx >= len(c.blocks) {
		return 0
	}
	return c.blocks[blockIdx].eraseCount
}

// IsBad reports whether a block has been marked permanently unusable.
func (c *Chip) IsBad(blockIdx int) bool {
	if blockIdx < 0 || blockIdx >= len(c.blocks) {
		return false
	}
	return c.blocks[blockIdx].isBad
}

func (c *Chip) validAddress(blockIdx, pageIdx int) bool {
	return blockIdx >= 0 && blockIdx < len(c.blocks) && pageIdx >= 0 && pageIdx < PagesPerBlock
}

// ReadPage copies a page's data (and, if oobOut is non-nil, its OOB) into
// the caller's buffers. Fails with StatusInvalidAddress if the address is
// out of range or a provided buffer is smaller than its region.
func (c *Chip) ReadPage(blockIdx, pageIdx int, dataOut, oobOut []byte) Status {
	if !c.validAddress(blockIdx, pageIdx) {
		return StatusInvalidAddress
	}
	if len(dataOut) < PageDataSize {
		return StatusInvalidAddress
	}
	if oobOut != nil && len(oobOut) < OobSize {
		return StatusInvalidAddress
	}

	p := &c.blocks[blockIdx].pages[pageIdx]
	copy(dataOut, p.data[:])
	if oobOut != nil {
		copy(oobOut, p.oob[:])
	}
	return StatusSuccess
}

// ProgramPage enforces the one-way bit-programming rule: a byte may only
// move 1->0. The check runs over the full payload before any mutation, so
// a failing program leaves the page completely unchanged (transactional
// at the page level). Shorter inputs than the page's region leave the
// trailing bytes untouched.
func (c *Chip) ProgramPage(blockIdx, pageIdx int, dataIn, oobIn []byte) Status {
	if !c.validAddress(blockIdx, pageIdx) {
		return StatusInvalidAddress
	}

	p := &c.blocks[blockIdx].pages[pageIdx]

	if !canProgram(p.data[:], dataIn) || !canProgram(p.oob[:], oobIn) {
		return StatusWriteError
	}

	program(p.data[:], dataIn)
	program(p.oob[:], oobIn)

	return StatusSuccess
}

// canProgram reports whether every byte of in can be programmed onto old
// without requiring a 0->1 flip, i.e. old[i]&in[i] == in[i] for all i.
func canProgram(old, in []byte) bool {
	n := len(in)
	if n > len(old) {
		n = len(old)
	}
	for i := 0; i < n; i++ {
		if old[i]&in[i] != in[i] {
			return false
		}
	}
	return true
}

func program(dst, in []byte) {
	n := len(in)
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] &= in[i]
	}
}

// EraseBlock resets every byte of every page in the block to 0xFF and
// increments the block's erase count.
func (c *Chip) EraseBlock(blockIdx int) Status {
	if blockIdx < 0 || blockIdx >= len(c.blocks) {
		return StatusInvalidAddress
	}
	c.blocks[blockIdx].erase()
	return StatusSuccess
}

// MarkBad permanently excludes a block from allocation. Used by the FTL
// when an erase fails; there is no path back from Bad.
func (c *Chip) MarkBad(blockIdx int) {
	if blockIdx < 0 || blockIdx >= len(c.blocks) {
		return
	}
	c.blocks[blockIdx].isBad = true
}
