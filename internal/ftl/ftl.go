// Package ftl implements the flash translation layer: a logical page
// address space backed by a NAND chip, surviving restart by scanning the
// medium's own out-of-band metadata. See nand.Chip for the physical layer
// this hides.
package ftl

import (
	"fmt"
	"math/bits"

	"github.com/KleaSCM/Aurelia/internal/nand"
)

// Lba is a host-facing logical page address. Pba is the physical page
// address it may be mapped to, encoding block*PagesPerBlock+page.
type Lba = uint32
type Pba = uint32

// FtlMagic tags every page this FTL has authored, distinguishing live
// data from an erased (empty) page during mount.
const FtlMagic uint32 = 0xDEADBEEF

// BlockState is the lifecycle state of one erase block as tracked by the
// FTL (distinct from the NAND chip's own bad-block flag, though Bad here
// always mirrors it).
type BlockState int

const (
	StateFree BlockState = iota
	StateActive
	StateFull
	StateBad
)

func (s BlockState) String() string {
	switch s {
	case StateFree:
		return "Free"
	case StateActive:
		return "Active"
	case StateFull:
		return "Full"
	case StateBad:
		return "Bad"
	default:
		return "Unknown"
	}
}

// BlockInfo is the FTL's per-block bookkeeping, exposed read-only for
// tests and diagnostics via Ftl.GetBlockInfo.
type BlockInfo struct {
	State           BlockState
	EraseCount      uint32
	ValidPageBitmap uint64
}

// oobMetadata is the fixed 8-byte prefix of a page's OOB region used by
// this FTL. It is serialized explicitly rather than reinterpreted from a
// host struct layout, so the wire format is independent of platform
// endianness or struct padding (see §6 of the storage-core spec and
// DESIGN.md's note on the original source's raw memcpy approach).
type oobMetadata struct {
	magic uint32
	lba   Lba
}

func encodeOob(m oobMetadata) []byte {
	b := make([]byte, nand.OobSize)
	for i := range b {
		b[i] = 0xFF
	}
	putLE32(b[0:4], m.magic)
	putLE32(b[4:8], m.lba)
	return b
}

func decodeOob(b []byte) oobMetadata {
	return oobMetadata{
		magic: getLE32(b[0:4]),
		lba:   getLE32(b[4:8]),
	}
}

func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func getLE32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func pba(block, page int) Pba {
	return Pba(block*nand.PagesPerBlock + page)
}

func unpba(p Pba) (block, page int) {
	return int(p) / nand.PagesPerBlock, int(p) % nand.PagesPerBlock
}

// frontier is the active-block write cursor. The zero value is "none" —
// a dedicated sentinel integer (as the original source's
// numeric_limits<size_t>::max()) is unnecessary once this is its own sum
// type.
type frontier struct {
	block int
	page  int
	valid bool
}

// Ftl owns a NAND chip and exposes write(lba, page) / read(lba, page)
// over an unbounded logical address space.
type Ftl struct {
	nand        *nand.Chip
	totalBlocks int

	mapping  map[Lba]Pba
	blocks   []BlockInfo
	freeList []int
	active   frontier
}

// New constructs an Ftl over nand, using the first totalBlocks blocks of
// the chip. It mounts immediately, reconstructing all runtime state from
// OOB, and allocates an initial active block if the free list is
// non-empty and mount found no in-progress one.
func New(chip *nand.Chip, totalBlocks int) (*Ftl, error) {
	if totalBlocks > chip.BlockCount() {
		return nil, fmt.Errorf("ftl: totalBlocks %d exceeds chip block count %d", totalBlocks, chip.BlockCount())
	}

	f := &Ftl{
		nand:        chip,
		totalBlocks: totalBlocks,
		blocks:      make([]BlockInfo, totalBlocks),
	}

	f.mount()

	if !f.active.valid && len(f.freeList) > 0 {
		f.allocateNewActiveBlock()
	}

	return f, nil
}

// mount rebuilds the mapping table and per-block state solely from OOB,
// visiting blocks in descending index order so that the freelist's LIFO
// pop order matches ascending block-index allocation order (spec §4.2.1).
func (f *Ftl) mount() {
	f.mapping = make(map[Lba]Pba)
	f.freeList = f.freeList[:0]

	dataBuf := make([]byte, nand.PageDataSize)
	oobBuf := make([]byte, nand.OobSize)

	for b := f.totalBlocks - 1; b >= 0; b-- {
		if f.nand.IsBad(b) || f.nand.ReadPage(b, 0, dataBuf, oobBuf) != nand.StatusSuccess {
			f.blocks[b].State = StateBad
			continue
		}

		meta := decodeOob(oobBuf)
		if meta.magic != FtlMagic {
			f.blocks[b].State = StateFree
			f.blocks[b].EraseCount = 0
			f.freeList = append(f.freeList, b)
			continue
		}

		f.mapping[meta.lba] = pba(b, 0)

		active := false
		for p := 1; p < nand.PagesPerBlock; p++ {
			if f.nand.ReadPage(b, p, dataBuf, oobBuf) != nand.StatusSuccess {
				break
			}
			meta = decodeOob(oobBuf)
			if meta.magic == FtlMagic {
				f.mapping[meta.lba] = pba(b, p)
				continue
			}

			f.active = frontier{block: b, page: p, valid: true}
			f.blocks[b].State = StateActive
			active = true
			break
		}

		if !active {
			f.blocks[b].State = StateFull
		}
		f.blocks[b].EraseCount = f.nand.EraseCount(b)
	}

	// The scan above sets no bitmap bits. An LBA can carry a stale,
	// not-yet-erased tag in more than one block; the mapping table's last
	// upsert wins, per the scan order above. Derive every bit strictly
	// from the surviving mapping so each bit reflects exactly one LBA's
	// current page (invariant I1), rather than every tagged page a
	// block's local scan saw in isolation.
	f.resyncValidBitmaps()
}

// resyncValidBitmaps rebuilds every block's ValidPageBitmap from the
// mapping table alone, so popcount(bitmap(b)) equals the number of
// distinct LBAs currently mapped into b.
func (f *Ftl) resyncValidBitmaps() {
	for b := range f.blocks {
		f.blocks[b].ValidPageBitmap = 0
	}
	for _, p := range f.mapping {
		block, page := unpba(p)
		f.blocks[block].ValidPageBitmap |= 1 << uint(page)
	}
}

// allocateNewActiveBlock pops the most recently freed block (LIFO),
// triggering GC first if the free list is empty. Returns false if no
// block could be made available.
func (f *Ftl) allocateNewActiveBlock() bool {
	if len(f.freeList) == 0 {
		if !f.garbageCollect() {
			return false
		}
		if len(f.freeList) == 0 {
			return false
		}
	}

	newBlock := f.freeList[len(f.freeList)-1]
	f.freeList = f.freeList[:len(f.freeList)-1]

	f.blocks[newBlock].State = StateActive
	f.blocks[newBlock].ValidPageBitmap = 0
	f.active = frontier{block: newBlock, page: 0, valid: true}

	return true
}

// Write programs exactly one PageDataSize-sized payload at lba, appending
// to the active block and allocating (possibly via GC) if needed.
func (f *Ftl) Write(lba Lba, data []byte) nand.Status {
	if len(data) != nand.PageDataSize {
		return nand.StatusWriteError
	}

	oob := encodeOob(oobMetadata{magic: FtlMagic, lba: lba})

	if !f.active.valid {
		if !f.allocateNewActiveBlock() {
			return nand.StatusWriteError
		}
	}

	block, page := f.active.block, f.active.page
	status := f.nand.ProgramPage(block, page, data, oob)
	if status != nand.StatusSuccess {
		return status
	}

	// Only now that the program has succeeded do we retire the LBA's
	// previous page, per the spec's resolution of its own open question:
	// invalidating before a failed program would leave a page the
	// mapping table still points at, yet whose bitmap bit is clear,
	// inconsistent with what mount would reconstruct from OOB.
	if oldPba, ok := f.mapping[lba]; ok {
		oldBlock, oldPage := unpba(oldPba)
		f.blocks[oldBlock].ValidPageBitmap &^= 1 << uint(oldPage)
	}

	f.mapping[lba] = pba(block, page)
	f.blocks[block].ValidPageBitmap |= 1 << uint(page)

	f.active.page++
	if f.active.page >= nand.PagesPerBlock {
		f.blocks[block].State = StateFull
		f.active = frontier{}
	}

	return nand.StatusSuccess
}

// Read fills buf with the payload mapped to lba, or with the erased
// pattern (0xFF) if lba has never been written — which is success, not
// an error.
func (f *Ftl) Read(lba Lba, buf []byte) nand.Status {
	p, ok := f.mapping[lba]
	if !ok {
		for i := range buf {
			buf[i] = 0xFF
		}
		return nand.StatusSuccess
	}

	block, page := unpba(p)
	return f.nand.ReadPage(block, page, buf, nil)
}

// garbageCollect runs one greedy reclamation pass: pick the block with
// the fewest valid pages (excluding the active block, Free, and Bad
// blocks), stage its valid pages in RAM, erase it, then re-write the
// staged pages. A successful erase always frees at least one block
// before re-migration begins, so the re-written pages' own writes never
// need to recurse back into victim selection.
func (f *Ftl) garbageCollect() bool {
	victim := -1
	minValid := nand.PagesPerBlock + 1

	for i := 0; i < f.totalBlocks; i++ {
		if f.active.valid && i == f.active.block {
			continue
		}
		state := f.blocks[i].State
		if state == StateFree || state == StateBad {
			continue
		}
		validCount := bits.OnesCount64(f.blocks[i].ValidPageBitmap)
		if validCount < minValid {
			minValid = validCount
			victim = i
		}
	}

	if victim == -1 {
		return false
	}

	type staged struct {
		lba  Lba
		data []byte
	}
	var pages []staged

	dataBuf := make([]byte, nand.PageDataSize)
	oobBuf := make([]byte, nand.OobSize)

	for p := 0; p < nand.PagesPerBlock; p++ {
		if f.blocks[victim].ValidPageBitmap&(1<<uint(p)) == 0 {
			continue
		}
		if f.nand.ReadPage(victim, p, dataBuf, oobBuf) != nand.StatusSuccess {
			continue
		}
		meta := decodeOob(oobBuf)
		if cur, ok := f.mapping[meta.lba]; !ok || cur != pba(victim, p) {
			continue // stale: mapping moved on, nothing to migrate
		}
		cp := make([]byte, nand.PageDataSize)
		copy(cp, dataBuf)
		pages = append(pages, staged{lba: meta.lba, data: cp})
	}

	if f.nand.EraseBlock(victim) != nand.StatusSuccess {
		f.nand.MarkBad(victim)
		f.blocks[victim].State = StateBad
		return false
	}

	f.blocks[victim].State = StateFree
	f.blocks[victim].ValidPageBitmap = 0
	f.blocks[victim].EraseCount = f.nand.EraseCount(victim)
	f.freeList = append(f.freeList, victim)

	for _, s := range pages {
		if f.Write(s.lba, s.data) != nand.StatusSuccess {
			return false
		}
	}

	return true
}

// GetBlockInfo is a pure inspector over one block's FTL-side state, for
// tests and diagnostics. Out-of-range indices return the zero value.
func (f *Ftl) GetBlockInfo(blockIdx int) BlockInfo {
	if blockIdx < 0 || blockIdx >= len(f.blocks) {
		return BlockInfo{}
	}
	return f.blocks[blockIdx]
}

// FreeListDepth reports how many blocks are currently free, for GC
// progress assertions that shouldn't need to reach past GetBlockInfo for
// every block.
func (f *Ftl) FreeListDepth() int {
	return len(f.freeList)
}

// ActiveFrontier reports the current append cursor, if any.
func (f *Ftl) ActiveFrontier() (block, page int, ok bool) {
	return f.active.block, f.active.page, f.active.valid
}
