package wlav

import "fmt"

// sourceIndex assigns dense file IDs, counting from zero, to source buffers
// encountered via fixup locations, lazily creating a catch-all "unknown
// file" entry the first time it's needed. ID 0 can legitimately belong
// either to a real, first-registered file or to the unknown-file
// sentinel, so an explicit hasUnknown flag disambiguates the two instead
// of overloading the ID value itself.
type sourceIndex struct {
	sourceMgr   SourceManager
	nextID      uint32
	hasUnknown  bool
	unknownID   uint32
	bufferIDs   map[uint32]uint32
	bufferOrder []uint32
}

func newSourceIndex(sourceMgr SourceManager) *sourceIndex {
	return &sourceIndex{sourceMgr: sourceMgr, bufferIDs: make(map[uint32]uint32)}
}

func (si *sourceIndex) ensureUnknown() uint32 {
	if !si.hasUnknown {
		si.unknownID = si.nextID
		si.nextID++
		si.hasUnknown = true
	}
	return si.unknownID
}

// resolve maps a fixup's source location to (fileID, line), assigning a
// new dense ID the first time a buffer is seen.
func (si *sourceIndex) resolve(loc SourceLoc) (fileID, line uint32) {
	if si.sourceMgr == nil || !loc.Valid {
		return si.ensureUnknown(), 0
	}
	if id, ok := si.bufferIDs[loc.BufferID]; ok {
		return id, loc.Line
	}
	id := si.nextID
	si.nextID++
	si.bufferIDs[loc.BufferID] = id
	si.bufferOrder = append(si.bufferOrder, loc.BufferID)
	return id, loc.Line
}

// write emits the source file table.
func (si *sourceIndex) write(w *countingWriter, asm Assembler) {
	fileNames := asm.FileNames()

	if len(si.bufferIDs) == 0 {
		unknown := si.ensureUnknown()
		if len(fileNames) == 1 {
			w.u32(1)
			w.cstr(fileNames[0])
			w.u8(uint8(unknown))
			w.u32(0)
			return
		}
	}

	count := uint32(len(si.bufferIDs))
	if si.hasUnknown {
		count++
	}
	w.u32(count)

	for _, bufID := range si.bufferOrder {
		id := si.bufferIDs[bufID]
		name, ok := "", false
		if si.sourceMgr != nil {
			name, ok = si.sourceMgr.Identifier(bufID)
		}
		if !ok || name == "" {
			name = fmt.Sprintf("anonymous file %d", bufID)
		}
		w.cstr(name)
		w.u8(uint8(id))
		w.u32(0)
	}
	if si.hasUnknown {
		w.cstr("unknown file")
		w.u8(uint8(si.unknownID))
		w.u32(0)
	}
}
