package vm

import (
	"fmt"
	"sync"
)

// ---------------------------------------------------------------------------
// Allocator: the collector's service contract
// ---------------------------------------------------------------------------

// Allocator is the allocation and write-barrier service the object model
// runs on. The runtime never constructs Objects or STables itself.
type Allocator interface {
	// AllocateSTable creates an STable for repr. how may be nil (stub).
	AllocateSTable(repr REPR, how *Object) (*STable, error)

	// AllocateObject creates an instance carrying body. st may be nil for
	// objects whose STable is attached later.
	AllocateObject(st *STable, body any) (*Object, error)

	// AllocateTypeObject creates the bodiless type object for st.
	AllocateTypeObject(st *STable) (*Object, error)

	// AddPermanentRoot keeps obj alive regardless of reachability.
	AddPermanentRoot(obj *Object)

	// RemovePermanentRoot drops a permanent root registration.
	RemovePermanentRoot(obj *Object)

	// WriteBarrier must be called before a reference to ref is stored
	// into owner.
	WriteBarrier(owner Collectable, ref Collectable)
}

// ---------------------------------------------------------------------------
// Heap: arena allocator
// ---------------------------------------------------------------------------

// HeapStats is a point-in-time view of heap counters.
type HeapStats struct {
	Objects        int
	STables        int
	PermanentRoots int
	Barriers       uint64
	Remembered     int
}

// Heap is an arena-backed Allocator. Every object and STable is recorded
// in allocation order; serial numbers are arena positions starting at 1.
// A MaxObjects limit of zero means unlimited.
type Heap struct {
	mu sync.Mutex

	objects []*Object
	stables []*STable
	serial  uint64

	maxObjects int

	permanent  map[*Object]struct{}
	remembered map[Collectable]struct{}
	barriers   uint64
}

// NewHeap creates a heap that refuses to hold more than maxObjects
// objects and STables combined. Use 0 for no limit.
func NewHeap(maxObjects int) *Heap {
	return &Heap{
		objects:    make([]*Object, 0, 64),
		stables:    make([]*STable, 0, 16),
		maxObjects: maxObjects,
		permanent:  make(map[*Object]struct{}),
		remembered: make(map[Collectable]struct{}),
	}
}

// reserve claims the next serial. Caller holds h.mu.
func (h *Heap) reserve(kind string) (uint64, error) {
	if h.maxObjects > 0 && len(h.objects)+len(h.stables) >= h.maxObjects {
		return 0, fmt.Errorf("%w: %s: heap limit of %d reached", ErrAllocationFailure, kind, h.maxObjects)
	}
	h.serial++
	return h.serial, nil
}

// AllocateSTable implements Allocator.
func (h *Heap) AllocateSTable(repr REPR, how *Object) (*STable, error) {
	if repr == nil {
		return nil, fmt.Errorf("%w: STable needs a representation", ErrAllocationFailure)
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	serial, err := h.reserve("STable")
	if err != nil {
		return nil, err
	}
	st := &STable{repr: repr, how: how, serial: serial}
	h.stables = append(h.stables, st)
	return st, nil
}

// AllocateObject implements Allocator.
func (h *Heap) AllocateObject(st *STable, body any) (*Object, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	serial, err := h.reserve("object")
	if err != nil {
		return nil, err
	}
	obj := &Object{st: st, body: body, serial: serial}
	h.objects = append(h.objects, obj)
	return obj, nil
}

// AllocateTypeObject implements Allocator.
func (h *Heap) AllocateTypeObject(st *STable) (*Object, error) {
	if st == nil {
		return nil, fmt.Errorf("%w: type object needs an STable", ErrAllocationFailure)
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	serial, err := h.reserve("type object")
	if err != nil {
		return nil, err
	}
	obj := &Object{st: st, typeObject: true, serial: serial}
	h.objects = append(h.objects, obj)
	return obj, nil
}

// AddPermanentRoot implements Allocator.
func (h *Heap) AddPermanentRoot(obj *Object) {
	if obj == nil {
		return
	}
	h.mu.Lock()
	h.permanent[obj] = struct{}{}
	h.mu.Unlock()
}

// RemovePermanentRoot implements Allocator.
func (h *Heap) RemovePermanentRoot(obj *Object) {
	h.mu.Lock()
	delete(h.permanent, obj)
	h.mu.Unlock()
}

// IsPermanentRoot reports whether obj is registered as a permanent root.
func (h *Heap) IsPermanentRoot(obj *Object) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.permanent[obj]
	return ok
}

// WriteBarrier implements Allocator. Owners are remembered so a collector
// can rescan them; a nil ref needs no tracking.
func (h *Heap) WriteBarrier(owner Collectable, ref Collectable) {
	if owner == nil || ref == nil {
		return
	}
	h.mu.Lock()
	h.barriers++
	h.remembered[owner] = struct{}{}
	h.mu.Unlock()
}

// Remembered reports whether a write barrier has been taken for owner.
func (h *Heap) Remembered(owner Collectable) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.remembered[owner]
	return ok
}

// Stats returns the current counters.
func (h *Heap) Stats() HeapStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return HeapStats{
		Objects:        len(h.objects),
		STables:        len(h.stables),
		PermanentRoots: len(h.permanent),
		Barriers:       h.barriers,
		Remembered:     len(h.remembered),
	}
}
