package vm

import "sync"

// ---------------------------------------------------------------------------
// InternTable: permanently rooted strings
// ---------------------------------------------------------------------------

// InternTable maps string values to a single VMString object each. Every
// interned string is a permanent root: runtime code holds these objects
// directly rather than through the object graph.
type InternTable struct {
	vm *VM

	mu     sync.RWMutex
	byName map[string]*Object
	byID   []*Object
}

func newInternTable(vm *VM) *InternTable {
	return &InternTable{
		vm:     vm,
		byName: make(map[string]*Object),
		byID:   make([]*Object, 0, 16),
	}
}

// Intern returns the VMString for s, decoding and rooting it on first use.
func (it *InternTable) Intern(s string) (*Object, error) {
	// Fast path: read-only lookup
	it.mu.RLock()
	if obj, ok := it.byName[s]; ok {
		it.mu.RUnlock()
		return obj, nil
	}
	it.mu.RUnlock()

	it.mu.Lock()
	defer it.mu.Unlock()

	// Double-check after acquiring write lock
	if obj, ok := it.byName[s]; ok {
		return obj, nil
	}

	obj, err := it.vm.DecodeASCII(s)
	if err != nil {
		return nil, err
	}
	it.vm.heap.AddPermanentRoot(obj)
	it.byName[s] = obj
	it.byID = append(it.byID, obj)
	return obj, nil
}

// Lookup returns the interned object for s without creating one.
func (it *InternTable) Lookup(s string) (*Object, bool) {
	it.mu.RLock()
	defer it.mu.RUnlock()
	obj, ok := it.byName[s]
	return obj, ok
}

// Len returns the number of interned strings.
func (it *InternTable) Len() int {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return len(it.byID)
}

// releaseRoots drops every permanent root this table registered.
func (it *InternTable) releaseRoots() {
	it.mu.Lock()
	defer it.mu.Unlock()
	for _, obj := range it.byID {
		it.vm.heap.RemovePermanentRoot(obj)
	}
}
