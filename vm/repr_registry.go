package vm

import (
	"fmt"
	"sync"
)

// ---------------------------------------------------------------------------
// ReprRegistry: representation lookup by id and name
// ---------------------------------------------------------------------------

// reprEntry is one registered representation.
type reprEntry struct {
	repr    REPR
	nameObj *Object // VMString naming the representation
}

// ReprRegistry maps representation IDs and names to REPRs.
//
// The registry is populated during bootstrap and then sealed. Registration
// takes a lock; lookups after Seal read immutable maps and take none.
type ReprRegistry struct {
	vm *VM

	mu     sync.Mutex
	sealed bool
	byID   map[ReprID]*reprEntry
	byName map[string]*reprEntry
	order  []ReprID
}

// newReprRegistry creates an empty registry. Names are stored as VMString
// objects, so BOOTStr must exist before anything is registered.
func newReprRegistry(vm *VM) *ReprRegistry {
	return &ReprRegistry{
		vm:     vm,
		byID:   make(map[ReprID]*reprEntry),
		byName: make(map[string]*reprEntry),
	}
}

// Register adds repr under its ID and name.
func (rr *ReprRegistry) Register(repr REPR) error {
	if repr == nil {
		return fmt.Errorf("%w: nil representation", ErrMissingRequiredArgument)
	}
	id, name := repr.ID(), repr.Name()

	rr.mu.Lock()
	defer rr.mu.Unlock()

	if rr.sealed {
		return fmt.Errorf("%w: cannot register %s", ErrRegistrySealed, name)
	}
	if existing, ok := rr.byID[id]; ok {
		return fmt.Errorf("%w: id %d already held by %s", ErrDuplicateRegistration, id, existing.repr.Name())
	}
	if _, ok := rr.byName[name]; ok {
		return fmt.Errorf("%w: name %s", ErrDuplicateRegistration, name)
	}

	nameObj, err := rr.vm.DecodeASCII(name)
	if err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	rr.vm.heap.AddPermanentRoot(nameObj)

	e := &reprEntry{repr: repr, nameObj: nameObj}
	rr.byID[id] = e
	rr.byName[name] = e
	rr.order = append(rr.order, id)
	return nil
}

// Seal makes the registry read-only.
func (rr *ReprRegistry) Seal() {
	rr.mu.Lock()
	rr.sealed = true
	rr.mu.Unlock()
}

// Sealed reports whether Seal has been called.
func (rr *ReprRegistry) Sealed() bool {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return rr.sealed
}

// LookupByID returns the REPR registered under id.
func (rr *ReprRegistry) LookupByID(id ReprID) (REPR, error) {
	e, ok := rr.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownRepresentation, id)
	}
	return e.repr, nil
}

// LookupByName returns the REPR registered under name.
func (rr *ReprRegistry) LookupByName(name string) (REPR, error) {
	e, ok := rr.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRepresentation, name)
	}
	return e.repr, nil
}

// LookupByNameObject resolves a VMString naming a representation.
func (rr *ReprRegistry) LookupByNameObject(name *Object) (REPR, error) {
	s, err := StringValue(name)
	if err != nil {
		return nil, fmt.Errorf("representation name: %w", err)
	}
	return rr.LookupByName(s)
}

// NameObject returns the VMString naming the representation with id.
func (rr *ReprRegistry) NameObject(id ReprID) (*Object, error) {
	e, ok := rr.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownRepresentation, id)
	}
	return e.nameObj, nil
}

// Names returns registered names in registration order.
func (rr *ReprRegistry) Names() []string {
	names := make([]string, 0, len(rr.order))
	for _, id := range rr.order {
		names = append(names, rr.byID[id].repr.Name())
	}
	return names
}

// releaseRoots drops the permanent roots held for registry names.
func (rr *ReprRegistry) releaseRoots() {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	for _, e := range rr.byID {
		rr.vm.heap.RemovePermanentRoot(e.nameObj)
	}
}
