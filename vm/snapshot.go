package vm

import (
	"crypto/sha256"
	"fmt"
	"io"
	"sort"

	"github.com/fxamacker/cbor/v2"
)

// ---------------------------------------------------------------------------
// Snapshot: address-free view of the descriptor graph
// ---------------------------------------------------------------------------

// Snapshot records the object graph reachable from a VM's roots with
// objects and STables numbered in discovery order, so two VMs built the
// same way produce equal snapshots. A reference of -1 means absent.
type Snapshot struct {
	Roots   []RootRecord   `cbor:"1,keyasint"`
	STables []STableRecord `cbor:"2,keyasint"`
	Objects []ObjectRecord `cbor:"3,keyasint"`
}

// RootRecord names a root object.
type RootRecord struct {
	Name   string `cbor:"1,keyasint"`
	Object int    `cbor:"2,keyasint"`
}

// STableRecord describes one STable.
type STableRecord struct {
	Repr          string `cbor:"1,keyasint"`
	WHAT          int    `cbor:"2,keyasint"`
	HOW           int    `cbor:"3,keyasint"`
	WHO           int    `cbor:"4,keyasint"`
	MethodCache   int    `cbor:"5,keyasint"`
	Authoritative bool   `cbor:"6,keyasint"`
	TypeCheck     []int  `cbor:"7,keyasint"`
	State         string `cbor:"8,keyasint"`
}

// ObjectRecord describes one object. Which fields are set depends on the
// object's representation.
type ObjectRecord struct {
	STable     int      `cbor:"1,keyasint"`
	TypeObject bool     `cbor:"2,keyasint"`
	Repr       string   `cbor:"3,keyasint"`
	Str        string   `cbor:"4,keyasint,omitempty"`
	Keys       []string `cbor:"5,keyasint,omitempty"`
	Refs       []int    `cbor:"6,keyasint,omitempty"`
}

var snapshotEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	snapshotEncMode = em
}

// Encode serializes the snapshot as canonical CBOR.
func (s *Snapshot) Encode() ([]byte, error) {
	return snapshotEncMode.Marshal(s)
}

// DecodeSnapshot parses a snapshot produced by Encode.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("vm: unmarshal snapshot: %w", err)
	}
	return &s, nil
}

// Digest returns the SHA-256 of the canonical encoding.
func (s *Snapshot) Digest() ([32]byte, error) {
	data, err := s.Encode()
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(data), nil
}

// Dump writes a human-readable listing.
func (s *Snapshot) Dump(w io.Writer) error {
	for _, r := range s.Roots {
		if _, err := fmt.Fprintf(w, "root %-12s -> o%d\n", r.Name, r.Object); err != nil {
			return err
		}
	}
	for i, st := range s.STables {
		if _, err := fmt.Fprintf(w, "st%-3d %-12s %-9s WHAT=%s HOW=%s WHO=%s cache=%s auth=%t typecheck=%v\n",
			i, st.Repr, st.State, ref("o", st.WHAT), ref("o", st.HOW), ref("o", st.WHO),
			ref("o", st.MethodCache), st.Authoritative, st.TypeCheck); err != nil {
			return err
		}
	}
	for i, o := range s.Objects {
		kind := "instance"
		if o.TypeObject {
			kind = "type"
		}
		if _, err := fmt.Fprintf(w, "o%-4d %-8s %-12s st%d", i, kind, o.Repr, o.STable); err != nil {
			return err
		}
		if o.Str != "" {
			if _, err := fmt.Fprintf(w, " %q", o.Str); err != nil {
				return err
			}
		}
		if len(o.Keys) > 0 {
			if _, err := fmt.Fprintf(w, " keys=%v", o.Keys); err != nil {
				return err
			}
		}
		if len(o.Refs) > 0 {
			if _, err := fmt.Fprintf(w, " refs=%v", o.Refs); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

func ref(prefix string, i int) string {
	if i < 0 {
		return "-"
	}
	return fmt.Sprintf("%s%d", prefix, i)
}

// Snapshot walks the graph from the boot types, KnowHOW and the fixed
// strings.
func (vm *VM) Snapshot() *Snapshot {
	return vm.SnapshotFrom(nil)
}

// SnapshotFrom walks the graph from the standard roots followed by extra,
// in name order.
func (vm *VM) SnapshotFrom(extra map[string]*Object) *Snapshot {
	w := &snapshotWalker{
		snap:  &Snapshot{},
		objs:  make(map[*Object]int),
		stabs: make(map[*STable]int),
	}
	for _, r := range []struct {
		name string
		obj  *Object
	}{
		{"BOOTStr", vm.BootTypes.BOOTStr},
		{"BOOTArray", vm.BootTypes.BOOTArray},
		{"BOOTHash", vm.BootTypes.BOOTHash},
		{"BOOTCCode", vm.BootTypes.BOOTCCode},
		{"KnowHOW", vm.KnowHOW},
		{"repr", vm.Strings.Repr},
		{"name", vm.Strings.Name},
		{"anon", vm.Strings.Anon},
		{"default-repr", vm.Strings.DefaultRepr},
		{"root-name", vm.Strings.RootName},
	} {
		w.root(r.name, r.obj)
	}

	names := make([]string, 0, len(extra))
	for name := range extra {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w.root(name, extra[name])
	}

	w.drain()
	return w.snap
}

type snapshotWalker struct {
	snap  *Snapshot
	objs  map[*Object]int
	stabs map[*STable]int
	queue []*Object
}

func (w *snapshotWalker) root(name string, obj *Object) {
	w.snap.Roots = append(w.snap.Roots, RootRecord{Name: name, Object: w.object(obj)})
}

// object numbers obj on first sight and queues it for recording.
func (w *snapshotWalker) object(obj *Object) int {
	if obj == nil {
		return -1
	}
	if i, ok := w.objs[obj]; ok {
		return i
	}
	i := len(w.objs)
	w.objs[obj] = i
	w.queue = append(w.queue, obj)
	return i
}

func (w *snapshotWalker) drain() {
	for len(w.queue) > 0 {
		obj := w.queue[0]
		w.queue = w.queue[1:]
		w.snap.Objects = append(w.snap.Objects, w.record(obj))
	}
}

// stable numbers and records st on first sight.
func (w *snapshotWalker) stable(st *STable) int {
	if st == nil {
		return -1
	}
	if i, ok := w.stabs[st]; ok {
		return i
	}
	i := len(w.snap.STables)
	w.stabs[st] = i
	w.snap.STables = append(w.snap.STables, STableRecord{})

	rec := STableRecord{
		Repr:          st.repr.Name(),
		WHAT:          w.object(st.WHAT),
		HOW:           w.object(st.how),
		WHO:           w.object(st.who),
		MethodCache:   w.object(st.methodCache),
		Authoritative: st.Authoritative(),
		State:         st.State().String(),
	}
	for _, t := range st.typeCheckCache {
		rec.TypeCheck = append(rec.TypeCheck, w.object(t))
	}
	w.snap.STables[i] = rec
	return i
}

func (w *snapshotWalker) record(obj *Object) ObjectRecord {
	rec := ObjectRecord{
		STable:     w.stable(obj.st),
		TypeObject: obj.typeObject,
		Repr:       obj.ReprName(),
	}
	switch body := obj.body.(type) {
	case *stringBody:
		rec.Str = body.value
	case *hashBody:
		for _, k := range body.order {
			e := body.entries[k]
			rec.Keys = append(rec.Keys, k)
			rec.Refs = append(rec.Refs, w.object(e.key), w.object(e.value))
		}
	case *arrayBody:
		for _, e := range body.elems {
			rec.Refs = append(rec.Refs, w.object(e))
		}
	case *knowhowBody:
		rec.Refs = []int{w.object(body.name), w.object(body.methods)}
	case *cfunctionBody:
		rec.Str = body.name
	case *opaqueBody:
		names := make([]string, 0, len(body.attrs))
		for name := range body.attrs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			rec.Keys = append(rec.Keys, name)
			rec.Refs = append(rec.Refs, w.object(body.attrs[name]))
		}
	}
	return rec
}
