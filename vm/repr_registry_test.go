package vm

import (
	"errors"
	"testing"
)

// fakeREPR is a registrable REPR that is never used to allocate.
type fakeREPR struct {
	reprBase
}

func (r *fakeREPR) TypeObjectFor(how *Object) (*Object, error) { return r.typeObjectFor(r, how) }
func (r *fakeREPR) Allocate(st *STable) (*Object, error)       { return r.vm.heap.AllocateObject(st, nil) }
func (r *fakeREPR) Initialize(st *STable, obj *Object) error   { return nil }

// unsealedRegistry returns a fresh registry on a bootstrapped VM.
func unsealedRegistry(t *testing.T) (*VM, *ReprRegistry) {
	t.Helper()
	vm := newTestVM(t)
	return vm, newReprRegistry(vm)
}

func TestRegistryBootstrapContents(t *testing.T) {
	vm := newTestVM(t)

	want := []string{
		ReprNameString,
		ReprNameArray,
		ReprNameHash,
		ReprNameCFunction,
		ReprNameKnowHOW,
		ReprNameP6opaque,
	}
	names := vm.Registry.Names()
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i, name := range names {
		if name != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, name, want[i])
		}
	}
	if !vm.Registry.Sealed() {
		t.Error("registry should be sealed after bootstrap")
	}
}

func TestRegistryStringREPRIsTheBootstrapOne(t *testing.T) {
	vm := newTestVM(t)

	r, err := vm.Registry.LookupByID(ReprIDString)
	if err != nil {
		t.Fatalf("LookupByID: %v", err)
	}
	if r != vm.BootTypes.BOOTStr.REPR() {
		t.Error("registry must hold the same VMString REPR that built BOOTStr")
	}
}

func TestRegistryLookups(t *testing.T) {
	vm := newTestVM(t)

	tests := []struct {
		id   ReprID
		name string
	}{
		{ReprIDString, ReprNameString},
		{ReprIDArray, ReprNameArray},
		{ReprIDHash, ReprNameHash},
		{ReprIDCFunction, ReprNameCFunction},
		{ReprIDKnowHOW, ReprNameKnowHOW},
		{ReprIDP6opaque, ReprNameP6opaque},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			byID, err := vm.Registry.LookupByID(tt.id)
			if err != nil {
				t.Fatalf("LookupByID: %v", err)
			}
			byName, err := vm.Registry.LookupByName(tt.name)
			if err != nil {
				t.Fatalf("LookupByName: %v", err)
			}
			if byID != byName {
				t.Error("id and name lookups should agree")
			}
			if byID.ID() != tt.id || byID.Name() != tt.name {
				t.Errorf("REPR = (%d, %q), want (%d, %q)", byID.ID(), byID.Name(), tt.id, tt.name)
			}

			nameObj, err := vm.Registry.NameObject(tt.id)
			if err != nil {
				t.Fatalf("NameObject: %v", err)
			}
			if s, _ := StringValue(nameObj); s != tt.name {
				t.Errorf("NameObject = %q, want %q", s, tt.name)
			}
			byObj, err := vm.Registry.LookupByNameObject(nameObj)
			if err != nil {
				t.Fatalf("LookupByNameObject: %v", err)
			}
			if byObj != byID {
				t.Error("name object lookup should agree")
			}
		})
	}
}

func TestRegistryUnknown(t *testing.T) {
	vm := newTestVM(t)

	if _, err := vm.Registry.LookupByID(ReprID(99)); !errors.Is(err, ErrUnknownRepresentation) {
		t.Errorf("LookupByID(99) err = %v, want ErrUnknownRepresentation", err)
	}
	if _, err := vm.Registry.LookupByName("NoSuchREPR"); !errors.Is(err, ErrUnknownRepresentation) {
		t.Errorf("LookupByName err = %v, want ErrUnknownRepresentation", err)
	}
	if _, err := vm.Registry.LookupByNameObject(vm.BootTypes.BOOTHash); !errors.Is(err, ErrTypeObject) {
		t.Errorf("LookupByNameObject(type object) err = %v, want ErrTypeObject", err)
	}
}

func TestRegistryDuplicateRegistration(t *testing.T) {
	vm, rr := unsealedRegistry(t)

	first := &fakeREPR{reprBase{vm: vm, id: 100, name: "Fake"}}
	if err := rr.Register(first); err != nil {
		t.Fatalf("Register: %v", err)
	}

	sameID := &fakeREPR{reprBase{vm: vm, id: 100, name: "Other"}}
	if err := rr.Register(sameID); !errors.Is(err, ErrDuplicateRegistration) {
		t.Errorf("same id err = %v, want ErrDuplicateRegistration", err)
	}
	sameName := &fakeREPR{reprBase{vm: vm, id: 101, name: "Fake"}}
	if err := rr.Register(sameName); !errors.Is(err, ErrDuplicateRegistration) {
		t.Errorf("same name err = %v, want ErrDuplicateRegistration", err)
	}

	got, err := rr.LookupByID(100)
	if err != nil {
		t.Fatalf("LookupByID: %v", err)
	}
	if got != first {
		t.Error("failed registration must not replace the original")
	}
	if _, err := rr.LookupByName("Other"); !errors.Is(err, ErrUnknownRepresentation) {
		t.Error("failed registration must not leave a name behind")
	}
}

func TestRegistrySealed(t *testing.T) {
	vm, rr := unsealedRegistry(t)
	rr.Seal()

	err := rr.Register(&fakeREPR{reprBase{vm: vm, id: 100, name: "Late"}})
	if !errors.Is(err, ErrRegistrySealed) {
		t.Errorf("Register after Seal err = %v, want ErrRegistrySealed", err)
	}
}

func TestRegistryNamesArePermanentRoots(t *testing.T) {
	vm := newTestVM(t)
	heap := vm.Heap().(*Heap)

	nameObj, err := vm.Registry.NameObject(ReprIDHash)
	if err != nil {
		t.Fatalf("NameObject: %v", err)
	}
	if !heap.IsPermanentRoot(nameObj) {
		t.Error("registry name should be a permanent root")
	}
}
