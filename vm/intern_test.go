package vm

import "testing"

func TestInternReturnsSameObject(t *testing.T) {
	vm := newTestVM(t)

	a, err := vm.Interned.Intern("repr")
	if err != nil {
		t.Fatalf("Intern: %v", err)
	}
	b, err := vm.Interned.Intern("repr")
	if err != nil {
		t.Fatalf("Intern: %v", err)
	}
	if a != b {
		t.Error("interning the same value twice must return the same object")
	}
	if a != vm.Strings.Repr {
		t.Error("interned \"repr\" must be the fixed string held by the VM")
	}
	looked, ok := vm.Interned.Lookup("repr")
	if !ok || looked != a {
		t.Error("Lookup should return the interned object")
	}
}

func TestInternedStringsArePermanentRoots(t *testing.T) {
	vm := newTestVM(t)
	heap := vm.Heap().(*Heap)

	for _, obj := range []*Object{
		vm.Strings.Repr,
		vm.Strings.Name,
		vm.Strings.Anon,
		vm.Strings.DefaultRepr,
		vm.Strings.RootName,
	} {
		if !heap.IsPermanentRoot(obj) {
			s, _ := StringValue(obj)
			t.Errorf("fixed string %q should be a permanent root", s)
		}
	}
}

func TestFixedStringValues(t *testing.T) {
	vm := newTestVM(t)

	tests := []struct {
		obj  *Object
		want string
	}{
		{vm.Strings.Repr, "repr"},
		{vm.Strings.Name, "name"},
		{vm.Strings.Anon, "<anon>"},
		{vm.Strings.DefaultRepr, "P6opaque"},
		{vm.Strings.RootName, "KnowHOW"},
	}
	for _, tt := range tests {
		if got, _ := StringValue(tt.obj); got != tt.want {
			t.Errorf("fixed string = %q, want %q", got, tt.want)
		}
	}
}

func TestInternLookupMiss(t *testing.T) {
	vm := newTestVM(t)
	before := vm.Interned.Len()
	if _, ok := vm.Interned.Lookup("never-interned"); ok {
		t.Error("Lookup should miss for a value never interned")
	}
	if vm.Interned.Len() != before {
		t.Error("Lookup must not intern")
	}
}

func TestTeardownReleasesPermanentRoots(t *testing.T) {
	vm, err := NewVM()
	if err != nil {
		t.Fatalf("NewVM: %v", err)
	}
	heap := vm.Heap().(*Heap)
	if heap.Stats().PermanentRoots == 0 {
		t.Fatal("bootstrap should register permanent roots")
	}

	vm.Teardown()
	if n := heap.Stats().PermanentRoots; n != 0 {
		t.Errorf("PermanentRoots after Teardown = %d, want 0", n)
	}
	vm.Teardown()
}
