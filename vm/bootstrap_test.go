package vm

import (
	"errors"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Boot types
// ---------------------------------------------------------------------------

func TestBootTypesAreStubs(t *testing.T) {
	vm := newTestVM(t)

	tests := []struct {
		name string
		obj  *Object
		repr string
	}{
		{"BOOTStr", vm.BootTypes.BOOTStr, ReprNameString},
		{"BOOTArray", vm.BootTypes.BOOTArray, ReprNameArray},
		{"BOOTHash", vm.BootTypes.BOOTHash, ReprNameHash},
		{"BOOTCCode", vm.BootTypes.BOOTCCode, ReprNameCFunction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.obj == nil {
				t.Fatal("boot type is nil")
			}
			st := tt.obj.STable()
			if st.REPR() == nil {
				t.Fatal("REPR should be set")
			}
			if st.REPR().Name() != tt.repr {
				t.Errorf("REPR = %q, want %q", st.REPR().Name(), tt.repr)
			}
			if st.WHAT != tt.obj {
				t.Error("STable WHAT should be the type object")
			}
			if !tt.obj.IsTypeObject() {
				t.Error("boot type should be a type object")
			}
			if _, ok := tt.obj.HOW(); ok {
				t.Error("boot type should have no meta-object yet")
			}
			if st.State() != StateStub {
				t.Errorf("State = %v, want stub", st.State())
			}
			if !vm.Heap().(*Heap).IsPermanentRoot(tt.obj) {
				t.Error("boot type should be a permanent root")
			}
		})
	}
}

func TestBootTypesAreStable(t *testing.T) {
	vm := newTestVM(t)
	first := vm.BootTypes
	_, _ = vm.NewType("", "")
	if vm.BootTypes != first {
		t.Error("boot types must keep their identity")
	}
	if vm.BootTypes.BOOTStr.STable().WHAT != first.BOOTStr {
		t.Error("BOOTStr WHAT changed")
	}
}

// ---------------------------------------------------------------------------
// KnowHOW fixed point
// ---------------------------------------------------------------------------

func TestKnowHOWFixedPoint(t *testing.T) {
	vm := newTestVM(t)

	root, ok := vm.KnowHOW.HOW()
	if !ok {
		t.Fatal("KnowHOW should have a meta-object")
	}
	rootHOW, ok := root.HOW()
	if !ok {
		t.Fatal("root meta-object should have a meta-object")
	}
	if rootHOW != root {
		t.Error("root meta-object's HOW must be itself")
	}
	if root.STable() != vm.KnowHOW.STable() {
		t.Error("root and KnowHOW must share one STable")
	}
	if root.STable().WHAT != vm.KnowHOW {
		t.Error("shared STable WHAT should be KnowHOW")
	}

	// Walk a long HOW chain; it must never leave the root.
	cur := vm.KnowHOW
	for i := 0; i < 10; i++ {
		next, ok := cur.HOW()
		if !ok {
			t.Fatalf("HOW chain broke at depth %d", i)
		}
		if i > 0 && next != root {
			t.Fatalf("HOW chain left the root at depth %d", i)
		}
		cur = next
	}
}

func TestKnowHOWRootBody(t *testing.T) {
	vm := newTestVM(t)
	root, _ := vm.KnowHOW.HOW()

	if root.IsTypeObject() {
		t.Error("root meta-object should be an instance")
	}
	name, err := MetaObjectName(root)
	if err != nil {
		t.Fatalf("MetaObjectName: %v", err)
	}
	if name != "KnowHOW" {
		t.Errorf("root name = %q, want %q", name, "KnowHOW")
	}

	st := vm.KnowHOW.STable()
	if !st.Authoritative() {
		t.Error("KnowHOW method cache should be authoritative")
	}
	cache, ok := st.MethodCache()
	if !ok {
		t.Fatal("KnowHOW should have a method cache")
	}
	methods, _ := MetaObjectMethods(root)
	if cache != methods {
		t.Error("KnowHOW method cache should be the root's method table")
	}
	for _, m := range []string{MethodNewType, MethodAddMethod, MethodCompose} {
		if _, err := vm.FindMethod(vm.KnowHOW, m); err != nil {
			t.Errorf("FindMethod(KnowHOW, %q): %v", m, err)
		}
		if _, err := vm.FindMethod(root, m); err != nil {
			t.Errorf("FindMethod(root, %q): %v", m, err)
		}
	}
	if st.State() != StateComposed {
		t.Errorf("KnowHOW state = %v, want composed", st.State())
	}
}

// ---------------------------------------------------------------------------
// Plan validation
// ---------------------------------------------------------------------------

func noop(*VM) error { return nil }

func TestBootPlanIsValid(t *testing.T) {
	if err := validatePlan(bootPlan); err != nil {
		t.Fatalf("validatePlan(bootPlan): %v", err)
	}
	if bootPlan[0].name != stepStubStr {
		t.Errorf("first step = %q, want %q", bootPlan[0].name, stepStubStr)
	}
	if bootPlan[1].name != stepRegistry {
		t.Errorf("second step = %q, want %q", bootPlan[1].name, stepRegistry)
	}
}

func TestValidatePlanErrors(t *testing.T) {
	tests := []struct {
		name  string
		steps []bootStep
		want  string
	}{
		{
			name: "cycle",
			steps: []bootStep{
				{name: "a", requires: []string{"b"}, run: noop},
				{name: "b", requires: []string{"a"}, run: noop},
			},
			want: "cycle: [a, b]",
		},
		{
			name: "out of order",
			steps: []bootStep{
				{name: "a", requires: []string{"b"}, run: noop},
				{name: "b", run: noop},
			},
			want: `"a" runs before its prerequisite "b"`,
		},
		{
			name:  "unknown prerequisite",
			steps: []bootStep{{name: "a", requires: []string{"ghost"}, run: noop}},
			want:  `unknown step "ghost"`,
		},
		{
			name:  "self",
			steps: []bootStep{{name: "a", requires: []string{"a"}, run: noop}},
			want:  "requires itself",
		},
		{
			name:  "duplicate",
			steps: []bootStep{{name: "a", run: noop}, {name: "a", run: noop}},
			want:  `duplicate step "a"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePlan(tt.steps)
			if err == nil {
				t.Fatal("validatePlan should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Failure policy
// ---------------------------------------------------------------------------

func TestBootstrapFailureNamesStep(t *testing.T) {
	tests := []struct {
		maxObjects int
		step       string
	}{
		{1, stepStubStr},
		{3, stepRegistry},
	}
	for _, tt := range tests {
		t.Run(tt.step, func(t *testing.T) {
			vm, err := NewVMWithOptions(Options{MaxObjects: tt.maxObjects})
			if vm != nil {
				t.Error("failed bootstrap must not return a VM")
			}
			var be *BootstrapError
			if !errors.As(err, &be) {
				t.Fatalf("err = %v, want *BootstrapError", err)
			}
			if be.Step != tt.step {
				t.Errorf("Step = %q, want %q", be.Step, tt.step)
			}
			if !errors.Is(err, ErrAllocationFailure) {
				t.Errorf("err = %v, want it to wrap ErrAllocationFailure", err)
			}
		})
	}
}

func TestBootstrapRejectsBadDefaultRepr(t *testing.T) {
	tests := []struct {
		repr string
		want error
	}{
		{"NoSuchREPR", ErrUnknownRepresentation},
		{ReprNameKnowHOW, nil},
	}
	for _, tt := range tests {
		t.Run(tt.repr, func(t *testing.T) {
			_, err := NewVMWithOptions(Options{DefaultRepr: tt.repr})
			var be *BootstrapError
			if !errors.As(err, &be) {
				t.Fatalf("err = %v, want *BootstrapError", err)
			}
			if be.Step != stepFixedStrings {
				t.Errorf("Step = %q, want %q", be.Step, stepFixedStrings)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMustNewVMPanicsOnFailure(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("MustNewVM should panic")
		}
		if _, ok := r.(*BootstrapError); !ok {
			t.Errorf("panic value = %T, want *BootstrapError", r)
		}
	}()
	MustNewVM(Options{MaxObjects: 1})
}

func TestRunPlanStopsAtFirstFailure(t *testing.T) {
	vm := newTestVM(t)
	ran := []string{}
	boom := errors.New("boom")
	steps := []bootStep{
		{name: "one", run: func(*VM) error { ran = append(ran, "one"); return nil }},
		{name: "two", run: func(*VM) error { ran = append(ran, "two"); return boom }},
		{name: "three", run: func(*VM) error { ran = append(ran, "three"); return nil }},
	}
	err := vm.runPlan(steps)
	var be *BootstrapError
	if !errors.As(err, &be) || be.Step != "two" || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want BootstrapError for step two wrapping boom", err)
	}
	if strings.Join(ran, ",") != "one,two" {
		t.Errorf("ran = %v, want [one two]", ran)
	}
}

func TestCustomOptions(t *testing.T) {
	vm, err := NewVMWithOptions(Options{AnonName: "(anonymous)", RootName: "MetaHOW", DefaultRepr: ReprNameHash})
	if err != nil {
		t.Fatalf("NewVMWithOptions: %v", err)
	}
	defer vm.Teardown()

	root, _ := vm.KnowHOW.HOW()
	if name, _ := MetaObjectName(root); name != "MetaHOW" {
		t.Errorf("root name = %q, want %q", name, "MetaHOW")
	}
	typ, err := vm.NewType("", "")
	if err != nil {
		t.Fatalf("NewType: %v", err)
	}
	if typ.ReprName() != ReprNameHash {
		t.Errorf("default repr = %q, want %q", typ.ReprName(), ReprNameHash)
	}
	how, _ := typ.HOW()
	if name, _ := MetaObjectName(how); name != "(anonymous)" {
		t.Errorf("anon name = %q, want %q", name, "(anonymous)")
	}
}
