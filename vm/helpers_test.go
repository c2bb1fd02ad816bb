package vm

import "testing"

// newTestVM bootstraps a VM and tears it down when the test ends.
func newTestVM(t *testing.T) *VM {
	t.Helper()
	vm, err := NewVM()
	if err != nil {
		t.Fatalf("NewVM: %v", err)
	}
	t.Cleanup(vm.Teardown)
	return vm
}

// str decodes s or fails the test.
func str(t *testing.T, vm *VM, s string) *Object {
	t.Helper()
	obj, err := vm.DecodeString([]byte(s))
	if err != nil {
		t.Fatalf("DecodeString(%q): %v", s, err)
	}
	return obj
}

// constMethod returns a code object that answers result.
func constMethod(t *testing.T, vm *VM, name string, result *Object) *Object {
	t.Helper()
	code, err := vm.NewCFunction(name, Method1(func(vm *VM, self *Object) (*Object, error) {
		return result, nil
	}))
	if err != nil {
		t.Fatalf("NewCFunction(%q): %v", name, err)
	}
	return code
}
