package vm

import "fmt"

// stringBody is the body of a VMString instance. Strings are immutable;
// the value is fixed when the string is decoded.
type stringBody struct {
	value string
}

// stringREPR is VMString. The bootstrap builds it before the registry
// exists, and the registry later registers this same value.
type stringREPR struct {
	reprBase
}

func newStringREPR(vm *VM) *stringREPR {
	return &stringREPR{reprBase{vm: vm, id: ReprIDString, name: ReprNameString}}
}

func (r *stringREPR) TypeObjectFor(how *Object) (*Object, error) {
	return r.typeObjectFor(r, how)
}

func (r *stringREPR) Allocate(st *STable) (*Object, error) {
	return r.vm.heap.AllocateObject(st, &stringBody{})
}

func (r *stringREPR) Initialize(st *STable, obj *Object) error {
	return nil
}

// DecodeString decodes a fixed byte sequence into a new immutable VMString
// of type BOOTStr.
func (vm *VM) DecodeString(b []byte) (*Object, error) {
	boot := vm.BootTypes.BOOTStr
	if boot == nil {
		return nil, fmt.Errorf("%w: BOOTStr does not exist yet", ErrUnknownRepresentation)
	}
	return vm.heap.AllocateObject(boot.st, &stringBody{value: string(b)})
}

// DecodeASCII decodes an ASCII string literal into a VMString. Bytes
// outside 7-bit ASCII are rejected.
func (vm *VM) DecodeASCII(s string) (*Object, error) {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return nil, fmt.Errorf("decode ascii %q: non-ASCII byte 0x%02x at offset %d", s, s[i], i)
		}
	}
	return vm.DecodeString([]byte(s))
}

// StringValue returns the Go string held by a VMString instance.
func StringValue(obj *Object) (string, error) {
	body, err := instanceBody[*stringBody](obj, ReprNameString)
	if err != nil {
		return "", err
	}
	return body.value, nil
}

// IsString reports whether obj is a VMString instance.
func IsString(obj *Object) bool {
	if obj == nil || obj.typeObject {
		return false
	}
	_, ok := obj.body.(*stringBody)
	return ok
}
