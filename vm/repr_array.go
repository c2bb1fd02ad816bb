package vm

import "fmt"

// arrayBody is the body of a VMArray instance.
type arrayBody struct {
	elems []*Object
}

// arrayREPR is VMArray, the positional representation behind BOOTArray.
type arrayREPR struct {
	reprBase
}

func newArrayREPR(vm *VM) *arrayREPR {
	return &arrayREPR{reprBase{vm: vm, id: ReprIDArray, name: ReprNameArray}}
}

func (r *arrayREPR) TypeObjectFor(how *Object) (*Object, error) {
	return r.typeObjectFor(r, how)
}

func (r *arrayREPR) Allocate(st *STable) (*Object, error) {
	return r.vm.heap.AllocateObject(st, &arrayBody{})
}

// Initialize clears any storage so the array starts empty.
func (r *arrayREPR) Initialize(st *STable, obj *Object) error {
	body, err := instanceBody[*arrayBody](obj, ReprNameArray)
	if err != nil {
		return err
	}
	body.elems = body.elems[:0]
	return nil
}

func (r *arrayREPR) Push(obj, value *Object) error {
	body, err := instanceBody[*arrayBody](obj, ReprNameArray)
	if err != nil {
		return err
	}
	if value == nil {
		return fmt.Errorf("%w: array element", ErrMissingRequiredArgument)
	}
	r.vm.writeBarrier(obj, value)
	body.elems = append(body.elems, value)
	return nil
}

func (r *arrayREPR) AtPos(obj *Object, index int) (*Object, error) {
	body, err := instanceBody[*arrayBody](obj, ReprNameArray)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(body.elems) {
		return nil, fmt.Errorf("array index %d out of range [0, %d)", index, len(body.elems))
	}
	return body.elems[index], nil
}

func (r *arrayREPR) Elems(obj *Object) (int, error) {
	body, err := instanceBody[*arrayBody](obj, ReprNameArray)
	if err != nil {
		return 0, err
	}
	return len(body.elems), nil
}
