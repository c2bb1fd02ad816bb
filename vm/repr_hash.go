package vm

import "fmt"

// hashBody is the body of a VMHash instance: string-keyed, insertion
// ordered so walks over it are deterministic.
type hashBody struct {
	entries map[string]hashEntry
	order   []string
}

type hashEntry struct {
	key   *Object
	value *Object
}

// hashREPR is VMHash, the associative representation behind BOOTHash,
// method tables, method caches and namespaces.
type hashREPR struct {
	reprBase
}

func newHashREPR(vm *VM) *hashREPR {
	return &hashREPR{reprBase{vm: vm, id: ReprIDHash, name: ReprNameHash}}
}

func (r *hashREPR) TypeObjectFor(how *Object) (*Object, error) {
	return r.typeObjectFor(r, how)
}

func (r *hashREPR) Allocate(st *STable) (*Object, error) {
	return r.vm.heap.AllocateObject(st, &hashBody{})
}

// Initialize creates the entry storage.
func (r *hashREPR) Initialize(st *STable, obj *Object) error {
	body, err := instanceBody[*hashBody](obj, ReprNameHash)
	if err != nil {
		return err
	}
	if body.entries == nil {
		body.entries = make(map[string]hashEntry)
	}
	return nil
}

// body fetches and lazily initializes a hash body.
func (r *hashREPR) body(obj *Object) (*hashBody, error) {
	body, err := instanceBody[*hashBody](obj, ReprNameHash)
	if err != nil {
		return nil, err
	}
	if body.entries == nil {
		body.entries = make(map[string]hashEntry)
	}
	return body, nil
}

// BindKey stores value under key. Rebinding a key keeps its original
// position.
func (r *hashREPR) BindKey(obj, key, value *Object) error {
	body, err := r.body(obj)
	if err != nil {
		return err
	}
	k, err := hashKey(key)
	if err != nil {
		return err
	}
	if value == nil {
		return fmt.Errorf("%w: hash value for key %q", ErrMissingRequiredArgument, k)
	}
	r.vm.writeBarrier(obj, key)
	r.vm.writeBarrier(obj, value)
	if _, exists := body.entries[k]; !exists {
		body.order = append(body.order, k)
	}
	body.entries[k] = hashEntry{key: key, value: value}
	return nil
}

func (r *hashREPR) AtKey(obj, key *Object) (*Object, bool, error) {
	body, err := r.body(obj)
	if err != nil {
		return nil, false, err
	}
	k, err := hashKey(key)
	if err != nil {
		return nil, false, err
	}
	e, ok := body.entries[k]
	return e.value, ok, nil
}

func (r *hashREPR) ExistsKey(obj, key *Object) (bool, error) {
	_, ok, err := r.AtKey(obj, key)
	return ok, err
}

// Keys returns the key objects in insertion order.
func (r *hashREPR) Keys(obj *Object) ([]*Object, error) {
	body, err := r.body(obj)
	if err != nil {
		return nil, err
	}
	keys := make([]*Object, 0, len(body.order))
	for _, k := range body.order {
		keys = append(keys, body.entries[k].key)
	}
	return keys, nil
}

func (r *hashREPR) Elems(obj *Object) (int, error) {
	body, err := r.body(obj)
	if err != nil {
		return 0, err
	}
	return len(body.entries), nil
}

// atString looks up a key by Go string, for runtime-internal callers that
// have no key object at hand.
func (r *hashREPR) atString(obj *Object, k string) (*Object, bool, error) {
	body, err := r.body(obj)
	if err != nil {
		return nil, false, err
	}
	e, ok := body.entries[k]
	return e.value, ok, nil
}

// copyInto binds every entry of src into dst in src's order.
func (r *hashREPR) copyInto(dst, src *Object) error {
	srcBody, err := r.body(src)
	if err != nil {
		return err
	}
	for _, k := range srcBody.order {
		e := srcBody.entries[k]
		if err := r.BindKey(dst, e.key, e.value); err != nil {
			return err
		}
	}
	return nil
}

func hashKey(key *Object) (string, error) {
	if !IsString(key) {
		return "", wrongRepr("hash key", ReprNameString, key)
	}
	return key.body.(*stringBody).value, nil
}
