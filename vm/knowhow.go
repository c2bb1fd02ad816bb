package vm

import "fmt"

// Method names the KnowHOW answers to.
const (
	MethodNewType   = "new_type"
	MethodAddMethod = "add_method"
	MethodCompose   = "compose"
)

// ---------------------------------------------------------------------------
// KnowHOW methods
// ---------------------------------------------------------------------------

// knowhowNewType creates a new type whose meta-object is a fresh KnowHOW
// instance. Named arguments: repr (default P6opaque), name (default <anon>).
func knowhowNewType(vm *VM, args *Args) (*Object, error) {
	self, err := args.PosObj(0, true)
	if err != nil {
		return nil, err
	}
	reprArg, err := args.NamedStr(vm.Strings.Repr, false)
	if err != nil {
		return nil, err
	}
	nameArg, err := args.NamedStr(vm.Strings.Name, false)
	if err != nil {
		return nil, err
	}
	if self.st == nil || self.st.repr.ID() != ReprIDKnowHOW {
		return nil, wrongRepr("new_type invocant", ReprNameKnowHOW, self)
	}

	// KnowHOWREPR is never the default: it cannot store attributes.
	reprName := reprArg
	if reprName == nil {
		reprName = vm.Strings.DefaultRepr
	}
	reprToUse, err := vm.Registry.LookupByNameObject(reprName)
	if err != nil {
		return nil, err
	}

	how, err := self.st.repr.Allocate(self.st)
	if err != nil {
		return nil, err
	}
	if err := self.st.repr.Initialize(self.st, how); err != nil {
		return nil, err
	}
	name := nameArg
	if name == nil {
		name = vm.Strings.Anon
	}
	if err := vm.knowhowREPR().setName(how, name); err != nil {
		return nil, err
	}

	typeObj, err := reprToUse.TypeObjectFor(how)
	if err != nil {
		return nil, err
	}

	stash, err := vm.newHash()
	if err != nil {
		return nil, err
	}
	vm.writeBarrier(typeObj.st, stash)
	typeObj.st.who = stash

	log.Debug("new type", "vm", vm.ID.String(), "repr", reprToUse.Name(), "how", how.serial)
	return typeObj, nil
}

// knowhowAddMethod binds (name, code) into the invocant's method table and
// returns code. Every argument is checked before the table is touched.
func knowhowAddMethod(vm *VM, args *Args) (*Object, error) {
	self, err := args.PosObj(0, true)
	if err != nil {
		return nil, err
	}
	typeObj, err := args.PosObj(1, true)
	if err != nil {
		return nil, err
	}
	if !typeObj.typeObject {
		return nil, fmt.Errorf("add_method: %w: positional 1 must be a type object", ErrWrongRepresentation)
	}
	name, err := args.PosStr(2, true)
	if err != nil {
		return nil, err
	}
	code, err := args.PosObj(3, true)
	if err != nil {
		return nil, err
	}
	methods, err := MetaObjectMethods(self)
	if err != nil {
		return nil, err
	}
	if err := vm.hashREPR().BindKey(methods, name, code); err != nil {
		return nil, err
	}
	return code, nil
}

// knowhowCompose freezes the invocant's method table into the type's
// STable: a copied, authoritative method cache and a type check cache
// holding only the type itself.
func knowhowCompose(vm *VM, args *Args) (*Object, error) {
	self, err := args.PosObj(0, true)
	if err != nil {
		return nil, err
	}
	typeObj, err := args.PosObj(1, true)
	if err != nil {
		return nil, err
	}
	if typeObj.st == nil {
		return nil, fmt.Errorf("compose: %w: type has no STable", ErrMissingRequiredArgument)
	}
	if !typeObj.typeObject {
		return nil, fmt.Errorf("compose: %w: %s instance is not a type object", ErrWrongRepresentation, typeObj.ReprName())
	}
	// Only the meta-object describing the type may compose it.
	if how, ok := typeObj.st.HOW(); !ok || how != self {
		return nil, fmt.Errorf("compose: %w: %s type is not described by this meta-object", ErrWrongRepresentation, typeObj.ReprName())
	}
	methods, err := MetaObjectMethods(self)
	if err != nil {
		return nil, err
	}

	cache, err := vm.newHash()
	if err != nil {
		return nil, err
	}
	if err := vm.hashREPR().copyInto(cache, methods); err != nil {
		return nil, err
	}

	st := typeObj.st
	vm.writeBarrier(st, cache)
	vm.writeBarrier(st, typeObj)
	st.methodCache = cache
	st.modeFlags |= MethodCacheAuthoritative
	st.typeCheckCache = []*Object{typeObj}
	return typeObj, nil
}

// ---------------------------------------------------------------------------
// Go-level entry points
// ---------------------------------------------------------------------------

// NewType asks the KnowHOW for a new type. Empty reprName or name select
// the defaults.
func (vm *VM) NewType(reprName, name string) (*Object, error) {
	args := &Args{}
	if reprName != "" {
		s, err := vm.DecodeASCII(reprName)
		if err != nil {
			return nil, err
		}
		args = args.WithNamed("repr", s)
	}
	if name != "" {
		s, err := vm.DecodeString([]byte(name))
		if err != nil {
			return nil, err
		}
		args = args.WithNamed("name", s)
	}
	return vm.CallMethod(vm.KnowHOW, MethodNewType, args)
}

// AddMethod adds code under name to typ's meta-object.
func (vm *VM) AddMethod(typ *Object, name string, code *Object) (*Object, error) {
	how, ok := typ.HOW()
	if !ok {
		return nil, fmt.Errorf("add_method: %w: type has no meta-object", ErrMissingRequiredArgument)
	}
	nameObj, err := vm.DecodeString([]byte(name))
	if err != nil {
		return nil, err
	}
	return vm.CallMethod(how, MethodAddMethod, NewArgs(typ, nameObj, code))
}

// Compose composes typ through its meta-object.
func (vm *VM) Compose(typ *Object) (*Object, error) {
	how, ok := typ.HOW()
	if !ok {
		return nil, fmt.Errorf("compose: %w: type has no meta-object", ErrMissingRequiredArgument)
	}
	return vm.CallMethod(how, MethodCompose, NewArgs(typ))
}
