package vm

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ---------------------------------------------------------------------------
// Bootstrap plan
// ---------------------------------------------------------------------------

// bootStep is one step of the object model bootstrap. A step may only read
// state produced by the steps it requires.
type bootStep struct {
	name     string
	requires []string
	run      func(vm *VM) error
}

// Step names.
const (
	stepStubStr       = "stub BOOTStr"
	stepRegistry      = "repr registry"
	stepStubArray     = "stub BOOTArray"
	stepStubHash      = "stub BOOTHash"
	stepStubCCode     = "stub BOOTCCode"
	stepFixedStrings  = "fixed strings"
	stepKnowHOW       = "KnowHOW"
	stepKnowHOWMethod = "KnowHOW methods"
	stepSeal          = "seal registry"
)

// bootPlan is the fixed bootstrap order. BOOTStr comes first because the
// registry names its entries with strings.
var bootPlan = []bootStep{
	{name: stepStubStr, run: (*VM).createStubBOOTStr},
	{name: stepRegistry, requires: []string{stepStubStr}, run: (*VM).initializeRegistry},
	{name: stepStubArray, requires: []string{stepRegistry}, run: (*VM).createStubBOOTArray},
	{name: stepStubHash, requires: []string{stepRegistry}, run: (*VM).createStubBOOTHash},
	{name: stepStubCCode, requires: []string{stepRegistry}, run: (*VM).createStubBOOTCCode},
	{name: stepFixedStrings, requires: []string{stepStubStr, stepRegistry}, run: (*VM).setupFixedStrings},
	{name: stepKnowHOW, requires: []string{stepRegistry, stepStubHash, stepFixedStrings}, run: (*VM).bootstrapKnowHOW},
	{name: stepKnowHOWMethod, requires: []string{stepKnowHOW, stepStubCCode, stepFixedStrings}, run: (*VM).addKnowHOWMethods},
	{name: stepSeal, requires: []string{stepKnowHOWMethod}, run: (*VM).sealRegistry},
}

var (
	bootPlanOnce sync.Once
	bootPlanErr  error
)

// validatePlan checks that steps have no dependency cycle and that the
// sequence runs every prerequisite before its dependants.
func validatePlan(steps []bootStep) error {
	index := make(map[string]int, len(steps))
	for i, s := range steps {
		if _, dup := index[s.name]; dup {
			return fmt.Errorf("duplicate step %q", s.name)
		}
		index[s.name] = i
	}

	g := simple.NewDirectedGraph()
	for i := range steps {
		g.AddNode(simple.Node(i))
	}
	for i, s := range steps {
		for _, req := range s.requires {
			j, ok := index[req]
			if !ok {
				return fmt.Errorf("step %q requires unknown step %q", s.name, req)
			}
			if j == i {
				return fmt.Errorf("step %q requires itself", s.name)
			}
			g.SetEdge(g.NewEdge(simple.Node(j), simple.Node(i)))
		}
	}

	// The position check below rejects cycles too; sorting first names them.
	if _, err := topo.Sort(g); err != nil {
		var cycles topo.Unorderable
		if errors.As(err, &cycles) {
			var parts []string
			for _, component := range cycles {
				names := make([]string, 0, len(component))
				for _, n := range component {
					names = append(names, steps[n.ID()].name)
				}
				sort.Strings(names)
				parts = append(parts, "["+strings.Join(names, ", ")+"]")
			}
			return fmt.Errorf("bootstrap steps form a cycle: %s", strings.Join(parts, " "))
		}
		return err
	}

	for i, s := range steps {
		for _, req := range s.requires {
			if index[req] > i {
				return fmt.Errorf("step %q runs before its prerequisite %q", s.name, req)
			}
		}
	}
	return nil
}

// bootstrap runs the plan. Every step must succeed; the first failure is
// returned as a *BootstrapError and nothing after it runs.
func (vm *VM) bootstrap() error {
	bootPlanOnce.Do(func() { bootPlanErr = validatePlan(bootPlan) })
	if bootPlanErr != nil {
		return &BootstrapError{Step: "plan", Err: bootPlanErr}
	}
	return vm.runPlan(bootPlan)
}

func (vm *VM) runPlan(steps []bootStep) error {
	for _, step := range steps {
		log.Debug("bootstrap step", "vm", vm.ID.String(), "step", step.name)
		if err := step.run(vm); err != nil {
			return &BootstrapError{Step: step.name, Err: err}
		}
	}
	log.Info("object model bootstrapped", "vm", vm.ID.String(), "reprs", strings.Join(vm.Registry.Names(), ","))
	return nil
}

// ---------------------------------------------------------------------------
// Steps
// ---------------------------------------------------------------------------

// createStubBOOTStr builds VMString and BOOTStr by hand; the registry does
// not exist yet. The registry later registers this same REPR value.
func (vm *VM) createStubBOOTStr() error {
	vm.reprString = newStringREPR(vm)
	st, err := vm.heap.AllocateSTable(vm.reprString, nil)
	if err != nil {
		return err
	}
	obj, err := vm.heap.AllocateTypeObject(st)
	if err != nil {
		return err
	}
	vm.writeBarrier(st, obj)
	st.WHAT = obj
	vm.BootTypes.BOOTStr = obj
	vm.heap.AddPermanentRoot(obj)
	return nil
}

func (vm *VM) initializeRegistry() error {
	vm.reprArray = newArrayREPR(vm)
	vm.reprHash = newHashREPR(vm)
	vm.reprCFunction = newCFunctionREPR(vm)
	vm.reprKnowHOW = newKnowHOWREPR(vm)
	vm.reprOpaque = newOpaqueREPR(vm)

	vm.Registry = newReprRegistry(vm)
	for _, r := range []REPR{
		vm.reprString,
		vm.reprArray,
		vm.reprHash,
		vm.reprCFunction,
		vm.reprKnowHOW,
		vm.reprOpaque,
	} {
		if err := vm.Registry.Register(r); err != nil {
			return err
		}
	}
	return nil
}

// createStubType makes a type object with no meta-object for the REPR
// registered under id.
func (vm *VM) createStubType(id ReprID) (*Object, error) {
	repr, err := vm.Registry.LookupByID(id)
	if err != nil {
		return nil, err
	}
	obj, err := repr.TypeObjectFor(nil)
	if err != nil {
		return nil, err
	}
	vm.heap.AddPermanentRoot(obj)
	return obj, nil
}

func (vm *VM) createStubBOOTArray() (err error) {
	vm.BootTypes.BOOTArray, err = vm.createStubType(ReprIDArray)
	return err
}

func (vm *VM) createStubBOOTHash() (err error) {
	vm.BootTypes.BOOTHash, err = vm.createStubType(ReprIDHash)
	return err
}

func (vm *VM) createStubBOOTCCode() (err error) {
	vm.BootTypes.BOOTCCode, err = vm.createStubType(ReprIDCFunction)
	return err
}

// setupFixedStrings interns the strings runtime code holds directly.
func (vm *VM) setupFixedStrings() error {
	repr, err := vm.Registry.LookupByName(vm.opts.DefaultRepr)
	if err != nil {
		return fmt.Errorf("default representation: %w", err)
	}
	if repr.ID() == ReprIDKnowHOW {
		return fmt.Errorf("default representation cannot be %s: it stores no attributes", ReprNameKnowHOW)
	}

	for _, f := range []struct {
		dst   **Object
		value string
	}{
		{&vm.Strings.Repr, "repr"},
		{&vm.Strings.Name, "name"},
		{&vm.Strings.Anon, vm.opts.AnonName},
		{&vm.Strings.DefaultRepr, vm.opts.DefaultRepr},
		{&vm.Strings.RootName, vm.opts.RootName},
	} {
		obj, err := vm.Interned.Intern(f.value)
		if err != nil {
			return fmt.Errorf("intern %q: %w", f.value, err)
		}
		*f.dst = obj
	}
	return nil
}

// bootstrapKnowHOW creates the KnowHOW type and the meta-object that
// describes it, then ties the knot so KnowHOW.HOW.HOW... is always the
// same object.
func (vm *VM) bootstrapKnowHOW() error {
	repr, err := vm.Registry.LookupByID(ReprIDKnowHOW)
	if err != nil {
		return err
	}

	// No HOW exists yet.
	knowhow, err := repr.TypeObjectFor(nil)
	if err != nil {
		return err
	}

	// The root meta-object, allocated before any STable can describe it.
	root, err := repr.Allocate(nil)
	if err != nil {
		return err
	}

	// One STable shared by the type object and the root: WHAT is the
	// type object, HOW is the root, and the root's STable is this one.
	st, err := vm.heap.AllocateSTable(repr, root)
	if err != nil {
		return err
	}
	vm.writeBarrier(st, knowhow)
	st.WHAT = knowhow
	vm.heap.WriteBarrier(root, st)
	root.attachSTable(st)
	vm.heap.WriteBarrier(knowhow, st)
	knowhow.attachSTable(st)

	if err := repr.Initialize(st, root); err != nil {
		return err
	}
	if err := vm.reprKnowHOW.setName(root, vm.Strings.RootName); err != nil {
		return err
	}

	// An authoritative cache makes dispatch on KnowHOW bottom out here.
	// It is the root's own method table, so methods added to the root are
	// immediately dispatchable.
	methods, err := MetaObjectMethods(root)
	if err != nil {
		return err
	}
	vm.writeBarrier(st, methods)
	st.methodCache = methods
	st.modeFlags = MethodCacheAuthoritative

	vm.KnowHOW = knowhow
	vm.heap.AddPermanentRoot(knowhow)
	log.Debug("KnowHOW fixed point", "vm", vm.ID.String(), "root", root.serial, "stable", st.serial)
	return nil
}

// addKnowHOWMethods installs new_type, add_method and compose on the root
// meta-object.
func (vm *VM) addKnowHOWMethods() error {
	root, ok := vm.KnowHOW.HOW()
	if !ok {
		return errors.New("KnowHOW has no meta-object")
	}
	methods, err := MetaObjectMethods(root)
	if err != nil {
		return err
	}
	for _, m := range []struct {
		name string
		fn   CFunc
	}{
		{MethodNewType, knowhowNewType},
		{MethodAddMethod, knowhowAddMethod},
		{MethodCompose, knowhowCompose},
	} {
		code, err := vm.NewCFunction(m.name, m.fn)
		if err != nil {
			return err
		}
		name, err := vm.Interned.Intern(m.name)
		if err != nil {
			return err
		}
		if err := vm.reprHash.BindKey(methods, name, code); err != nil {
			return err
		}
	}
	return nil
}

func (vm *VM) sealRegistry() error {
	vm.Registry.Seal()
	return nil
}
