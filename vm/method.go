package vm

import "fmt"

// CFunc is a Go function callable through method dispatch. The invocant,
// when there is one, is positional 0.
type CFunc func(vm *VM, args *Args) (*Object, error)

// Method1Func takes only the invocant.
type Method1Func func(vm *VM, self *Object) (*Object, error)

// Method2Func takes the invocant and one argument.
type Method2Func func(vm *VM, self, arg1 *Object) (*Object, error)

// Method3Func takes the invocant and two arguments.
type Method3Func func(vm *VM, self, arg1, arg2 *Object) (*Object, error)

// ---------------------------------------------------------------------------
// Arity-checked wrappers
// ---------------------------------------------------------------------------

// Method1 adapts fn to a CFunc requiring exactly the invocant.
func Method1(fn Method1Func) CFunc {
	return func(vm *VM, args *Args) (*Object, error) {
		if err := wantPositionals(args, 1); err != nil {
			return nil, err
		}
		return fn(vm, args.Pos[0])
	}
}

// Method2 adapts fn to a CFunc requiring the invocant and one argument.
func Method2(fn Method2Func) CFunc {
	return func(vm *VM, args *Args) (*Object, error) {
		if err := wantPositionals(args, 2); err != nil {
			return nil, err
		}
		return fn(vm, args.Pos[0], args.Pos[1])
	}
}

// Method3 adapts fn to a CFunc requiring the invocant and two arguments.
func Method3(fn Method3Func) CFunc {
	return func(vm *VM, args *Args) (*Object, error) {
		if err := wantPositionals(args, 3); err != nil {
			return nil, err
		}
		return fn(vm, args.Pos[0], args.Pos[1], args.Pos[2])
	}
}

func wantPositionals(args *Args, n int) error {
	for i := 0; i < n; i++ {
		if _, err := args.PosObj(i, true); err != nil {
			return err
		}
	}
	if len(args.Pos) > n {
		return fmt.Errorf("too many positionals: got %d, want %d", len(args.Pos), n)
	}
	return nil
}
