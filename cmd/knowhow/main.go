// knowhow CLI - bootstraps the object model and reports on the result
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/knowhow/config"
	"github.com/chazu/knowhow/vm"
)

var log = commonlog.GetLogger("knowhow")

func main() {
	configDir := flag.String("config", ".", "Directory to search upward from for knowhow.toml")
	verbosity := flag.Int("v", -1, "Log verbosity (overrides log.verbosity; 0 = errors only)")
	logFile := flag.String("log", "", "Log file (overrides log.file; default stderr)")
	dump := flag.Bool("dump", false, "Print the bootstrapped object graph")
	digest := flag.Bool("digest", false, "Print the SHA-256 of the canonical snapshot")
	demo := flag.Bool("demo", false, "Build, compose and call a small type after bootstrap")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: knowhow [options]\n\n")
		fmt.Fprintf(os.Stderr, "Bootstraps the KnowHOW object model and reports on it.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  knowhow -dump              # Show every boot object and STable\n")
		fmt.Fprintf(os.Stderr, "  knowhow -digest            # Fingerprint the bootstrap\n")
		fmt.Fprintf(os.Stderr, "  knowhow -demo -v 2         # Build a type with info logging\n")
	}
	flag.Parse()

	cfg, err := config.FindAndLoad(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := cfg.Log.Verbosity
	if *verbosity >= 0 {
		level = *verbosity
	}
	var path *string
	if *logFile != "" {
		path = logFile
	} else if cfg.Log.File != "" {
		path = &cfg.Log.File
	}
	commonlog.Configure(level, path)

	machine, err := vm.NewVMWithOptions(cfg.Options())
	if err != nil {
		log.Critical("cannot start", "error", err.Error())
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer machine.Teardown()

	if *demo {
		if err := runDemo(machine); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	snap := machine.Snapshot()
	if *dump {
		if err := snap.Dump(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if *digest {
		sum, err := snap.Digest()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hex.EncodeToString(sum[:]))
	}
	if !*dump && !*digest && !*demo {
		fmt.Printf("bootstrapped %s: %d representations\n", machine.ID, len(machine.Registry.Names()))
	}
}

// runDemo creates a type with one method, composes it and calls the method
// on a fresh instance.
func runDemo(machine *vm.VM) error {
	typ, err := machine.NewType("", "Greeter")
	if err != nil {
		return fmt.Errorf("new_type: %w", err)
	}
	greet, err := machine.NewCFunction("greet", vm.Method1(func(m *vm.VM, self *vm.Object) (*vm.Object, error) {
		return m.DecodeString([]byte("hello from Greeter"))
	}))
	if err != nil {
		return err
	}
	if _, err := machine.AddMethod(typ, "greet", greet); err != nil {
		return fmt.Errorf("add_method: %w", err)
	}
	if _, err := machine.Compose(typ); err != nil {
		return fmt.Errorf("compose: %w", err)
	}

	obj, err := machine.NewInstance(typ)
	if err != nil {
		return err
	}
	result, err := machine.CallMethod(obj, "greet", nil)
	if err != nil {
		return err
	}
	s, err := vm.StringValue(result)
	if err != nil {
		return err
	}
	fmt.Println(s)
	return nil
}
