// Command vilhost is a minimal CLI host for the VIL engine, analogous
// to the teacher's cmd/retro: a flag-based front end that loads a
// store and drives the VM, rather than terminal I/O.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/vil-project/vil/store/filestore"
	"github.com/vil-project/vil/vm"
)

func atExit(f *vm.Frame, err error, debug bool) {
	if err == nil {
		return
	}
	if !debug {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%+v\n", err)
	if f != nil {
		fmt.Fprintf(os.Stderr, "stack: %v\n", f.Stack.All())
	}
	os.Exit(1)
}

func parseKey(s string) (vm.Label, error) {
	if len(s) != 32 {
		return vm.Label{}, errors.Errorf("key %q: want 32 hex digits", s)
	}
	var hi, lo uint64
	if _, err := fmt.Sscanf(s[:16], "%016x", &hi); err != nil {
		return vm.Label{}, errors.Wrap(err, "parse key high word")
	}
	if _, err := fmt.Sscanf(s[16:], "%016x", &lo); err != nil {
		return vm.Label{}, errors.Wrap(err, "parse key low word")
	}
	return vm.Label{Hi: hi, Lo: lo}, nil
}

func main() {
	dir := flag.String("store", ".", "`directory` holding the filestore's per-key blobs")
	key := flag.String("key", "", "32-hex-digit program `key` to invoke")
	regs := flag.Int("regs", 16, "register count for the top-level call")
	dump := flag.Bool("dump", false, "dump the resulting stack upon exit")
	debug := flag.Bool("debug", false, "print a stack trace on error; the VM stack is printed only when the program itself completed")
	flag.Parse()

	var f *vm.Frame
	var err error
	defer func() { atExit(f, err, *debug) }()

	if *key == "" {
		err = errors.New("-key is required")
		return
	}
	var progKey vm.Label
	progKey, err = parseKey(*key)
	if err != nil {
		return
	}

	store := filestore.New(*dir)
	e := vm.New(vm.DefaultLimits())
	f, err = e.Call(store, progKey, *regs)
	if err != nil {
		return
	}
	if *dump {
		err = dumpStack(os.Stdout, f)
	}
}
