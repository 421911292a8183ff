// Command morpho is a thin shell over the runtime core: just enough of a
// CLI to exercise the host embedding ABI end to end. It has no lexer,
// parser, or compiler (that front end is out of scope here); `run`,
// `disassemble`, and `debug` all operate on a small set of named
// hand-assembled fixture programs instead of source files.
package main

import (
	"bufio"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/mattn/go-isatty"

	"morpho/internal/bytecode"
	"morpho/internal/debugger"
	"morpho/internal/dbveneer"
	"morpho/internal/interp"
	"morpho/internal/program"
	"morpho/internal/veneer"
)

const version = "0.1.0"

var commandAliases = map[string]string{
	"r": "run",
	"d": "debug",
	"x": "disassemble",
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		return
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	switch cmd {
	case "help", "-h", "--help":
		showUsage()
	case "version", "-v", "--version":
		fmt.Println("morpho", version)
	case "run":
		if err := runCommand(args[1:]); err != nil {
			log.Fatalf("morpho run: %v", err)
		}
	case "disassemble":
		if err := disassembleCommand(args[1:]); err != nil {
			log.Fatalf("morpho disassemble: %v", err)
		}
	case "debug":
		if err := debugCommand(args[1:]); err != nil {
			log.Fatalf("morpho debug: %v", err)
		}
	case "serve":
		if err := serveCommand(args[1:]); err != nil {
			log.Fatalf("morpho serve: %v", err)
		}
	default:
		showUsage()
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println("morpho - runtime core for a dynamically typed, class-based scripting language")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  morpho run <fixture>           run a hand-assembled fixture program        (alias: r)")
	fmt.Println("  morpho disassemble <fixture>   print a fixture's instruction stream         (alias: x)")
	fmt.Println("  morpho debug <fixture>         run a fixture under the interactive debugger (alias: d)")
	fmt.Println("  morpho serve <fixture> <addr>  serve a fixture to a remote websocket debugger")
	fmt.Println("  morpho version                 print the version")
	fmt.Println()
	fmt.Println("Fixtures:")
	for name := range fixtures {
		fmt.Println("  " + name)
	}
}

func loadFixture(name string) (*program.Program, func(vm *interp.VM), error) {
	fx, ok := fixtures[name]
	if !ok {
		return nil, nil, fmt.Errorf("no such fixture %q", name)
	}
	prog, init := fx.build()
	if err := prog.Validate(); err != nil {
		return nil, nil, err
	}
	return prog, init, nil
}

// bootstrap registers the veneer classes every runtime needs regardless
// of which fixture runs: the core containers and the database demo type.
func bootstrap() {
	veneer.RegisterDefaults()
	dbveneer.RegisterDefaults()
}

func newVM(prog *program.Program, init func(vm *interp.VM)) *interp.VM {
	vm := interp.New(prog)
	vm.Stdout = stdoutWriter{}
	if init != nil {
		init(vm)
	}
	return vm
}

type stdoutWriter struct{}

func (stdoutWriter) WriteString(s string) (int, error) { return fmt.Print(s) }

func runCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: morpho run <fixture>")
	}
	bootstrap()
	prog, init, err := loadFixture(args[0])
	if err != nil {
		return err
	}
	vm := newVM(prog, init)
	if _, err := vm.Run(); err != nil {
		return err
	}
	return nil
}

func disassembleCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: morpho disassemble <fixture>")
	}
	prog, _, err := loadFixture(args[0])
	if err != nil {
		return err
	}
	for i, instr := range prog.Instructions {
		fmt.Printf("%4d  %-8s a=%d b=%d c=%d\n", i, instr.Op(), instr.A(), instr.B(), instr.C())
		if instr.Op() == bytecode.END {
			break
		}
	}
	return nil
}

func debugCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: morpho debug <fixture>")
	}
	bootstrap()
	prog, init, err := loadFixture(args[0])
	if err != nil {
		return err
	}
	vm := newVM(prog, init)

	if isatty.IsTerminal(os.Stdin.Fd()) {
		fmt.Println("morpho debugger attached; type 'help' for commands")
	}
	d := debugger.New(vm, prog, bufio.NewReader(os.Stdin), os.Stdout)
	d.BreakAtFunction("", "main")

	if _, err := vm.Run(); err != nil {
		return err
	}
	return nil
}

// serveCommand runs a fixture under a debugger session reached over a
// websocket instead of a local terminal: connecting clients drive the
// same command loop debugCommand drives interactively.
func serveCommand(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: morpho serve <fixture> <addr>")
	}
	bootstrap()
	name, addr := args[0], args[1]

	http.HandleFunc("/debug", func(w http.ResponseWriter, r *http.Request) {
		prog, init, err := loadFixture(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		vm := newVM(prog, init)
		d, err := debugger.ServeRemote(vm, prog, w, r)
		if err != nil {
			log.Printf("morpho serve: upgrade failed: %v", err)
			return
		}
		d.BreakAtFunction("", "main")
		if _, err := vm.Run(); err != nil {
			log.Printf("morpho serve: %v", err)
		}
	})

	log.Printf("morpho serve: debugging %q at ws://%s/debug", name, addr)
	return http.ListenAndServe(addr, nil)
}
