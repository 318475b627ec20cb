// Command flan loads a compiled FLAN image and runs it, mirroring the
// teacher's cmd/barn entry point: flag-driven tracing plus a read-only
// inspection mode that never touches the interpreter.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"flan/internal/builtins"
	"flan/internal/bytecode"
	"flan/internal/loader"
	"flan/internal/trace"
	"flan/internal/value"
	"flan/internal/vm"
	"flan/internal/vmerror"
)

func main() {
	traceEnabled := flag.Bool("trace", false, "enable execution tracing")
	traceFilter := flag.String("trace-filter", "", "trace filter pattern (glob, comma-separated, e.g. 'ADD*,CALLFN')")
	disasm := flag.Bool("disasm", false, "disassemble the image and exit, without running it")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: flan [-trace] [-trace-filter pattern] [-disasm] <image>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	img, err := loader.Load(path)
	if err != nil {
		log.Fatalf("failed to load %s: %v", path, err)
	}

	if *disasm {
		lines, err := bytecode.Disassemble(img)
		if err != nil {
			log.Fatalf("disassembly failed: %v", err)
		}
		for _, line := range lines {
			fmt.Println(line)
		}
		return
	}

	interp := vm.New(img)

	if *traceEnabled {
		var filters []string
		if *traceFilter != "" {
			filters = strings.Split(*traceFilter, ",")
			for i := range filters {
				filters[i] = strings.TrimSpace(filters[i])
			}
		}
		interp.SetTracer(trace.New(true, filters, os.Stderr))
	}

	builtins.NewRegistry().BindAll(interp.Heap(), interp.BindGlobal)

	result, runErr := interp.Run()
	if runErr != nil {
		if verr, ok := runErr.(*vmerror.Error); ok {
			fmt.Fprintln(os.Stderr, verr.Render())
		} else {
			fmt.Fprintln(os.Stderr, runErr)
		}
		os.Exit(1)
	}

	for _, v := range result {
		fmt.Println(value.ToString(v))
	}
}
