package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/wasi-abi/abi"
	"github.com/wippyai/wasi-abi/bind"
	"github.com/wippyai/wasi-abi/idl"
)

func main() {
	var (
		idlFile     = flag.String("idl", "", "Path to witx interface file")
		list        = flag.Bool("list", false, "List compiled functions and types, then exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *idlFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: abigen -idl <file.witx> [-list]")
		fmt.Fprintln(os.Stderr, "       abigen -idl <file.witx> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			bind.SetLogger(logger)
		}
	}

	if *interactive {
		if err := runInteractive(*idlFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*idlFile, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(idlFile string, listOnly bool) error {
	source, err := os.ReadFile(idlFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	iface, err := idl.Compile(string(source))
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	fmt.Printf("Interface: %s\n", idlFile)
	fmt.Printf("Types: %d\n", len(iface.Types))
	fmt.Printf("Functions: %d\n", len(iface.Functions))

	if !listOnly {
		return nil
	}

	fmt.Printf("\nTypes:\n")
	for _, t := range iface.Types {
		fmt.Printf("  %s\n", t)
		if t.Kind == abi.KindRecord {
			for _, f := range t.Fields {
				fmt.Printf("    %-16s %-24s offset %d\n", f.Name, f.Type.String(), f.Offset)
			}
		}
	}

	fmt.Printf("\nFunctions:\n")
	for _, fn := range iface.Functions {
		fmt.Printf("  %s\n", signature(fn))
		plan := fn.Plan()
		words := make([]string, len(plan.Words))
		for i, w := range plan.Words {
			core := "i32"
			if w.Wide() {
				core = "i64"
			}
			words[i] = fmt.Sprintf("%s:%s(%s)", w.Name, w.Kind, core)
		}
		direct := "none"
		if plan.Direct != nil {
			direct = plan.Direct.Name
		}
		fmt.Printf("    words: [%s] direct: %s\n", strings.Join(words, ", "), direct)
	}

	return nil
}

func signature(fn idl.Function) string {
	var params []string
	for _, p := range fn.Params {
		params = append(params, p.Name+": "+p.Type.Name)
	}
	var results []string
	for _, r := range fn.Results {
		results = append(results, r.Name+": "+r.Type.Name)
	}
	out := fn.Name + "(" + strings.Join(params, ", ") + ")"
	if len(results) > 0 {
		out += " -> (" + strings.Join(results, ", ") + ")"
	}
	return out
}
