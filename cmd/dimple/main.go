// Command dimple loads a YAML definitions file and resolves services from it.
//
//	dimple -f services.yaml -scope handler greeting prefix
//	dimple -f services.yaml -tree
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/asartalo/dimple"
	"github.com/asartalo/dimple/source"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("dimple", flag.ContinueOnError)
	flags.SetOutput(stderr)
	file := flags.String("f", "services.yaml", "definitions file")
	scope := flags.String("scope", dimple.RootScope, "scope to resolve from")
	tree := flags.Bool("tree", false, "print the scope tree and exit")
	verbose := flags.Bool("v", false, "log registry events")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	logger := zap.NewNop()
	if *verbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(stderr, "failed to create logger: %v\n", err)
			return 1
		}
	}
	defer logger.Sync()

	setup, err := source.Load(*file)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	registry, err := dimple.New(setup, dimple.WithLogger(logger))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if *tree {
		printTree(stdout, registry, dimple.RootScope, 0)
		for _, name := range registry.ScopeNames() {
			if _, ok := registry.ParentScope(name); !ok && name != dimple.RootScope {
				printTree(stdout, registry, name, 0)
			}
		}
		return 0
	}

	if !registry.HasScope(*scope) {
		fmt.Fprintf(stderr, "unknown scope: %s\n", *scope)
		return 1
	}
	registry.EnterScope(*scope)

	status := 0
	for _, name := range flags.Args() {
		v, err := registry.Get(name)
		if err != nil {
			fmt.Fprintln(stderr, err)
			status = 1
			continue
		}
		fmt.Fprintf(stdout, "%s = %v\n", name, v)
	}
	return status
}

func printTree(w io.Writer, r *dimple.Registry, name string, depth int) {
	fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), name)
	for _, child := range r.ScopeNames() {
		if parent, ok := r.ParentScope(child); ok && parent == name {
			printTree(w, r, child, depth+1)
		}
	}
}
