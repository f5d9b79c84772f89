// Package source loads registry definitions from YAML documents.
//
// A document lists scopes, created in order, and services registered into
// them:
//
//	scopes:
//	  - name: request
//	  - name: handler
//	    parent: request
//	services:
//	  - name: prefix
//	    value: "hello"
//	  - name: greeting
//	    scope: handler
//	    inject: [prefix, user]
//	    expr: 'prefix + ", " + user'
//
// A service carries either a raw value or an expr-lang expression evaluated
// once per scope cache lifetime with its injected services in the environment.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/asartalo/dimple"
)

var validate = validator.New()

// Document is the top-level YAML structure.
type Document struct {
	Scopes   []ScopeEntry   `yaml:"scopes" validate:"dive"`
	Services []ServiceEntry `yaml:"services" validate:"dive"`
}

// ScopeEntry declares one scope. An empty parent means the root scope.
type ScopeEntry struct {
	Name   string `yaml:"name" validate:"required"`
	Parent string `yaml:"parent"`
}

// ServiceEntry declares one service. Exactly one of Value and Expr is set.
type ServiceEntry struct {
	Name   string    `yaml:"name" validate:"required"`
	Scope  string    `yaml:"scope"`
	Value  yaml.Node `yaml:"value" validate:"-"`
	Expr   string    `yaml:"expr"`
	Inject []string  `yaml:"inject" validate:"dive,required"`
}

// Load reads the file at path and returns its setup.
func Load(path string) (dimple.Setup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions %s: %w", path, err)
	}
	setup, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load definitions %s: %w", path, err)
	}
	return setup, nil
}

// Read parses a document from reader.
func Read(reader io.Reader) (dimple.Setup, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions: %w", err)
	}
	return Parse(data)
}

// Parse decodes, validates and compiles a document. Nothing touches a
// registry until the returned setup runs.
func Parse(data []byte) (dimple.Setup, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid definitions document: %w", err)
	}
	if err := validate.Struct(&doc); err != nil {
		return nil, fmt.Errorf("invalid definitions document: %w", err)
	}

	services := make([]service, 0, len(doc.Services))
	for _, entry := range doc.Services {
		svc, err := compile(entry)
		if err != nil {
			return nil, err
		}
		services = append(services, svc)
	}

	return func(r *dimple.Registry) error {
		for _, s := range doc.Scopes {
			r.CreateScope(s.Name, s.Parent)
		}

		cursor := r.CurrentDefinitionScope()
		defer r.Scope(cursor)
		for _, svc := range services {
			r.Scope(svc.scope)
			if err := r.Set(svc.name, svc.definition); err != nil {
				return fmt.Errorf("failed to register service %s: %w", svc.name, err)
			}
		}
		return nil
	}, nil
}

type service struct {
	name       string
	scope      string
	definition dimple.Definition
}

func compile(entry ServiceEntry) (service, error) {
	hasValue := !entry.Value.IsZero()
	hasExpr := entry.Expr != ""
	if hasValue == hasExpr {
		return service{}, &EntryError{Service: entry.Name, Reason: "exactly one of value and expr must be set"}
	}
	if hasValue && len(entry.Inject) > 0 {
		return service{}, &EntryError{Service: entry.Name, Reason: "inject is only valid with expr"}
	}

	scope := entry.Scope
	if scope == "" {
		scope = dimple.RootScope
	}
	svc := service{name: entry.Name, scope: scope}

	if hasValue {
		var v any
		if err := entry.Value.Decode(&v); err != nil {
			return service{}, &EntryError{Service: entry.Name, Reason: "undecodable value", Err: err}
		}
		svc.definition = dimple.Value(v)
		return svc, nil
	}

	program, err := exprlang.Compile(entry.Expr)
	if err != nil {
		return service{}, &EntryError{Service: entry.Name, Reason: "invalid expression", Err: err}
	}
	svc.definition = dimple.Factory(evaluator(program, append([]string(nil), entry.Inject...)))
	return svc, nil
}

func evaluator(program *exprvm.Program, inject []string) dimple.FactoryFunc {
	return func(r *dimple.Registry) (any, error) {
		env := make(map[string]any, len(inject))
		for _, name := range inject {
			v, err := r.Get(name)
			if err != nil {
				return nil, err
			}
			env[name] = v
		}
		return exprlang.Run(program, env)
	}
}
