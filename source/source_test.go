package source_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/asartalo/dimple"
	"github.com/asartalo/dimple/source"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, path string) *dimple.Registry {
	t.Helper()
	setup, err := source.Load(path)
	require.NoError(t, err)
	r, err := dimple.New(setup)
	require.NoError(t, err)
	return r
}

func TestLoad(t *testing.T) {
	t.Run("Scopes", func(t *testing.T) {
		r := load(t, "testdata/services.yaml")
		parent, ok := r.ParentScope("request")
		assert.True(t, ok)
		assert.Equal(t, dimple.RootScope, parent)
		parent, ok = r.ParentScope("handler")
		assert.True(t, ok)
		assert.Equal(t, "request", parent)
	})

	t.Run("Values", func(t *testing.T) {
		r := load(t, "testdata/services.yaml")
		prefix, err := dimple.Resolve[string](r, "prefix")
		assert.NoError(t, err)
		assert.Equal(t, "hello", prefix)

		limits, err := dimple.Resolve[map[string]any](r, "limits")
		assert.NoError(t, err)
		assert.Equal(t, 3, limits["retries"])
		assert.Equal(t, "5s", limits["timeout"])
	})

	t.Run("Expressions", func(t *testing.T) {
		r := load(t, "testdata/services.yaml")
		r.EnterScope("handler")
		greeting, err := r.Get("greeting")
		assert.NoError(t, err)
		assert.Equal(t, "hello, wayne", greeting)

		retries, err := r.Get("retries")
		assert.NoError(t, err)
		assert.Equal(t, 6, retries)
	})

	t.Run("ScopeViolation", func(t *testing.T) {
		r := load(t, "testdata/services.yaml")
		_, err := r.Get("user")
		var violation *dimple.ScopeViolationError
		require.True(t, errors.As(err, &violation))
		assert.Equal(t, "container", violation.Scope)
	})

	t.Run("DefinitionCursorRestored", func(t *testing.T) {
		setup, err := source.Load("testdata/services.yaml")
		require.NoError(t, err)
		r, err := dimple.New(func(r *dimple.Registry) error {
			r.CreateScope("custom", "")
			r.Scope("custom")
			if err := setup(r); err != nil {
				return err
			}
			return r.SetValue("after", true)
		})
		require.NoError(t, err)
		assert.Equal(t, "custom", r.CurrentDefinitionScope())
		r.EnterScope("custom")
		assert.True(t, r.Has("after"))
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := source.Load("testdata/missing.yaml")
		assert.Error(t, err)
	})

	t.Run("ValueAndExpr", func(t *testing.T) {
		_, err := source.Load("testdata/invalid.yaml")
		var entryErr *source.EntryError
		require.True(t, errors.As(err, &entryErr))
		assert.Equal(t, "broken", entryErr.Service)
	})
}

func TestParse(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		setup, err := source.Parse(nil)
		require.NoError(t, err)
		r, err := dimple.New(setup)
		require.NoError(t, err)
		assert.Equal(t, []string{dimple.RootScope}, r.ScopeNames())
	})

	t.Run("MissingName", func(t *testing.T) {
		_, err := source.Parse([]byte("services:\n  - value: 1\n"))
		var validationErrs validator.ValidationErrors
		assert.True(t, errors.As(err, &validationErrs))
	})

	t.Run("EmptyInject", func(t *testing.T) {
		_, err := source.Parse([]byte("services:\n  - name: x\n    expr: '1'\n    inject: ['']\n"))
		var validationErrs validator.ValidationErrors
		assert.True(t, errors.As(err, &validationErrs))
	})

	t.Run("NeitherValueNorExpr", func(t *testing.T) {
		_, err := source.Parse([]byte("services:\n  - name: x\n"))
		var entryErr *source.EntryError
		assert.True(t, errors.As(err, &entryErr))
	})

	t.Run("InjectWithValue", func(t *testing.T) {
		_, err := source.Parse([]byte("services:\n  - name: x\n    value: 1\n    inject: [y]\n"))
		var entryErr *source.EntryError
		assert.True(t, errors.As(err, &entryErr))
	})

	t.Run("InvalidExpression", func(t *testing.T) {
		_, err := source.Parse([]byte("services:\n  - name: x\n    expr: '1 +'\n"))
		var entryErr *source.EntryError
		require.True(t, errors.As(err, &entryErr))
		assert.Equal(t, "invalid expression", entryErr.Reason)
	})

	t.Run("UnknownField", func(t *testing.T) {
		_, err := source.Parse([]byte("services:\n  - name: x\n    valeu: 1\n"))
		assert.Error(t, err)
	})

	t.Run("NullValue", func(t *testing.T) {
		setup, err := source.Parse([]byte("services:\n  - name: x\n    value: null\n"))
		require.NoError(t, err)
		r, err := dimple.New(setup)
		require.NoError(t, err)
		v, err := r.Get("x")
		assert.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("UnknownServiceScope", func(t *testing.T) {
		setup, err := source.Parse([]byte("services:\n  - name: x\n    scope: nowhere\n    value: 1\n"))
		require.NoError(t, err)
		_, err = dimple.New(setup)
		var unknown *dimple.UnknownScopeError
		assert.True(t, errors.As(err, &unknown))
	})

	t.Run("OrphanScope", func(t *testing.T) {
		setup, err := source.Parse([]byte("scopes:\n  - name: lonely\n    parent: nowhere\n"))
		require.NoError(t, err)
		r, err := dimple.New(setup)
		require.NoError(t, err)
		assert.True(t, r.HasScope("lonely"))
		_, ok := r.ParentScope("lonely")
		assert.False(t, ok)
	})

	t.Run("ExpressionFailsAtRuntime", func(t *testing.T) {
		setup, err := source.Read(strings.NewReader("services:\n  - name: x\n    inject: [nothere]\n    expr: 'nothere'\n"))
		require.NoError(t, err)
		r, err := dimple.New(setup)
		require.NoError(t, err)
		_, err = r.Get("x")
		var construction *dimple.ConstructionError
		require.True(t, errors.As(err, &construction))
		assert.Equal(t, "x", construction.Service)
		var violation *dimple.ScopeViolationError
		require.True(t, errors.As(err, &violation))
		assert.Equal(t, "nothere", violation.Service)
	})

	t.Run("ExpressionCachedPerScope", func(t *testing.T) {
		setup, err := source.Parse([]byte(strings.Join([]string{
			"scopes:",
			"  - name: request",
			"services:",
			"  - name: items",
			"    scope: request",
			"    expr: '[1, 2, 3]'",
		}, "\n")))
		require.NoError(t, err)
		r, err := dimple.New(setup)
		require.NoError(t, err)
		r.EnterScope("request")
		first, err := r.Get("items")
		require.NoError(t, err)
		second, err := r.Get("items")
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.True(t, r.Lookup("request").Cached("items"))
		require.NoError(t, r.LeaveScope())
		assert.False(t, r.Lookup("request").Cached("items"))
	})
}
