package dimple

// Auto defines a service built by ctor from the services named in deps,
// resolved in order from the registry at construction time.
func Auto(ctor Constructor, deps ...string) Definition {
	if ctor == nil {
		return Factory(nil)
	}
	deps = append([]string(nil), deps...)
	return Factory(func(r *Registry) (any, error) {
		args, err := r.instances(deps)
		if err != nil {
			return nil, err
		}
		return ctor(args...)
	})
}

// AutoFrom defines a service whose constructor and dependencies come from res.
// When the current retrieval scope defines a service named id holding a
// string, that string is used as the type identifier instead. id must not be
// the name the definition itself is registered under.
func AutoFrom(res Resolver, id string) Definition {
	if res == nil {
		return Factory(nil)
	}
	return Factory(func(r *Registry) (any, error) {
		typeID := id
		if r.Has(id) {
			v, err := r.Get(id)
			if err != nil {
				return nil, err
			}
			if s, ok := v.(string); ok {
				typeID = s
			}
		}

		ctor, deps, err := res.Resolve(typeID)
		if err != nil {
			return nil, err
		}
		args, err := r.instances(deps)
		if err != nil {
			return nil, err
		}
		return ctor(args...)
	})
}

// RegisterAuto registers an Auto definition under name.
func (r *Registry) RegisterAuto(name string, ctor Constructor, deps ...string) error {
	return r.Set(name, Auto(ctor, deps...))
}

func (r *Registry) instances(names []string) ([]any, error) {
	args := make([]any, 0, len(names))
	for _, name := range names {
		v, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

// TypeSpec describes how to build one type: the services it depends on and
// the constructor that receives them.
type TypeSpec struct {
	Deps []string
	New  Constructor
}

// Types is a Resolver backed by a map of type identifiers.
type Types map[string]TypeSpec

// Resolve implements Resolver.
func (t Types) Resolve(id string) (Constructor, []string, error) {
	spec, ok := t[id]
	if !ok || spec.New == nil {
		return nil, nil, &UnknownTypeError{ID: id}
	}
	return spec.New, spec.Deps, nil
}
