package evaluator

// Environment is a persistent chain of binding cells. Bind never mutates an
// existing cell; it returns a new head pointing at the old chain, so a
// closure holding an older head never sees bindings made after it was
// created. Overwrite (the `set` statement) mutates a found cell in place,
// which closures sharing that cell do observe.
type Environment struct {
	name   string // "" for frame markers
	value  Object
	outer  *Environment
	frame  bool // cell begins a new lexical frame
	logger Logger
}

// NewEnvironment returns a fresh root environment.
func NewEnvironment() *Environment {
	return &Environment{frame: true, logger: DefaultLogger}
}

// NewEnvironmentWithLogger returns a fresh root environment whose log() and
// logLine() builtins write to the given logger.
func NewEnvironmentWithLogger(logger Logger) *Environment {
	return &Environment{frame: true, logger: logger}
}

// Extend starts a new lexical frame on top of e. Bindings made in the new
// frame may shadow outer ones without being rebinds.
func (e *Environment) Extend() *Environment {
	return &Environment{outer: e, frame: true, logger: e.logger}
}

// Get walks the chain from the newest cell outward.
func (e *Environment) Get(name string) (Object, bool) {
	for cell := e; cell != nil; cell = cell.outer {
		if cell.name == name {
			return cell.value, true
		}
	}
	return nil, false
}

// Bind introduces a new binding and returns the new chain head. Rebinding a
// name already bound in the current frame is an error; shadowing an outer
// frame's binding is not.
func (e *Environment) Bind(name string, val Object) (*Environment, *Error) {
	if e.boundInFrame(name) {
		return e, newError("NAME-0002", map[string]any{"Name": name})
	}
	return &Environment{name: name, value: val, outer: e, logger: e.logger}, nil
}

// Overwrite replaces the value of an existing binding, wherever in the chain
// it lives. The cell itself is mutated, so every environment sharing it
// (including closure captures) sees the new value.
func (e *Environment) Overwrite(name string, val Object) *Error {
	for cell := e; cell != nil; cell = cell.outer {
		if cell.name == name {
			cell.value = val
			return nil
		}
	}
	return newError("NAME-0003", map[string]any{"Name": name})
}

func (e *Environment) boundInFrame(name string) bool {
	for cell := e; cell != nil; cell = cell.outer {
		if cell.name == name {
			return true
		}
		if cell.frame {
			return false
		}
	}
	return false
}

// Names lists all visible binding names, innermost first, without shadowed
// duplicates.
func (e *Environment) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for cell := e; cell != nil; cell = cell.outer {
		if cell.name == "" || seen[cell.name] {
			continue
		}
		seen[cell.name] = true
		names = append(names, cell.name)
	}
	return names
}

// Bindings snapshots the visible bindings; shadowed cells are skipped.
func (e *Environment) Bindings() map[string]Object {
	out := make(map[string]Object)
	for cell := e; cell != nil; cell = cell.outer {
		if cell.name == "" {
			continue
		}
		if _, ok := out[cell.name]; ok {
			continue
		}
		out[cell.name] = cell.value
	}
	return out
}

// Logger returns the logger this environment routes log output to.
func (e *Environment) Logger() Logger {
	if e.logger == nil {
		return DefaultLogger
	}
	return e.logger
}
