package plan

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mynameisdaniil/yaff/pkg/yaff"
)

// Params are the "with" arguments of a step.
type Params map[string]any

type ActionFactory func(p Params) (yaff.Action, error)

type CatcherFactory func(p Params) (yaff.Catcher, error)

// Registry maps step names to factories. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	actions  map[string]ActionFactory
	catchers map[string]CatcherFactory
}

func NewRegistry() *Registry {
	return &Registry{
		actions:  make(map[string]ActionFactory),
		catchers: make(map[string]CatcherFactory),
	}
}

// DefaultRegistry returns a registry holding the built-in steps.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.RegisterAction("value", valueAction)
	r.RegisterAction("pass", passAction)
	r.RegisterAction("sleep", sleepAction)
	r.RegisterAction("fail", failAction)
	r.RegisterAction("sum", sumAction)
	r.RegisterAction("double", doubleAction)
	r.RegisterAction("count", countAction)

	r.RegisterCatcher("recover", recoverCatcher)
	r.RegisterCatcher("rethrow", rethrowCatcher)

	return r
}

// RegisterAction adds or replaces an action factory.
func (r *Registry) RegisterAction(name string, f ActionFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[name] = f
}

// RegisterCatcher adds or replaces a catcher factory.
func (r *Registry) RegisterCatcher(name string, f CatcherFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catchers[name] = f
}

func (r *Registry) Action(name string, p Params) (yaff.Action, error) {
	r.mu.RLock()
	f, ok := r.actions[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
	return f(p)
}

func (r *Registry) Catcher(name string, p Params) (yaff.Catcher, error) {
	r.mu.RLock()
	f, ok := r.catchers[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
	return f(p)
}

func (r *Registry) HasAction(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.actions[name]
	return ok
}

func (r *Registry) HasCatcher(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.catchers[name]
	return ok
}

// Names returns the registered action and catcher names, sorted.
func (r *Registry) Names() (actions, catchers []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for name := range r.actions {
		actions = append(actions, name)
	}
	for name := range r.catchers {
		catchers = append(catchers, name)
	}
	sort.Strings(actions)
	sort.Strings(catchers)
	return actions, catchers
}
