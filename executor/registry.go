package executor

import (
	"fmt"
	"sync"
)

// The processor registry maps the names travelling in task specs to
// factories. Workers resolve specs here; a coordinator only ever sends the
// name.
var (
	processorsMu sync.RWMutex
	processors   = map[string]func() Processor{}
)

// RegisterProcessor registers a processor factory under a name, typically
// from an init function in the package defining the processor. Linking that
// package into the worker binary is then all it takes to serve the name.
//
// It panics on a duplicate name: two packages claiming the same name must
// surface at startup, not as misrouted tasks.
func RegisterProcessor(name string, factory func() Processor) {
	if factory == nil {
		panic(fmt.Sprintf("executor: nil factory for processor %q", name))
	}

	processorsMu.Lock()
	defer processorsMu.Unlock()

	if _, ok := processors[name]; ok {
		panic(fmt.Sprintf("executor: processor %q already registered", name))
	}
	processors[name] = factory
}

// newProcessor constructs a fresh processor by registered name.
func newProcessor(name string) (Processor, error) {
	processorsMu.RLock()
	factory, ok := processors[name]
	processorsMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no processor registered under %q", name)
	}
	return factory(), nil
}
