package tosca

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
)

// This file provides a name-based registry for Interpreter and Processor
// implementations. A binary that links multiple implementations (e.g. a
// reference interpreter alongside a benchmark variant) can select one at
// runtime by name, typically supplied as a CLI flag; see cmd/corevm.

// InterpreterFactory creates a new Interpreter instance, optionally using an
// implementation-specific configuration value.
type InterpreterFactory func(config any) (Interpreter, error)

// ProcessorFactory creates a new Processor instance for a named Interpreter.
type ProcessorFactory func(interpreter Interpreter) (Processor, error)

var (
	interpreterRegistry     = map[string]InterpreterFactory{}
	interpreterRegistryLock sync.Mutex

	processorRegistry     = map[string]ProcessorFactory{}
	processorRegistryLock sync.Mutex
)

// RegisterInterpreterFactory registers an Interpreter implementation under
// name, which is matched case-insensitively by NewInterpreter. It panics if
// name was already registered or factory is nil; this is intended to be
// called from package init functions.
func RegisterInterpreterFactory(name string, factory InterpreterFactory) {
	key := strings.ToLower(name)
	if factory == nil {
		panic(fmt.Sprintf("cannot register nil interpreter factory under %q", key))
	}
	interpreterRegistryLock.Lock()
	defer interpreterRegistryLock.Unlock()
	if _, found := interpreterRegistry[key]; found {
		panic(fmt.Sprintf("multiple interpreter factories registered under %q", key))
	}
	interpreterRegistry[key] = factory
}

// NewInterpreter looks up name (case-insensitive) and instantiates an
// Interpreter with it, passing through the optional config value.
func NewInterpreter(name string, config any) (Interpreter, error) {
	interpreterRegistryLock.Lock()
	factory, found := interpreterRegistry[strings.ToLower(name)]
	interpreterRegistryLock.Unlock()
	if !found {
		return nil, fmt.Errorf("interpreter not found: %s", name)
	}
	return factory(config)
}

// GetAllRegisteredInterpreters returns a snapshot of the registered
// interpreter factories, keyed by their registered (lower-cased) name.
func GetAllRegisteredInterpreters() map[string]InterpreterFactory {
	interpreterRegistryLock.Lock()
	defer interpreterRegistryLock.Unlock()
	return maps.Clone(interpreterRegistry)
}

// RegisteredInterpreterNames returns the names under which interpreters have
// been registered, in no particular order.
func RegisteredInterpreterNames() []string {
	interpreterRegistryLock.Lock()
	defer interpreterRegistryLock.Unlock()
	return maps.Keys(interpreterRegistry)
}

// RegisterProcessorFactory registers a Processor implementation under name.
func RegisterProcessorFactory(name string, factory ProcessorFactory) {
	key := strings.ToLower(name)
	if factory == nil {
		panic(fmt.Sprintf("cannot register nil processor factory under %q", key))
	}
	processorRegistryLock.Lock()
	defer processorRegistryLock.Unlock()
	if _, found := processorRegistry[key]; found {
		panic(fmt.Sprintf("multiple processor factories registered under %q", key))
	}
	processorRegistry[key] = factory
}

// NewProcessor looks up name (case-insensitive) and instantiates a Processor
// with it, wired to run against the given Interpreter.
func NewProcessor(name string, interpreter Interpreter) (Processor, error) {
	processorRegistryLock.Lock()
	factory, found := processorRegistry[strings.ToLower(name)]
	processorRegistryLock.Unlock()
	if !found {
		return nil, fmt.Errorf("processor not found: %s", name)
	}
	return factory(interpreter)
}

// RegisteredProcessorNames returns the names under which processors have
// been registered, in no particular order.
func RegisteredProcessorNames() []string {
	processorRegistryLock.Lock()
	defer processorRegistryLock.Unlock()
	return maps.Keys(processorRegistry)
}

// GetAllRegisteredProcessorFactories returns a snapshot of the registered
// processor factories, keyed by their registered (lower-cased) name.
func GetAllRegisteredProcessorFactories() map[string]ProcessorFactory {
	processorRegistryLock.Lock()
	defer processorRegistryLock.Unlock()
	return maps.Clone(processorRegistry)
}

// GetProcessorFactory looks up name (case-insensitive) and returns the
// registered ProcessorFactory, or nil if no factory is registered under
// that name.
func GetProcessorFactory(name string) ProcessorFactory {
	processorRegistryLock.Lock()
	defer processorRegistryLock.Unlock()
	return processorRegistry[strings.ToLower(name)]
}
