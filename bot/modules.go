package bot

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"logiq/bot/common"
)

// Module is a group of commands that is enabled, disabled and reloaded together
type Module interface {
	Name() string
	Commands() []*common.Command
}

// Reloader is implemented by modules that keep state between invocations
type Reloader interface {
	Reload() error
}

// MessageHandler is implemented by modules that react to ordinary guild messages
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg common.MessageEvent)
}

// ModuleStatus describes one registered module
type ModuleStatus struct {
	Name   string
	Loaded bool
}

type loadedCommand struct {
	command *common.Command
	module  string
}

// ModuleHost is the registry of modules and the command table built from the loaded ones
type ModuleHost struct {
	mu       sync.RWMutex
	modules  map[string]Module
	order    []string
	loaded   map[string]bool
	commands map[string]loadedCommand
}

func NewModuleHost() *ModuleHost {
	return &ModuleHost{
		modules:  make(map[string]Module),
		loaded:   make(map[string]bool),
		commands: make(map[string]loadedCommand),
	}
}

// Register adds a module. Disabled modules are registered but not loaded.
func (h *ModuleHost) Register(module Module, enabled bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	name := module.Name()
	if _, exists := h.modules[name]; exists {
		return fmt.Errorf("module %s already registered", name)
	}
	if enabled {
		if err := h.load(name, module); err != nil {
			return err
		}
	}
	h.modules[name] = module
	h.order = append(h.order, name)
	return nil
}

// Reload unloads a loaded module, resets its state and loads its command table again
func (h *ModuleHost) Reload(name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	module, ok := h.modules[name]
	if !ok {
		return fmt.Errorf("%w: %s", common.ErrModuleNotFound, name)
	}
	if !h.loaded[name] {
		return fmt.Errorf("%w: %s", common.ErrModuleNotLoaded, name)
	}

	previous := h.unload(name)

	if reloader, ok := module.(Reloader); ok {
		if err := reloader.Reload(); err != nil {
			h.restore(name, previous)
			return fmt.Errorf("failed to reload %s: %w", name, err)
		}
	}
	if err := h.load(name, module); err != nil {
		h.restore(name, previous)
		return err
	}
	return nil
}

// Lookup resolves a command name to a loaded command and its module
func (h *ModuleHost) Lookup(command string) (*common.Command, string, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	entry, ok := h.commands[command]
	if !ok {
		return nil, "", false
	}
	return entry.command, entry.module, true
}

// Commands returns every loaded command ordered by name
func (h *ModuleHost) Commands() []*common.Command {
	h.mu.RLock()
	defer h.mu.RUnlock()

	commands := make([]*common.Command, 0, len(h.commands))
	for _, entry := range h.commands {
		commands = append(commands, entry.command)
	}
	sort.Slice(commands, func(i, j int) bool { return commands[i].Name < commands[j].Name })
	return commands
}

// Statuses lists registered modules in registration order
func (h *ModuleHost) Statuses() []ModuleStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	statuses := make([]ModuleStatus, 0, len(h.order))
	for _, name := range h.order {
		statuses = append(statuses, ModuleStatus{Name: name, Loaded: h.loaded[name]})
	}
	return statuses
}

// MessageHandlers returns the loaded modules that listen to guild messages
func (h *ModuleHost) MessageHandlers() []MessageHandler {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var handlers []MessageHandler
	for _, name := range h.order {
		if !h.loaded[name] {
			continue
		}
		if handler, ok := h.modules[name].(MessageHandler); ok {
			handlers = append(handlers, handler)
		}
	}
	return handlers
}

// load must be called with mu held
func (h *ModuleHost) load(name string, module Module) error {
	commands := module.Commands()
	for _, cmd := range commands {
		if existing, taken := h.commands[cmd.Name]; taken && existing.module != name {
			return fmt.Errorf("command %s of module %s is already provided by %s", cmd.Name, name, existing.module)
		}
	}
	for _, cmd := range commands {
		h.commands[cmd.Name] = loadedCommand{command: cmd, module: name}
	}
	h.loaded[name] = true
	return nil
}

// unload must be called with mu held; it returns the removed commands
func (h *ModuleHost) unload(name string) []*common.Command {
	var removed []*common.Command
	for cmdName, entry := range h.commands {
		if entry.module == name {
			removed = append(removed, entry.command)
			delete(h.commands, cmdName)
		}
	}
	h.loaded[name] = false
	return removed
}

func (h *ModuleHost) restore(name string, commands []*common.Command) {
	for _, cmd := range commands {
		h.commands[cmd.Name] = loadedCommand{command: cmd, module: name}
	}
	h.loaded[name] = true
}
