// Package container wires core skillweaver services using go.uber.org/dig.
package container

import (
	"fmt"

	"go.uber.org/dig"

	"github.com/skillweaver/skillweaver/internal/config"
	"github.com/skillweaver/skillweaver/internal/dispatch"
	"github.com/skillweaver/skillweaver/internal/factory"
	"github.com/skillweaver/skillweaver/internal/hotreload"
	"github.com/skillweaver/skillweaver/internal/providers"
	"github.com/skillweaver/skillweaver/internal/registry"
	"github.com/skillweaver/skillweaver/internal/schema"
	"github.com/skillweaver/skillweaver/internal/tools"
)

// Container holds the resolved core service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type Container struct {
	provider schema.LLMProvider
	registry *registry.Registry
	manager  *hotreload.Manager
	engine   *dispatch.Engine
	factory  *factory.Factory
}

func (c *Container) Provider() schema.LLMProvider { return c.provider }
func (c *Container) Registry() *registry.Registry { return c.registry }
func (c *Container) Manager() *hotreload.Manager  { return c.manager }
func (c *Container) Engine() *dispatch.Engine     { return c.engine }
func (c *Container) Factory() *factory.Factory    { return c.factory }

// New builds and wires all core services from cfg.
func New(cfg *config.Config) (*Container, error) {
	d := dig.New()

	if err := d.Provide(func() *config.Config { return cfg }); err != nil {
		return nil, err
	}
	if err := d.Provide(newProvider); err != nil {
		return nil, err
	}
	if err := d.Provide(newRegistry); err != nil {
		return nil, err
	}
	if err := d.Provide(newBuiltinTools); err != nil {
		return nil, err
	}
	if err := d.Provide(newManager); err != nil {
		return nil, err
	}
	if err := d.Provide(newEngine); err != nil {
		return nil, err
	}
	if err := d.Provide(newFactory); err != nil {
		return nil, err
	}

	var result *Container
	err := d.Invoke(func(
		provider schema.LLMProvider,
		reg *registry.Registry,
		manager *hotreload.Manager,
		engine *dispatch.Engine,
		fac *factory.Factory,
	) {
		result = &Container{
			provider: provider,
			registry: reg,
			manager:  manager,
			engine:   engine,
			factory:  fac,
		}
	})
	return result, err
}

func newProvider(cfg *config.Config) (schema.LLMProvider, error) {
	model := cfg.Agents.Defaults.Model
	result := cfg.MatchProvider(model)

	if result.Provider == nil || result.Provider.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for model %q — edit %s or set the provider's environment variable", model, config.ConfigPath())
	}

	return providers.New(providers.Params{
		APIKey:       result.Provider.APIKey,
		APIBase:      result.Provider.APIBase,
		ExtraHeaders: result.Provider.ExtraHeaders,
		DefaultModel: model,
		ProviderName: result.Name,
	}), nil
}

func newRegistry(cfg *config.Config) *registry.Registry {
	return registry.New(cfg.StorePath(), cfg.BuiltinStorePath())
}

func newBuiltinTools(cfg *config.Config, reg *registry.Registry) *tools.ToolList {
	return tools.NewToolList(
		tools.NewListCapabilitiesTool(reg),
		tools.NewReadInstructionsTool(reg),
		tools.NewWebFetchTool(cfg.Web.FetchMaxChars),
		tools.NewWebSearchTool(cfg.Web.SearchAPIKey, cfg.Web.SearchMaxResults),
	)
}

func newManager(reg *registry.Registry, builtins *tools.ToolList) *hotreload.Manager {
	return hotreload.NewManager(reg, builtins)
}

func newEngine(cfg *config.Config, provider schema.LLMProvider, reg *registry.Registry, manager *hotreload.Manager) *dispatch.Engine {
	defaults := cfg.Agents.Defaults
	return dispatch.New(provider, reg, manager, schema.NewAgentSettings(
		defaults.Model, defaults.MaxTurns, defaults.Temperature, defaults.MaxTokens))
}

func newFactory(cfg *config.Config, provider schema.LLMProvider, reg *registry.Registry, manager *hotreload.Manager) *factory.Factory {
	return factory.New(provider, reg, manager, cfg.Agents.Defaults.Model)
}
