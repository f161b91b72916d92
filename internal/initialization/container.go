package initialization

import (
	"context"
	"fmt"

	"github.com/svasthya/svasthya/internal/controllers"
	"github.com/svasthya/svasthya/pkg/ai-sdk/provider"
	"github.com/svasthya/svasthya/pkg/ai-sdk/tool"
	"github.com/svasthya/svasthya/pkg/domain"
	"github.com/svasthya/svasthya/pkg/integrations/health_agent"
	"github.com/svasthya/svasthya/pkg/integrations/health_tools"

	"github.com/rs/zerolog/log"
)

// Container wires the service's long-lived dependencies
type Container struct {
	Config *Config

	Model    provider.LanguageModel
	Store    domain.HealthStore
	Registry *tool.Registry

	HealthAgent     *health_agent.HealthAgent
	ReportAnalyzer  *health_agent.ReportAnalyzer
	AgentController *controllers.AgentController
}

func NewContainer(ctx context.Context, config *Config) (*Container, error) {
	log.Info().Msg("Building dependencies")

	model, err := NewLanguageModel(ctx, *config)
	if err != nil {
		return nil, fmt.Errorf("failed to create language model: %w", err)
	}

	log.Info().Str("model", model.ID()).Msg("Language model ready")

	store, err := NewHealthStore(ctx, *config)
	if err != nil {
		return nil, fmt.Errorf("failed to create health store: %w", err)
	}

	container, err := NewContainerWith(model, store, *config)
	if err != nil {
		_ = store.Close(ctx)
		return nil, err
	}

	container.Config = config

	return container, nil
}

// NewContainerWith wires the agent, analyzer and controller around an existing
// model and store
func NewContainerWith(model provider.LanguageModel, store domain.HealthStore, config Config) (*Container, error) {
	healthTools := health_tools.NewHealthToolsIntegration(health_tools.HealthToolsIntegrationDependencies{
		Store: store,
	})

	registry, err := healthTools.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to build tool registry: %w", err)
	}

	healthAgent, err := health_agent.NewHealthAgent(health_agent.HealthAgentDependencies{
		Model:        model,
		Catalog:      registry,
		Executor:     tool.NewExecutor(registry),
		SystemPrompt: config.SystemPrompt,
		MaxTokens:    config.MaxOutputTokens,
		Temperature:  config.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create health agent: %w", err)
	}

	reportAnalyzer, err := health_agent.NewReportAnalyzer(model)
	if err != nil {
		return nil, fmt.Errorf("failed to create report analyzer: %w", err)
	}

	agentController := controllers.NewAgentController(controllers.AgentControllerDependencies{
		Agent:          healthAgent,
		ReportAnalyzer: reportAnalyzer,
	})

	return &Container{
		Config:          &config,
		Model:           model,
		Store:           store,
		Registry:        registry,
		HealthAgent:     healthAgent,
		ReportAnalyzer:  reportAnalyzer,
		AgentController: agentController,
	}, nil
}

func (c *Container) Close(ctx context.Context) error {
	if c.Store == nil {
		return nil
	}

	return c.Store.Close(ctx)
}
