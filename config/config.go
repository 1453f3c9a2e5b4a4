package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aeropilot-ai/aeropilot/agent"
	"github.com/aeropilot-ai/aeropilot/guardrail"
	"github.com/aeropilot-ai/aeropilot/model"
	"github.com/aeropilot-ai/aeropilot/tool"
)

// GraphConfig is the YAML document describing an agent graph.
type GraphConfig struct {
	// Root names the entry agent of the graph.
	Root string `yaml:"root"`
	// MaxTurns is the run turn budget; zero keeps the runner default.
	MaxTurns int `yaml:"max_turns"`
	// Agents declares every agent of the graph.
	Agents []AgentConfig `yaml:"agents"`
}

// AgentConfig declares one agent. Tools and guardrails are referenced by
// registry name; handoffs by agent name, resolved in a second pass so graphs
// may contain mutual references.
type AgentConfig struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Instruction string           `yaml:"instruction"`
	Tools       []string         `yaml:"tools"`
	Handoffs    []string         `yaml:"handoffs"`
	Guardrails  GuardrailsConfig `yaml:"guardrails"`
	ToolUse     ToolUseConfig    `yaml:"tool_use"`
	Output      OutputConfig     `yaml:"output"`
	Settings    SettingsConfig   `yaml:"settings"`
}

// GuardrailsConfig references input/output guardrails by registry name.
type GuardrailsConfig struct {
	Input  []string `yaml:"input"`
	Output []string `yaml:"output"`
}

// ToolUseConfig selects the tool-use policy. Policy is one of
// "reason_after_tools" (default), "stop_on_first_tool" or
// "stop_on_named_tools" (with Tools naming the stop set).
type ToolUseConfig struct {
	Policy string   `yaml:"policy"`
	Tools  []string `yaml:"tools"`
}

// OutputConfig declares the output contract; a nil schema means free text.
type OutputConfig struct {
	Schema map[string]any `yaml:"schema"`
}

// SettingsConfig carries model parameters.
type SettingsConfig struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int64   `yaml:"max_tokens"`
}

// Registry resolves tool and guardrail references appearing in a graph
// document against concrete implementations supplied by the caller.
type Registry struct {
	tools      map[string]tool.Tool
	guardrails map[string]guardrail.Guardrail
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:      map[string]tool.Tool{},
		guardrails: map[string]guardrail.Guardrail{},
	}
}

// RegisterTool makes t resolvable under its own name.
func (r *Registry) RegisterTool(t tool.Tool) {
	r.tools[t.Name()] = t
}

// RegisterGuardrail makes g resolvable under its own name.
func (r *Registry) RegisterGuardrail(g guardrail.Guardrail) {
	r.guardrails[g.Name()] = g
}

// Graph is a fully wired agent graph loaded from configuration.
type Graph struct {
	// Root is the entry agent.
	Root *agent.Definition
	// Agents maps every declared agent by name.
	Agents map[string]*agent.Definition
	// MaxTurns is the configured turn budget, zero when unset.
	MaxTurns int
}

// LoadFile reads and resolves a YAML graph document from path.
func LoadFile(path string, reg *Registry) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading graph config: %w", err)
	}
	return Load(data, reg)
}

// Load parses and resolves a YAML graph document. Validation failures (unknown
// tool, guardrail or handoff references, duplicate agents, missing root) fail
// loading; nothing is repaired silently.
func Load(data []byte, reg *Registry) (*Graph, error) {
	if reg == nil {
		reg = NewRegistry()
	}

	var cfg GraphConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing graph config: %w", err)
	}

	if len(cfg.Agents) == 0 {
		return nil, fmt.Errorf("graph config declares no agents")
	}

	// Pass 1: construct every definition without handoff edges.
	agents := make(map[string]*agent.Definition, len(cfg.Agents))
	for _, ac := range cfg.Agents {
		if _, exists := agents[ac.Name]; exists {
			return nil, fmt.Errorf("duplicate agent %q in graph config", ac.Name)
		}

		def, err := buildAgent(ac, reg)
		if err != nil {
			return nil, err
		}
		agents[ac.Name] = def
	}

	// Pass 2: resolve handoff edges now that every target exists.
	for _, ac := range cfg.Agents {
		def := agents[ac.Name]
		for _, targetName := range ac.Handoffs {
			target, ok := agents[targetName]
			if !ok {
				return nil, fmt.Errorf("agent %q: unknown handoff target %q", ac.Name, targetName)
			}
			if err := def.RegisterHandoff(target); err != nil {
				return nil, err
			}
		}
	}

	rootName := cfg.Root
	if rootName == "" {
		rootName = cfg.Agents[0].Name
	}
	root, ok := agents[rootName]
	if !ok {
		return nil, fmt.Errorf("root agent %q not declared", rootName)
	}

	if err := root.ValidateGraph(); err != nil {
		return nil, err
	}

	return &Graph{Root: root, Agents: agents, MaxTurns: cfg.MaxTurns}, nil
}

// buildAgent constructs one definition from its declaration, resolving tool
// and guardrail references against the registry.
func buildAgent(ac AgentConfig, reg *Registry) (*agent.Definition, error) {
	var optFns []func(o *agent.Options)

	if ac.Description != "" {
		optFns = append(optFns, agent.WithDescription(ac.Description))
	}
	if ac.Instruction != "" {
		optFns = append(optFns, agent.WithInstructionText(ac.Instruction))
	}

	for _, name := range ac.Tools {
		t, ok := reg.tools[name]
		if !ok {
			return nil, fmt.Errorf("agent %q: unknown tool %q", ac.Name, name)
		}
		optFns = append(optFns, agent.WithTools(t))
	}

	for _, name := range ac.Guardrails.Input {
		g, ok := reg.guardrails[name]
		if !ok {
			return nil, fmt.Errorf("agent %q: unknown input guardrail %q", ac.Name, name)
		}
		optFns = append(optFns, agent.WithInputGuardrails(g))
	}
	for _, name := range ac.Guardrails.Output {
		g, ok := reg.guardrails[name]
		if !ok {
			return nil, fmt.Errorf("agent %q: unknown output guardrail %q", ac.Name, name)
		}
		optFns = append(optFns, agent.WithOutputGuardrails(g))
	}

	policy, err := buildPolicy(ac)
	if err != nil {
		return nil, err
	}
	optFns = append(optFns, agent.WithToolUsePolicy(policy))

	if ac.Output.Schema != nil {
		optFns = append(optFns, agent.WithOutputContract(agent.StructuredOutput(normalizeSchema(ac.Output.Schema))))
	}

	if ac.Settings != (SettingsConfig{}) {
		optFns = append(optFns, agent.WithSettings(model.Settings{
			Model:       ac.Settings.Model,
			Temperature: ac.Settings.Temperature,
			MaxTokens:   ac.Settings.MaxTokens,
		}))
	}

	return agent.New(ac.Name, optFns...)
}

// buildPolicy maps the declared policy name onto the closed variant set.
func buildPolicy(ac AgentConfig) (agent.ToolUsePolicy, error) {
	switch ac.ToolUse.Policy {
	case "", "reason_after_tools":
		return agent.ReasonAfterTools(), nil
	case "stop_on_first_tool":
		return agent.StopOnFirstTool(), nil
	case "stop_on_named_tools":
		if len(ac.ToolUse.Tools) == 0 {
			return nil, fmt.Errorf("agent %q: stop_on_named_tools requires a tool list", ac.Name)
		}
		return agent.StopOnNamedTools(ac.ToolUse.Tools...), nil
	default:
		return nil, fmt.Errorf("agent %q: unknown tool_use policy %q", ac.Name, ac.ToolUse.Policy)
	}
}

// normalizeSchema rewrites nested map[any]any values produced by some YAML
// shapes into map[string]any so the schema is usable as JSON schema.
func normalizeSchema(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return normalizeSchema(val)
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, nested := range val {
			out[fmt.Sprintf("%v", k)] = normalizeValue(nested)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}
