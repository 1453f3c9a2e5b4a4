package agent

import (
	"fmt"
	"sort"

	"github.com/aeropilot-ai/aeropilot/core"
	"github.com/aeropilot-ai/aeropilot/guardrail"
	"github.com/aeropilot-ai/aeropilot/model"
	"github.com/aeropilot-ai/aeropilot/tool"
)

// Options configures a Definition instance. Use functional options with New
// to override defaults.
type Options struct {
	Description      string
	Instruction      Instruction
	Tools            []tool.Tool
	Handoffs         []*Definition
	InputGuardrails  []guardrail.Guardrail
	OutputGuardrails []guardrail.Guardrail
	ToolUse          ToolUsePolicy
	Output           OutputContract
	Settings         model.Settings
}

// WithDescription sets the human-readable description exposed to delegating
// agents.
func WithDescription(d string) func(o *Options) {
	return func(o *Options) { o.Description = d }
}

// WithInstruction sets the agent's instruction.
func WithInstruction(i Instruction) func(o *Options) {
	return func(o *Options) { o.Instruction = i }
}

// WithInstructionText sets a static instruction string.
func WithInstructionText(text string) func(o *Options) {
	return func(o *Options) { o.Instruction = NewInstructionFromText(text) }
}

// WithInstructionFunc sets a dynamic instruction provider function.
func WithInstructionFunc(f func(*core.RunContext) (string, error)) func(o *Options) {
	return func(o *Options) { o.Instruction = NewInstructionFromFunc(f) }
}

// WithTools adds tools to the agent's capability set.
func WithTools(tools ...tool.Tool) func(o *Options) {
	return func(o *Options) { o.Tools = append(o.Tools, tools...) }
}

// WithHandoffs adds delegation targets.
func WithHandoffs(targets ...*Definition) func(o *Options) {
	return func(o *Options) { o.Handoffs = append(o.Handoffs, targets...) }
}

// WithInputGuardrails appends input guardrails in declaration order.
func WithInputGuardrails(guardrails ...guardrail.Guardrail) func(o *Options) {
	return func(o *Options) { o.InputGuardrails = append(o.InputGuardrails, guardrails...) }
}

// WithOutputGuardrails appends output guardrails in declaration order.
func WithOutputGuardrails(guardrails ...guardrail.Guardrail) func(o *Options) {
	return func(o *Options) { o.OutputGuardrails = append(o.OutputGuardrails, guardrails...) }
}

// WithToolUsePolicy sets the tool-use policy.
func WithToolUsePolicy(p ToolUsePolicy) func(o *Options) {
	return func(o *Options) { o.ToolUse = p }
}

// WithOutputContract sets the output contract.
func WithOutputContract(c OutputContract) func(o *Options) {
	return func(o *Options) { o.Output = c }
}

// WithSettings sets model parameters passed opaquely to the gateway.
func WithSettings(s model.Settings) func(o *Options) {
	return func(o *Options) { o.Settings = s }
}

// Definition describes one reasoning unit: identity, instructions, allowed
// tools, allowed handoff targets, guardrails, tool-use policy, output contract
// and model settings. Definitions are created at configuration time and are
// logically immutable for the duration of a run; Derive produces a new value
// with overrides rather than mutating an existing one.
type Definition struct {
	name             string
	description      string
	instruction      Instruction
	tools            map[string]tool.Tool
	handoffs         map[string]*Definition
	inputGuardrails  []guardrail.Guardrail
	outputGuardrails []guardrail.Guardrail
	toolUse          ToolUsePolicy
	output           OutputContract
	settings         model.Settings
}

// New creates a validated Definition. Validation fails fast: an empty name,
// duplicate tool names, nil handoff targets or a duplicate identity in the
// reachable handoff graph are configuration errors reported immediately
// rather than repaired.
func New(name string, optFns ...func(o *Options)) (*Definition, error) {
	opts := Options{
		Instruction: NewInstructionFromText(fmt.Sprintf("You are %s, a helpful assistant.", name)),
		ToolUse:     ReasonAfterTools(),
		Output:      FreeText(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if name == "" {
		return nil, fmt.Errorf("agent name must not be empty")
	}
	if opts.ToolUse == nil {
		opts.ToolUse = ReasonAfterTools()
	}

	d := &Definition{
		name:             name,
		description:      opts.Description,
		instruction:      opts.Instruction,
		tools:            map[string]tool.Tool{},
		handoffs:         map[string]*Definition{},
		inputGuardrails:  append([]guardrail.Guardrail(nil), opts.InputGuardrails...),
		outputGuardrails: append([]guardrail.Guardrail(nil), opts.OutputGuardrails...),
		toolUse:          opts.ToolUse,
		output:           opts.Output,
		settings:         opts.Settings,
	}

	for _, t := range opts.Tools {
		if err := d.RegisterTool(t); err != nil {
			return nil, err
		}
	}
	for _, target := range opts.Handoffs {
		if err := d.RegisterHandoff(target); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// MustNew is New that panics on a configuration error. Intended for wiring
// static graphs in examples and tests.
func MustNew(name string, optFns ...func(o *Options)) *Definition {
	d, err := New(name, optFns...)
	if err != nil {
		panic(err)
	}
	return d
}

// RegisterTool adds a tool to the capability set. Tool names must be unique
// within one Definition and must not collide with the transfer function.
func (d *Definition) RegisterTool(t tool.Tool) error {
	if t == nil || t.Name() == "" {
		return fmt.Errorf("agent %q: tool must have a name", d.name)
	}
	if t.Name() == model.TransferFunctionName {
		return fmt.Errorf("agent %q: tool name %q is reserved", d.name, t.Name())
	}
	if _, exists := d.tools[t.Name()]; exists {
		return fmt.Errorf("agent %q: duplicate tool %q", d.name, t.Name())
	}
	d.tools[t.Name()] = t
	return nil
}

// RegisterHandoff adds a delegation target. Mutually referring graphs are
// wired by registering handoffs after construction; ValidateGraph should run
// once the graph is complete.
func (d *Definition) RegisterHandoff(target *Definition) error {
	if target == nil {
		return fmt.Errorf("agent %q: handoff target must not be nil", d.name)
	}
	if target.name == d.name {
		return fmt.Errorf("agent %q: cannot hand off to itself", d.name)
	}
	if _, exists := d.handoffs[target.name]; exists {
		return fmt.Errorf("agent %q: duplicate handoff target %q", d.name, target.name)
	}
	d.handoffs[target.name] = target
	return d.ValidateGraph()
}

// ValidateGraph checks that every identity in the reachable handoff graph is
// unique: two distinct definitions sharing a name would defeat stack-based
// cycle detection at run time.
func (d *Definition) ValidateGraph() error {
	seen := map[string]*Definition{}

	var walk func(cur *Definition) error
	walk = func(cur *Definition) error {
		if prev, ok := seen[cur.name]; ok {
			if prev != cur {
				return fmt.Errorf("duplicate agent identity %q in handoff graph", cur.name)
			}
			return nil
		}
		seen[cur.name] = cur
		for _, next := range cur.handoffs {
			if err := walk(next); err != nil {
				return err
			}
		}
		return nil
	}

	return walk(d)
}

// Derive returns a new Definition based on the receiver with optFns applied
// on top. The receiver is never mutated.
func (d *Definition) Derive(optFns ...func(o *Options)) (*Definition, error) {
	base := func(o *Options) {
		o.Description = d.description
		o.Instruction = d.instruction
		for _, name := range d.toolNames() {
			o.Tools = append(o.Tools, d.tools[name])
		}
		for _, name := range d.handoffNames() {
			o.Handoffs = append(o.Handoffs, d.handoffs[name])
		}
		o.InputGuardrails = append([]guardrail.Guardrail(nil), d.inputGuardrails...)
		o.OutputGuardrails = append([]guardrail.Guardrail(nil), d.outputGuardrails...)
		o.ToolUse = d.toolUse
		o.Output = d.output
		o.Settings = d.settings
	}

	return New(d.name, append([]func(o *Options){base}, optFns...)...)
}

// Name returns the agent's unique identity.
func (d *Definition) Name() string { return d.name }

// Description returns the human-readable description.
func (d *Definition) Description() string { return d.description }

// ResolveInstructions produces the system prompt for the current turn.
func (d *Definition) ResolveInstructions(rc *core.RunContext) (string, error) {
	return d.instruction.Resolve(rc)
}

// Tool retrieves a registered tool by name.
func (d *Definition) Tool(name string) (tool.Tool, bool) {
	t, ok := d.tools[name]
	return t, ok
}

// Tools returns a copy of the capability set.
func (d *Definition) Tools() map[string]tool.Tool {
	out := make(map[string]tool.Tool, len(d.tools))
	for name, t := range d.tools {
		out[name] = t
	}
	return out
}

// ToolDefinitions renders the capability set as gateway tool definitions,
// sorted by name for deterministic prompts.
func (d *Definition) ToolDefinitions() []model.ToolDefinition {
	names := d.toolNames()
	defs := make([]model.ToolDefinition, 0, len(names))
	for _, name := range names {
		t := d.tools[name]
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

// HandoffTarget retrieves a declared delegation target by name.
func (d *Definition) HandoffTarget(name string) (*Definition, bool) {
	t, ok := d.handoffs[name]
	return t, ok
}

// Handoffs returns a copy of the declared delegation targets.
func (d *Definition) Handoffs() map[string]*Definition {
	out := make(map[string]*Definition, len(d.handoffs))
	for name, t := range d.handoffs {
		out[name] = t
	}
	return out
}

// HandoffDefinitions renders the delegation targets as gateway handoff
// definitions, sorted by name for deterministic prompts.
func (d *Definition) HandoffDefinitions() []model.HandoffDefinition {
	names := d.handoffNames()
	defs := make([]model.HandoffDefinition, 0, len(names))
	for _, name := range names {
		defs = append(defs, model.HandoffDefinition{
			Target:      name,
			Description: d.handoffs[name].description,
		})
	}
	return defs
}

// InputGuardrails returns the ordered input guardrail list.
func (d *Definition) InputGuardrails() []guardrail.Guardrail {
	return append([]guardrail.Guardrail(nil), d.inputGuardrails...)
}

// OutputGuardrails returns the ordered output guardrail list.
func (d *Definition) OutputGuardrails() []guardrail.Guardrail {
	return append([]guardrail.Guardrail(nil), d.outputGuardrails...)
}

// ToolUse returns the tool-use policy.
func (d *Definition) ToolUse() ToolUsePolicy { return d.toolUse }

// Output returns the output contract.
func (d *Definition) Output() OutputContract { return d.output }

// Settings returns the model parameters.
func (d *Definition) Settings() model.Settings { return d.settings }

func (d *Definition) toolNames() []string {
	names := make([]string, 0, len(d.tools))
	for name := range d.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d *Definition) handoffNames() []string {
	names := make([]string, 0, len(d.handoffs))
	for name := range d.handoffs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
