package agent

import (
	"github.com/aeropilot-ai/aeropilot/core"
	"github.com/aeropilot-ai/aeropilot/internal/util"
)

// Provider supplies dynamic instruction text at runtime. Implementations can
// derive instructions from run state, environment, time of day, etc.
type Provider interface {
	Instruction(*core.RunContext) (string, error)
}

// ProviderFunc is a functional adapter to allow ordinary functions to be used
// as Providers.
type ProviderFunc func(*core.RunContext) (string, error)

// Instruction implements Provider.
func (f ProviderFunc) Instruction(rc *core.RunContext) (string, error) { return f(rc) }

// Instruction represents either a static instruction string or a dynamic
// provider. Static text may reference run state via {{.key}} template
// expressions. Either way the instruction is resolved fresh on every
// reasoning turn, never cached, since run state mutates between turns.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(*core.RunContext) (string, error)) Instruction {
	return Instruction{provider: ProviderFunc(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text for the current turn, invoking the
// provider or rendering the static template against a state snapshot.
func (i Instruction) Resolve(rc *core.RunContext) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(rc)
	}
	if rc == nil {
		return i.text, nil
	}
	return util.RenderTemplate(i.text, rc.StateSnapshot())
}
