// Package agent defines the configuration model for reasoning units: the
// Definition (identity, instructions, tools, handoff targets, guardrails,
// tool-use policy, output contract, model settings), the Instruction union of
// static text and dynamic providers, the closed ToolUsePolicy variant set and
// the OutputContract.
//
// Definitions are validated fail-fast at construction and are logically
// immutable during a run; Derive produces modified copies.
package agent
