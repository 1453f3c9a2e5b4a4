// Package runner implements the execution loop driving agent runs: input
// guardrails, reasoning turns against the model gateway, concurrent tool
// episodes resolved through the agent's tool-use policy, stack-disciplined
// handoff recursion and output guardrails, all bounded by a shared turn
// budget.
//
// Run failures form a closed taxonomy: guardrail.RejectionError (policy
// decision), TurnLimitError, DelegationCycleError, UnknownTargetError
// (configuration faults), model.CallError and tool.ToolError (collaborator
// failures). Nested failures propagate unchanged to the caller.
package runner
