// Package guardrail provides pre- and post-execution policy checks for agent
// runs. Guardrails inspect the user input (before any reasoning) or the
// candidate final output (before termination) and return pass/reject verdicts;
// the Engine evaluates a stage's guardrails concurrently with deterministic
// verdict ordering and surfaces the first rejection as a RejectionError.
package guardrail
