// Package core defines the shared data model of the runtime: events and their
// closed part set, guardrail verdicts, tool call records, handoff requests,
// the RunContext threaded through a run and all of its nested sub-runs, and
// the terminal RunResult.
//
// Types here are deliberately free of orchestration logic; the runner package
// drives the execution loop on top of them.
package core
