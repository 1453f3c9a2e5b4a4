// Package model defines the gateway contract between the execution loop and
// language model providers: a normalized Request (instructions, conversation,
// tool schema, handoff targets, opaque settings) and a Response that is
// exactly one of final text, structured output, tool call requests, or a
// handoff declaration.
//
// Provider adapters live in the openai and anthropic subpackages; Mock is a
// deterministic in-memory gateway for tests and examples.
package model
