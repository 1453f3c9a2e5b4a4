// Package config loads agent graphs from YAML documents: agent declarations
// with instructions, tool and guardrail references, handoff edges, tool-use
// policy, output schema and model settings. References are resolved against a
// caller-supplied Registry; handoffs resolve in a second pass so graphs may
// refer to agents declared later. Any dangling reference fails loading.
package config
