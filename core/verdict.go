package core

// Verdict is the outcome of evaluating a single guardrail unit at one stage.
// A run must never proceed past a stage in which any unit produced
// Passed == false.
type Verdict struct {
	Passed bool           `json:"passed"`
	Info   map[string]any `json:"info,omitempty"` // Arbitrary structured payload (abort reason on failure)
}

// Pass returns a passing verdict with optional info payload.
func Pass(info map[string]any) Verdict { return Verdict{Passed: true, Info: info} }

// Reject returns a failing verdict carrying the abort reason payload.
func Reject(info map[string]any) Verdict { return Verdict{Passed: false, Info: info} }
