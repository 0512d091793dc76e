package domain

import (
	"encoding/json"
	"fmt"
)

// GenerateOptions are the per-call knobs a job may carry for the external
// generation call. The set is deliberately closed: named fields instead of
// an open key/value bag keep the contract enumerable.
type GenerateOptions struct {
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// ParseGenerateOptions decodes the options payload stored on a job. An empty
// payload yields zero options.
func ParseGenerateOptions(raw []byte) (GenerateOptions, error) {
	var opts GenerateOptions
	if len(raw) == 0 {
		return opts, nil
	}
	if err := json.Unmarshal(raw, &opts); err != nil {
		return GenerateOptions{}, fmt.Errorf("decode generate options: %w", err)
	}
	if opts.MaxTokens < 0 {
		return GenerateOptions{}, fmt.Errorf("max_tokens must not be negative")
	}
	if opts.Temperature < 0 || opts.Temperature > 2 {
		return GenerateOptions{}, fmt.Errorf("temperature must be within [0, 2]")
	}
	return opts, nil
}
