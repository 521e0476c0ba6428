package models

import "time"

// Capability is the unit of provider selection: a task a provider can serve.
type Capability string

const (
	CapabilityTextExtraction Capability = "text_extraction"
	CapabilityAnalysis       Capability = "analysis"
	CapabilityEvaluation     Capability = "evaluation"
)

// ProviderOptions carries provider-specific tuning. Unknown fields are
// ignored by adapters that do not use them.
type ProviderOptions struct {
	TimeoutSeconds    int    `json:"timeout_seconds,omitempty"`
	Model             string `json:"model,omitempty"`
	OCREngine         int    `json:"ocr_engine,omitempty"`
	MaxPages          int    `json:"max_pages,omitempty"`
	DetectOrientation bool   `json:"detect_orientation,omitempty"`
	Scale             bool   `json:"scale,omitempty"`
	IsTable           bool   `json:"is_table,omitempty"`
}

// Timeout returns the configured request timeout, or def when unset.
func (o ProviderOptions) Timeout(def time.Duration) time.Duration {
	if o.TimeoutSeconds <= 0 {
		return def
	}
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// ProviderConfig is one installed provider as stored by configuration
// management. It is read-only to the pipeline.
type ProviderConfig struct {
	Name           string          `json:"name" db:"name"`
	Capabilities   []Capability    `json:"capabilities"`
	Preferred      []Capability    `json:"preferred"`
	Active         bool            `json:"active" db:"active"`
	Options        ProviderOptions `json:"options"`
	CredentialsRef string          `json:"credentials_ref,omitempty" db:"credentials_ref"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// Supports reports whether the provider declares the given capability.
func (c ProviderConfig) Supports(cap Capability) bool {
	for _, have := range c.Capabilities {
		if have == cap {
			return true
		}
	}
	return false
}

// IsPreferredFor reports whether the provider is flagged as the preferred
// one for the given capability.
func (c ProviderConfig) IsPreferredFor(cap Capability) bool {
	for _, have := range c.Preferred {
		if have == cap {
			return true
		}
	}
	return false
}
