// Package dto contains data transfer objects for application layer use cases.
package dto

import (
	"github.com/reglet-dev/b2cdeploy/internal/domain/values"
)

// BuildPoliciesRequest encapsulates all inputs needed to build policies for one environment.
type BuildPoliciesRequest struct {
	InputFolder  string
	OutputFolder string

	// SettingsFile is the settings file name inside InputFolder (empty = default)
	SettingsFile string

	Environment string

	// OverrideLines are raw "key=value" lines supplied by the caller
	OverrideLines []string

	// Strict fails the build when a placeholder stays unresolved
	Strict bool

	Metadata RequestMetadata
}

// PlanDeploymentRequest encapsulates inputs for computing a deployment plan.
type PlanDeploymentRequest struct {
	InputFolder string
	Filters     FilterOptions
	Metadata    RequestMetadata
}

// FilterOptions defines filters for document selection.
type FilterOptions struct {
	FilterExpression string
	IncludePolicies  []string
	ExcludePolicies  []string
	IncludeAncestors bool
}

// IsEmpty reports whether no filter was requested.
func (f FilterOptions) IsEmpty() bool {
	return f.FilterExpression == "" && len(f.IncludePolicies) == 0 && len(f.ExcludePolicies) == 0
}

// ExecutionOptions controls how the plan is executed.
type ExecutionOptions struct {
	// Parallel uploads the documents of one wave concurrently
	Parallel bool

	// MaxConcurrent limits parallel uploads within a wave (0 = default)
	MaxConcurrent int
}

// Credentials identify the confidential client used to publish policies.
type Credentials struct {
	// Authority is the token issuer, e.g. https://login.microsoftonline.com/contoso.onmicrosoft.com
	Authority    string
	ClientID     string
	ClientSecret string
}

// PublishPoliciesRequest encapsulates inputs for publishing policies.
type PublishPoliciesRequest struct {
	Plan        PlanDeploymentRequest
	Credentials Credentials
	Execution   ExecutionOptions

	// AutoApprove skips the confirmation prompt
	AutoApprove bool

	Metadata RequestMetadata
}

// RequestMetadata contains metadata for request tracking.
type RequestMetadata struct {
	// RunID uniquely identifies this invocation
	RunID values.RunID
}
