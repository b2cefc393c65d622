package dto

import (
	"time"

	"github.com/reglet-dev/b2cdeploy/internal/domain/entities"
	"github.com/reglet-dev/b2cdeploy/internal/domain/values"
)

// BuildPoliciesResponse contains the result of a policy build.
type BuildPoliciesResponse struct {
	OutputFolder string   `json:"output_folder" yaml:"output_folder"`
	Environment  string   `json:"environment" yaml:"environment"`
	Tenant       string   `json:"tenant" yaml:"tenant"`
	Written      []string `json:"written" yaml:"written"`
	Production   bool     `json:"production" yaml:"production"`

	Metadata ResponseMetadata `json:"metadata" yaml:"metadata"`
}

// PlanDeploymentResponse contains a deployment plan, or the documents that
// prevented one from being built.
type PlanDeploymentResponse struct {
	Plan        *entities.DeploymentPlan      `json:"plan,omitempty" yaml:"plan,omitempty"`
	InputFolder string                        `json:"input_folder" yaml:"input_folder"`
	Unresolved  []entities.UnresolvedDocument `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
	CorpusSize  int                           `json:"corpus_size" yaml:"corpus_size"`
	Selected    int                           `json:"selected" yaml:"selected"`

	Metadata ResponseMetadata `json:"metadata" yaml:"metadata"`
}

// PublishPoliciesResponse contains the result of publishing a plan.
type PublishPoliciesResponse struct {
	Plan   *PlanDeploymentResponse `json:"plan" yaml:"plan"`
	Report entities.PublishReport  `json:"report" yaml:"report"`

	// Declined is set when the operator rejected the confirmation prompt
	Declined bool `json:"declined,omitempty" yaml:"declined,omitempty"`

	Metadata ResponseMetadata `json:"metadata" yaml:"metadata"`
}

// ResponseMetadata contains metadata about the response.
type ResponseMetadata struct {
	// RunID from the original request
	RunID values.RunID `json:"run_id" yaml:"run_id"`

	// ProcessedAt is when the request was processed
	ProcessedAt time.Time `json:"processed_at" yaml:"processed_at"`

	// Duration is how long the request took
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// NewResponseMetadata stamps a response for the given run.
func NewResponseMetadata(runID values.RunID, started time.Time) ResponseMetadata {
	return ResponseMetadata{
		RunID:       runID,
		ProcessedAt: time.Now(),
		Duration:    time.Since(started),
	}
}
