// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"
	"io"

	"github.com/reglet-dev/b2cdeploy/internal/application/dto"
	"github.com/reglet-dev/b2cdeploy/internal/domain/entities"
)

// DocumentSource lists and reads policy files from an input folder.
type DocumentSource interface {
	// List returns the policy file names directly inside folder, sorted by name.
	List(ctx context.Context, folder string) ([]string, error)

	// Read returns the full text of a policy file.
	Read(ctx context.Context, folder, name string) (string, error)

	// Open streams a policy file. The caller closes the reader.
	Open(ctx context.Context, folder, name string) (io.ReadCloser, error)
}

// DescriptorExtractor reads the PolicyId and base policy from a policy document.
type DescriptorExtractor interface {
	Extract(sourceFile string, r io.Reader) (entities.PolicyDocument, error)
}

// SettingsSource loads the environment settings kept next to the templates.
type SettingsSource interface {
	// Load reads fileName from folder. An empty fileName selects the default
	// settings file.
	Load(ctx context.Context, folder, fileName string) (*entities.AppSettings, error)
}

// OutputSink persists built policy documents.
type OutputSink interface {
	Write(ctx context.Context, folder, name, content string) error
}

// Uploader publishes one policy document to the remote tenant.
type Uploader interface {
	Upload(ctx context.Context, policyID string, body io.Reader) error
}

// UploaderFactory creates an uploader bound to an access token.
type UploaderFactory interface {
	NewUploader(accessToken string) Uploader
}

// PlanExecutor walks a deployment plan wave by wave.
type PlanExecutor interface {
	Execute(ctx context.Context, plan *entities.DeploymentPlan, upload UploadFunc) (entities.PublishReport, error)
}

// UploadFunc publishes a single document.
type UploadFunc func(ctx context.Context, doc entities.PolicyDocument) error

// Confirmer asks the operator to approve an action.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// OutputFormatter renders plan and publish results.
type OutputFormatter interface {
	FormatPlan(plan *dto.PlanDeploymentResponse) error
	FormatPublish(result *dto.PublishPoliciesResponse) error
}

// PlanExecutorFactory selects a plan executor for the requested execution options.
type PlanExecutorFactory interface {
	NewExecutor(opts dto.ExecutionOptions) PlanExecutor
}
