package output

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"
	"github.com/reglet-dev/b2cdeploy/internal/application/dto"
	"github.com/reglet-dev/b2cdeploy/internal/domain/entities"
	"github.com/reglet-dev/b2cdeploy/internal/version"
)

// SARIF rule ids.
const (
	RuleUnresolvedBasePolicy = "B2C001"
	RuleUploadFailed         = "B2C002"
	RuleDeployable           = "B2C100"
)

// SARIFFormatter formats results as SARIF 2.1.0 JSON. Each policy becomes a
// result located at its source file, so code scanning tools can annotate
// the policy that broke a deployment.
type SARIFFormatter struct {
	writer io.Writer
}

// NewSARIFFormatter creates a new SARIF formatter.
func NewSARIFFormatter(writer io.Writer) *SARIFFormatter {
	return &SARIFFormatter{writer: writer}
}

// FormatPlan writes a pass result per planned policy and an error result
// per policy whose base policy cannot be deployed.
func (f *SARIFFormatter) FormatPlan(plan *dto.PlanDeploymentResponse) error {
	run := newRun()

	if plan.Plan != nil {
		for _, wave := range plan.Plan.Waves {
			for _, doc := range wave.Documents {
				result := newResult(RuleDeployable, "note", "pass",
					fmt.Sprintf("%s is deployable in wave %d", doc.ID, wave.Level),
					plan.InputFolder, doc.SourceFile)
				withProperty(result, "wave", wave.Level)
				run.AddResult(result)
			}
		}
	}
	addUnresolved(run, plan)

	return f.write(run, plan.Metadata.RunID.String(), len(plan.Unresolved) == 0)
}

// FormatPublish writes a pass result per published policy and an error
// result for the upload that aborted the run.
func (f *SARIFFormatter) FormatPublish(result *dto.PublishPoliciesResponse) error {
	run := newRun()
	if result.Plan == nil {
		return f.write(run, result.Metadata.RunID.String(), true)
	}
	addUnresolved(run, result.Plan)

	files := make(map[string]string)
	if result.Plan.Plan != nil {
		for _, wave := range result.Plan.Plan.Waves {
			for _, doc := range wave.Documents {
				files[doc.ID] = doc.SourceFile
			}
		}
	}

	folder := result.Plan.InputFolder
	for _, id := range result.Report.Published {
		run.AddResult(newResult(RuleDeployable, "note", "pass",
			fmt.Sprintf("%s uploaded", id), folder, files[id]))
	}
	if id := result.Report.FailedID; id != "" {
		run.AddResult(newResult(RuleUploadFailed, "error", "fail",
			fmt.Sprintf("upload of %s failed; %d policies were published before the run stopped", id, result.Report.Completed),
			folder, files[id]))
	}

	ok := result.Report.FailedID == "" && len(result.Plan.Unresolved) == 0
	return f.write(run, result.Metadata.RunID.String(), ok)
}

func (f *SARIFFormatter) write(run *sarif.Run, runID string, successful bool) error {
	invocation := sarif.NewInvocation()
	invocation.ExecutionSuccessful = &successful
	props := sarif.NewPropertyBag()
	props.Add("runId", runID)
	invocation.WithProperties(props)
	run.AddInvocation(invocation)

	report := sarif.NewReport()
	report.AddRun(run)

	if err := report.Write(f.writer); err != nil {
		return fmt.Errorf("failed to write SARIF output: %w", err)
	}

	_, err := f.writer.Write([]byte("\n"))
	return err
}

func newRun() *sarif.Run {
	run := sarif.NewRunWithInformationURI("b2cdeploy", "https://github.com/reglet-dev/b2cdeploy")
	v := version.Get().Version
	run.Tool.Driver.Version = &v

	run.Tool.Driver.AddRule(newRule(RuleUnresolvedBasePolicy, "UnresolvedBasePolicy",
		"The policy's base policy is neither in the corpus nor deployable", "error"))
	run.Tool.Driver.AddRule(newRule(RuleUploadFailed, "UploadFailed",
		"The policy was rejected by Microsoft Graph or could not be sent", "error"))
	run.Tool.Driver.AddRule(newRule(RuleDeployable, "Deployable",
		"The policy can be deployed after its base policy", "note"))
	return run
}

func newRule(id, name, description, level string) *sarif.ReportingDescriptor {
	rule := sarif.NewReportingDescriptor().WithID(id)
	rule.WithName(name)
	rule.WithShortDescription(&sarif.MultiformatMessageString{Text: &description})
	rule.WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: level})
	return rule
}

func newResult(ruleID, level, kind, message, folder, file string) *sarif.Result {
	result := sarif.NewRuleResult(ruleID)
	result.Level = level
	result.Kind = kind
	result.Message = sarif.NewTextMessage(message)

	if file != "" {
		uri := filepath.ToSlash(filepath.Join(folder, file))
		pLoc := sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewArtifactLocation().WithURI(uri))
		result.Locations = []*sarif.Location{sarif.NewLocation().WithPhysicalLocation(pLoc)}
	}
	return result
}

func withProperty(result *sarif.Result, key string, value any) {
	props := sarif.NewPropertyBag()
	props.Add(key, value)
	result.WithProperties(props)
}

func addUnresolved(run *sarif.Run, plan *dto.PlanDeploymentResponse) {
	for _, doc := range plan.Unresolved {
		result := newResult(RuleUnresolvedBasePolicy, "error", "fail",
			unresolvedMessage(doc), plan.InputFolder, doc.SourceFile)
		withProperty(result, "basePolicy", doc.ParentID)
		run.AddResult(result)
	}
}

func unresolvedMessage(doc entities.UnresolvedDocument) string {
	return fmt.Sprintf("%s cannot be deployed: base policy %s is missing or not deployable", doc.ID, doc.ParentID)
}
