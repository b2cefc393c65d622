package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/reglet-dev/b2cdeploy/internal/application/dto"
	"github.com/reglet-dev/b2cdeploy/internal/domain/entities"
)

const ruleWidth = 80

// TableFormatter formats results as human-readable text.
type TableFormatter struct {
	writer io.Writer

	bold   *color.Color
	gray   *color.Color
	green  *color.Color
	red    *color.Color
	yellow *color.Color
	blue   *color.Color
}

// NewTableFormatter creates a new table formatter. When enableColor is
// true, color still follows fatih/color's terminal detection.
func NewTableFormatter(w io.Writer, enableColor bool) *TableFormatter {
	f := &TableFormatter{
		writer: w,
		bold:   color.New(color.Bold),
		gray:   color.New(color.FgHiBlack),
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
		blue:   color.RGB(50, 108, 229),
	}
	if !enableColor {
		for _, c := range []*color.Color{f.bold, f.gray, f.green, f.red, f.yellow, f.blue} {
			c.DisableColor()
		}
	}
	return f
}

// FormatPlan writes the waves of a deployment plan, or the documents that
// prevented one from being built.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) FormatPlan(plan *dto.PlanDeploymentResponse) error {
	f.header("Deployment plan: " + plan.InputFolder)

	if len(plan.Unresolved) > 0 {
		f.formatUnresolved(plan.Unresolved)
		return nil
	}

	if plan.Plan.DocumentCount() == 0 {
		fmt.Fprintln(f.writer, "No policies selected.")
		return nil
	}

	width := idWidth(plan.Plan)
	for _, wave := range plan.Plan.Waves {
		fmt.Fprintln(f.writer, f.bold.Sprintf("Wave %d", wave.Level))
		for _, doc := range wave.Documents {
			f.formatDocument(doc, f.blue.Sprint("•"), width)
		}
	}

	f.rule()
	fmt.Fprintf(f.writer, "%d of %d policies in %d waves\n",
		plan.Selected, plan.CorpusSize, len(plan.Plan.Waves))
	return nil
}

// FormatPublish writes the outcome of each document in the plan.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) FormatPublish(result *dto.PublishPoliciesResponse) error {
	if result.Plan == nil {
		return nil
	}
	if len(result.Plan.Unresolved) > 0 || result.Plan.Plan == nil {
		return f.FormatPlan(result.Plan)
	}

	f.header("Publish: " + result.Plan.InputFolder)

	if result.Declined {
		fmt.Fprintln(f.writer, f.yellow.Sprint("Publishing declined, nothing was uploaded."))
		return nil
	}
	if result.Plan.Selected == 0 {
		fmt.Fprintln(f.writer, "No policies selected.")
		return nil
	}

	published := make(map[string]bool, len(result.Report.Published))
	for _, id := range result.Report.Published {
		published[id] = true
	}

	width := idWidth(result.Plan.Plan)
	for _, wave := range result.Plan.Plan.Waves {
		fmt.Fprintln(f.writer, f.bold.Sprintf("Wave %d", wave.Level))
		for _, doc := range wave.Documents {
			f.formatDocument(doc, f.statusSymbol(doc.ID, result.Report, published), width)
		}
	}

	f.rule()
	f.formatPublishSummary(result)
	return nil
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatPublishSummary(result *dto.PublishPoliciesResponse) {
	report := result.Report
	if report.FailedID == "" && report.Completed == result.Plan.Selected {
		fmt.Fprintln(f.writer, f.green.Sprintf("Successfully uploaded %d policies", report.Completed))
		fmt.Fprintf(f.writer, "Duration: %s\n", report.Duration.Round(time.Millisecond))
		return
	}

	if report.FailedID != "" {
		fmt.Fprintf(f.writer, "%s uploaded %d of %d policies, stopped at %s\n",
			f.red.Sprint("Failed:"), report.Completed, result.Plan.Selected, report.FailedID)
		return
	}
	fmt.Fprintf(f.writer, "%s uploaded %d of %d policies\n",
		f.yellow.Sprint("Interrupted:"), report.Completed, result.Plan.Selected)
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatUnresolved(docs []entities.UnresolvedDocument) {
	fmt.Fprintln(f.writer, f.red.Sprintf("%d policies cannot be deployed due to missing base policy:", len(docs)))
	for _, doc := range docs {
		fmt.Fprintf(f.writer, "  %s %s %s %s\n",
			f.red.Sprint("✗"),
			doc.ID,
			f.gray.Sprintf("(base policy %s)", doc.ParentID),
			f.gray.Sprint(doc.SourceFile))
	}
	f.rule()
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatDocument(doc entities.PolicyDocument, symbol string, width int) {
	base := ""
	if !doc.IsRoot() {
		base = " ← " + doc.ParentID
	}
	fmt.Fprintf(f.writer, "  %s %-*s %s%s\n", symbol, width, doc.ID, f.gray.Sprint(doc.SourceFile), f.gray.Sprint(base))
}

func (f *TableFormatter) statusSymbol(id string, report entities.PublishReport, published map[string]bool) string {
	switch {
	case published[id]:
		return f.green.Sprint("✓")
	case id == report.FailedID:
		return f.red.Sprint("✗")
	default:
		return f.gray.Sprint("⊘")
	}
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) header(title string) {
	f.rule()
	fmt.Fprintln(f.writer, f.bold.Sprint(title))
	f.rule()
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) rule() {
	fmt.Fprintln(f.writer, f.gray.Sprint(strings.Repeat("─", ruleWidth)))
}

func idWidth(plan *entities.DeploymentPlan) int {
	width := 0
	if plan == nil {
		return width
	}
	for _, wave := range plan.Waves {
		for _, doc := range wave.Documents {
			width = max(width, len(doc.ID))
		}
	}
	return width
}
