package output

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/reglet-dev/b2cdeploy/internal/application/dto"
)

// JUnitFormatter formats results as JUnit XML so CI systems can show one
// test case per policy.
type JUnitFormatter struct {
	writer io.Writer
}

// NewJUnitFormatter creates a new JUnit formatter.
func NewJUnitFormatter(w io.Writer) *JUnitFormatter {
	return &JUnitFormatter{
		writer: w,
	}
}

// JUnitTestSuites JUnit XML structures
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      float64         `xml:"time,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Content string `xml:",chardata"`
}

type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// FormatPlan writes one test case per planned policy and one failing test
// case per policy that cannot be ordered.
func (f *JUnitFormatter) FormatPlan(plan *dto.PlanDeploymentResponse) error {
	suite := JUnitTestSuite{
		Name: "plan " + plan.InputFolder,
		Time: plan.Metadata.Duration.Seconds(),
	}

	if plan.Plan != nil {
		for _, wave := range plan.Plan.Waves {
			for _, doc := range wave.Documents {
				suite.TestCases = append(suite.TestCases, JUnitTestCase{
					Name:      doc.ID,
					ClassName: waveClass(wave.Level),
				})
			}
		}
	}

	for _, doc := range plan.Unresolved {
		suite.Failures++
		suite.TestCases = append(suite.TestCases, JUnitTestCase{
			Name:      doc.ID,
			ClassName: "unresolved",
			Failure: &JUnitFailure{
				Message: "missing base policy " + doc.ParentID,
				Content: fmt.Sprintf("%s declares base policy %s which is not deployable\n", doc.SourceFile, doc.ParentID),
			},
		})
	}

	suite.Tests = len(suite.TestCases)
	return f.write(suite)
}

// FormatPublish writes one test case per selected policy: passed when
// published, failed for the upload that aborted the run, skipped otherwise.
func (f *JUnitFormatter) FormatPublish(result *dto.PublishPoliciesResponse) error {
	if result.Plan == nil {
		return f.write(JUnitTestSuite{Name: "publish"})
	}
	if len(result.Plan.Unresolved) > 0 {
		return f.FormatPlan(result.Plan)
	}

	suite := JUnitTestSuite{
		Name: "publish " + result.Plan.InputFolder,
		Time: result.Report.Duration.Seconds(),
	}

	published := make(map[string]bool, len(result.Report.Published))
	for _, id := range result.Report.Published {
		published[id] = true
	}

	if result.Plan.Plan != nil {
		for _, wave := range result.Plan.Plan.Waves {
			for _, doc := range wave.Documents {
				tc := JUnitTestCase{Name: doc.ID, ClassName: waveClass(wave.Level)}
				switch {
				case published[doc.ID]:
				case doc.ID == result.Report.FailedID:
					suite.Failures++
					tc.Failure = &JUnitFailure{Message: "upload failed", Content: doc.SourceFile}
				default:
					suite.Skipped++
					tc.Skipped = &JUnitSkipped{Message: skipReason(result)}
				}
				suite.TestCases = append(suite.TestCases, tc)
			}
		}
	}

	suite.Tests = len(suite.TestCases)
	return f.write(suite)
}

func (f *JUnitFormatter) write(suite JUnitTestSuite) error {
	suites := JUnitTestSuites{
		Name:       "b2cdeploy",
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		Errors:     suite.Errors,
		Time:       suite.Time,
		TestSuites: []JUnitTestSuite{suite},
	}

	_, err := f.writer.Write([]byte(xml.Header))
	if err != nil {
		return err
	}

	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	if err := encoder.Encode(suites); err != nil {
		return err
	}

	_, err = f.writer.Write([]byte("\n"))
	return err
}

func waveClass(level int) string {
	return fmt.Sprintf("wave %d", level)
}

func skipReason(result *dto.PublishPoliciesResponse) string {
	if result.Declined {
		return "publishing declined"
	}
	if result.Report.FailedID != "" {
		return "not attempted after " + result.Report.FailedID + " failed"
	}
	return "not attempted"
}
