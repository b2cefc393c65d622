package output

import (
	"encoding/json"
	"io"

	"github.com/reglet-dev/b2cdeploy/internal/application/dto"
)

// JSONFormatter formats results as JSON.
type JSONFormatter struct {
	writer io.Writer
	indent bool
}

// NewJSONFormatter creates a new JSON formatter.
// If indent is true, the output will be pretty-printed with indentation.
func NewJSONFormatter(w io.Writer, indent bool) *JSONFormatter {
	return &JSONFormatter{
		writer: w,
		indent: indent,
	}
}

// FormatPlan writes the deployment plan as JSON.
func (f *JSONFormatter) FormatPlan(plan *dto.PlanDeploymentResponse) error {
	return f.write(plan)
}

// FormatPublish writes the publish result as JSON.
func (f *JSONFormatter) FormatPublish(result *dto.PublishPoliciesResponse) error {
	return f.write(result)
}

func (f *JSONFormatter) write(v any) error {
	var data []byte
	var err error

	if f.indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	data = append(data, '\n')
	_, err = f.writer.Write(data)
	return err
}
