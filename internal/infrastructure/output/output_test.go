package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/reglet-dev/b2cdeploy/internal/application/dto"
	"github.com/reglet-dev/b2cdeploy/internal/domain/entities"
	"github.com/reglet-dev/b2cdeploy/internal/domain/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRunID = "6f1c2d3e-4b5a-4c6d-8e7f-9a0b1c2d3e4f"

func testPlanResponse() *dto.PlanDeploymentResponse {
	return &dto.PlanDeploymentResponse{
		InputFolder: "policies",
		CorpusSize:  3,
		Selected:    3,
		Plan: &entities.DeploymentPlan{Waves: []entities.DeploymentWave{
			{Level: 0, Documents: []entities.PolicyDocument{
				{ID: "B2C_1A_TrustFrameworkBase", SourceFile: "TrustFrameworkBase.xml"},
			}},
			{Level: 1, Documents: []entities.PolicyDocument{
				{ID: "B2C_1A_TrustFrameworkExtensions", ParentID: "B2C_1A_TrustFrameworkBase", SourceFile: "TrustFrameworkExtensions.xml"},
			}},
			{Level: 2, Documents: []entities.PolicyDocument{
				{ID: "B2C_1A_SignUpOrSignin", ParentID: "B2C_1A_TrustFrameworkExtensions", SourceFile: "SignUpOrSignin.xml"},
			}},
		}},
		Metadata: dto.ResponseMetadata{
			RunID:       values.MustParseRunID(testRunID),
			ProcessedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			Duration:    25 * time.Millisecond,
		},
	}
}

func testUnresolvedResponse() *dto.PlanDeploymentResponse {
	return &dto.PlanDeploymentResponse{
		InputFolder: "policies",
		CorpusSize:  2,
		Unresolved: []entities.UnresolvedDocument{
			{ID: "B2C_1A_SignUpOrSignin", ParentID: "B2C_1A_Missing", SourceFile: "SignUpOrSignin.xml"},
		},
		Metadata: dto.ResponseMetadata{RunID: values.MustParseRunID(testRunID)},
	}
}

func testPublishResponse(failedID string, published ...string) *dto.PublishPoliciesResponse {
	return &dto.PublishPoliciesResponse{
		Plan: testPlanResponse(),
		Report: entities.PublishReport{
			FailedID:  failedID,
			Published: published,
			Completed: len(published),
			Duration:  2 * time.Second,
		},
		Metadata: dto.ResponseMetadata{RunID: values.MustParseRunID(testRunID)},
	}
}

func TestTableFormatter_FormatPlan(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf, false).FormatPlan(testPlanResponse()))

	out := buf.String()
	assert.Contains(t, out, "Deployment plan: policies")
	assert.Contains(t, out, "Wave 0")
	assert.Contains(t, out, "Wave 2")
	assert.Contains(t, out, "B2C_1A_SignUpOrSignin")
	assert.Contains(t, out, "← B2C_1A_TrustFrameworkExtensions")
	assert.Contains(t, out, "3 of 3 policies in 3 waves")
	assert.NotContains(t, out, "\x1b[", "color disabled")
}

func TestTableFormatter_FormatPlan_Unresolved(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(&buf, false).FormatPlan(testUnresolvedResponse()))

	out := buf.String()
	assert.Contains(t, out, "1 policies cannot be deployed due to missing base policy:")
	assert.Contains(t, out, "B2C_1A_SignUpOrSignin (base policy B2C_1A_Missing) SignUpOrSignin.xml")
	assert.NotContains(t, out, "Wave")
}

func TestTableFormatter_FormatPlan_Empty(t *testing.T) {
	var buf bytes.Buffer
	resp := &dto.PlanDeploymentResponse{InputFolder: "policies", CorpusSize: 3, Plan: &entities.DeploymentPlan{}}
	require.NoError(t, NewTableFormatter(&buf, false).FormatPlan(resp))
	assert.Contains(t, buf.String(), "No policies selected.")
}

func TestTableFormatter_FormatPublish(t *testing.T) {
	tests := []struct {
		name     string
		resp     *dto.PublishPoliciesResponse
		contains []string
	}{
		{
			name: "success",
			resp: testPublishResponse("", "B2C_1A_TrustFrameworkBase", "B2C_1A_TrustFrameworkExtensions", "B2C_1A_SignUpOrSignin"),
			contains: []string{
				"✓ B2C_1A_TrustFrameworkBase",
				"Successfully uploaded 3 policies",
				"Duration: 2s",
			},
		},
		{
			name: "failure",
			resp: testPublishResponse("B2C_1A_TrustFrameworkExtensions", "B2C_1A_TrustFrameworkBase"),
			contains: []string{
				"✓ B2C_1A_TrustFrameworkBase",
				"✗ B2C_1A_TrustFrameworkExtensions",
				"⊘ B2C_1A_SignUpOrSignin",
				"uploaded 1 of 3 policies, stopped at B2C_1A_TrustFrameworkExtensions",
			},
		},
		{
			name: "declined",
			resp: func() *dto.PublishPoliciesResponse {
				r := testPublishResponse("")
				r.Declined = true
				return r
			}(),
			contains: []string{"Publishing declined"},
		},
		{
			name: "unresolved",
			resp: &dto.PublishPoliciesResponse{Plan: testUnresolvedResponse()},
			contains: []string{"cannot be deployed due to missing base policy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewTableFormatter(&buf, false).FormatPublish(tt.resp))
			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestJSONFormatter_FormatPlan(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf, true).FormatPlan(testPlanResponse()))

	var decoded struct {
		InputFolder string `json:"input_folder"`
		Selected    int    `json:"selected"`
		Plan        struct {
			Waves []struct {
				Level     int `json:"level"`
				Documents []struct {
					ID       string `json:"id"`
					ParentID string `json:"parent_id"`
				} `json:"documents"`
			} `json:"waves"`
		} `json:"plan"`
		Metadata struct {
			RunID string `json:"run_id"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "policies", decoded.InputFolder)
	assert.Equal(t, 3, decoded.Selected)
	require.Len(t, decoded.Plan.Waves, 3)
	assert.Equal(t, "B2C_1A_TrustFrameworkBase", decoded.Plan.Waves[1].Documents[0].ParentID)
	assert.Equal(t, testRunID, decoded.Metadata.RunID)
	assert.Contains(t, buf.String(), "\n  ", "indented")
}

func TestJSONFormatter_FormatPublish_Compact(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf, false).FormatPublish(testPublishResponse("B2C_1A_SignUpOrSignin", "B2C_1A_TrustFrameworkBase")))

	out := buf.String()
	assert.Contains(t, out, `"failed_id":"B2C_1A_SignUpOrSignin"`)
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")), "single line plus newline")
}

func TestYAMLFormatter_FormatPlan(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter(&buf).FormatPlan(testUnresolvedResponse()))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "policies", decoded["input_folder"])

	unresolved, ok := decoded["unresolved"].([]any)
	require.True(t, ok)
	require.Len(t, unresolved, 1)
	assert.Equal(t, "B2C_1A_Missing", unresolved[0].(map[string]any)["parent_id"])
}

func TestYAMLFormatter_FormatPublish(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter(&buf).FormatPublish(testPublishResponse("", "B2C_1A_TrustFrameworkBase")))

	assert.Contains(t, buf.String(), "published:")
	assert.Contains(t, buf.String(), "- B2C_1A_TrustFrameworkBase")
}
