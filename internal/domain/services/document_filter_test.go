package services

import (
	"testing"

	"github.com/reglet-dev/b2cdeploy/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterTestPlan(t *testing.T) *entities.DeploymentPlan {
	t.Helper()
	plan, err := NewWaveScheduler().BuildPlan([]entities.PolicyDocument{
		doc("B2C_1A_Base", ""),
		doc("B2C_1A_Extensions", "B2C_1A_Base"),
		doc("B2C_1A_SignUpOrSignin", "B2C_1A_Extensions"),
		doc("B2C_1A_PasswordReset", "B2C_1A_Extensions"),
		doc("Standalone", ""),
	})
	require.NoError(t, err)
	return plan
}

func Test_DocumentFilter_NoFilters(t *testing.T) {
	filter := NewDocumentFilter()

	matched, _ := filter.Matches(doc("any", ""))
	assert.True(t, matched, "no filters should allow all documents")

	plan := filterTestPlan(t)
	filtered, skipped := filter.Apply(plan)
	assert.Same(t, plan, filtered)
	assert.Empty(t, skipped)
}

func Test_DocumentFilter_SelectedPolicies(t *testing.T) {
	filter := NewDocumentFilter().WithSelectedPolicies([]string{"B2C_1A_SignUpOrSignin", "Standalone"})

	tests := []struct {
		id       string
		expected bool
	}{
		{"B2C_1A_SignUpOrSignin", true},
		{"Standalone", true},
		{"B2C_1A_Base", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			matched, reason := filter.Matches(doc(tt.id, ""))
			assert.Equal(t, tt.expected, matched)
			if !tt.expected {
				assert.Contains(t, reason, "--policy")
			}
		})
	}
}

func Test_DocumentFilter_ExcludedPolicies(t *testing.T) {
	filter := NewDocumentFilter().WithExcludedPolicies([]string{"Standalone"})

	plan, skipped := filter.Apply(filterTestPlan(t))
	assert.Equal(t, [][]string{
		{"B2C_1A_Base"},
		{"B2C_1A_Extensions"},
		{"B2C_1A_SignUpOrSignin", "B2C_1A_PasswordReset"},
	}, plan.IDs())
	require.Len(t, skipped, 1)
	assert.Equal(t, "Standalone", skipped[0].ID)
	assert.Contains(t, skipped[0].Reason, "--exclude-policy")
}

func Test_DocumentFilter_Expression(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		doc        entities.PolicyDocument
		expected   bool
	}{
		{"id match", `id == "a"`, doc("a", ""), true},
		{"id mismatch", `id == "a"`, doc("b", ""), false},
		{"parent", `parentId == "base"`, doc("child", "base"), true},
		{"file glob", `file endsWith ".xml"`, doc("x", ""), true},
		{"prefix", `id startsWith "B2C_1A_" && parentId != ""`, doc("B2C_1A_X", ""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, err := CompileDocumentFilter(tt.expression)
			require.NoError(t, err)

			filter := NewDocumentFilter().WithFilterExpression(program)
			matched, _ := filter.Matches(tt.doc)
			assert.Equal(t, tt.expected, matched)
		})
	}
}

func Test_CompileDocumentFilter_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		expression string
	}{
		{"syntax error", `id ==`},
		{"unknown field", `severity == "high"`},
		{"not boolean", `id`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileDocumentFilter(tt.expression)
			assert.Error(t, err)
		})
	}
}

func Test_DocumentFilter_Apply_DropsEmptyWaves(t *testing.T) {
	program, err := CompileDocumentFilter(`id == "B2C_1A_PasswordReset"`)
	require.NoError(t, err)

	plan, _ := NewDocumentFilter().WithFilterExpression(program).Apply(filterTestPlan(t))

	require.Len(t, plan.Waves, 1)
	assert.Equal(t, 0, plan.Waves[0].Level)
	assert.Equal(t, []string{"B2C_1A_PasswordReset"}, plan.Waves[0].IDs())
}

func Test_DocumentFilter_Apply_IncludeAncestors(t *testing.T) {
	program, err := CompileDocumentFilter(`id == "B2C_1A_PasswordReset"`)
	require.NoError(t, err)

	plan, skipped := NewDocumentFilter().
		WithFilterExpression(program).
		WithAncestors(true).
		Apply(filterTestPlan(t))

	assert.Equal(t, [][]string{
		{"B2C_1A_Base"},
		{"B2C_1A_Extensions"},
		{"B2C_1A_PasswordReset"},
	}, plan.IDs())

	var ids []string
	for _, doc := range skipped {
		ids = append(ids, doc.ID)
	}
	assert.ElementsMatch(t, []string{"Standalone", "B2C_1A_SignUpOrSignin"}, ids)
}

func Test_DocumentFilter_Apply_ExcludeWinsOverAncestors(t *testing.T) {
	tests := []struct {
		name     string
		excluded []string
		want     [][]string
	}{
		{
			name:     "excluded root",
			excluded: []string{"B2C_1A_Base"},
			want:     [][]string{{"B2C_1A_Extensions"}, {"B2C_1A_PasswordReset"}},
		},
		{
			name:     "excluded middle",
			excluded: []string{"B2C_1A_Extensions"},
			want:     [][]string{{"B2C_1A_Base"}, {"B2C_1A_PasswordReset"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, skipped := NewDocumentFilter().
				WithSelectedPolicies([]string{"B2C_1A_PasswordReset"}).
				WithExcludedPolicies(tt.excluded).
				WithAncestors(true).
				Apply(filterTestPlan(t))

			assert.Equal(t, tt.want, plan.IDs())
			for _, doc := range skipped {
				if doc.ID == tt.excluded[0] {
					return
				}
			}
			t.Errorf("%s not reported as skipped", tt.excluded[0])
		})
	}
}

func Test_DocumentFilter_Apply_NothingSelected(t *testing.T) {
	filter := NewDocumentFilter().WithSelectedPolicies([]string{"ghost"})

	plan, skipped := filter.Apply(filterTestPlan(t))
	assert.Empty(t, plan.Waves)
	assert.Len(t, skipped, 5)
	assert.Equal(t, 0, plan.DocumentCount())
}
