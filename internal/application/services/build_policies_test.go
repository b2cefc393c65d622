package services

import (
	"context"
	"errors"
	"testing"

	"github.com/reglet-dev/b2cdeploy/internal/application/dto"
	apperrors "github.com/reglet-dev/b2cdeploy/internal/application/errors"
	"github.com/reglet-dev/b2cdeploy/internal/domain/entities"
	"github.com/reglet-dev/b2cdeploy/internal/domain/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAppSettings() *entities.AppSettings {
	return &entities.AppSettings{
		Environments: []entities.EnvironmentSettings{
			{
				Name:           "Test",
				Tenant:         "contosotest.onmicrosoft.com",
				PolicySettings: map[string]string{"IdentityExperienceFrameworkAppId": "ief-test"},
			},
			{
				Name:           "Production",
				Production:     true,
				Tenant:         "contoso.onmicrosoft.com",
				PolicySettings: map[string]string{"IdentityExperienceFrameworkAppId": "ief-prod"},
			},
		},
	}
}

func buildRequest(env string) dto.BuildPoliciesRequest {
	return dto.BuildPoliciesRequest{
		InputFolder:  "in",
		OutputFolder: "out",
		Environment:  env,
		Metadata:     dto.RequestMetadata{RunID: values.NewRunID()},
	}
}

func Test_BuildPoliciesUseCase_Execute_WritesSubstitutedPolicies(t *testing.T) {
	source := &fakeSource{files: map[string]string{
		"Base.xml":       `<TrustFrameworkPolicy TenantId="{Settings:Tenant}"/>`,
		"Extensions.xml": `<Item>{Settings:IdentityExperienceFrameworkAppId}</Item>`,
	}}
	sink := &fakeSink{}
	uc := NewBuildPoliciesUseCase(&fakeSettings{settings: testAppSettings()}, source, sink, nil)

	req := buildRequest("Test")
	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"Base.xml", "Extensions.xml"}, resp.Written)
	assert.Equal(t, "Test", resp.Environment)
	assert.Equal(t, "contosotest.onmicrosoft.com", resp.Tenant)
	assert.False(t, resp.Production)
	assert.Equal(t, req.Metadata.RunID, resp.Metadata.RunID)

	assert.Equal(t, `<TrustFrameworkPolicy TenantId="contosotest.onmicrosoft.com"/>`, sink.written["Base.xml"])
	assert.Equal(t, `<Item>ief-test</Item>`, sink.written["Extensions.xml"])
}

func Test_BuildPoliciesUseCase_Execute_AppliesOverrides(t *testing.T) {
	source := &fakeSource{files: map[string]string{
		"Base.xml": `{Settings:IdentityExperienceFrameworkAppId}|{Settings:Extra}`,
	}}
	sink := &fakeSink{}
	uc := NewBuildPoliciesUseCase(&fakeSettings{settings: testAppSettings()}, source, sink, nil)

	req := buildRequest("Production")
	req.OverrideLines = []string{"IdentityExperienceFrameworkAppId=override\r", "Extra=1", "garbage"}

	resp, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Production)
	assert.Equal(t, "override|1", sink.written["Base.xml"])
}

func Test_BuildPoliciesUseCase_Execute_SettingsFailures(t *testing.T) {
	tests := []struct {
		name     string
		settings *fakeSettings
		env      string
		cause    error
	}{
		{"no environments", &fakeSettings{settings: &entities.AppSettings{}}, "Test", entities.ErrNoEnvironments},
		{"unknown environment", &fakeSettings{settings: testAppSettings()}, "Staging", entities.ErrEnvironmentNotFound},
		{
			"missing tenant",
			&fakeSettings{settings: &entities.AppSettings{Environments: []entities.EnvironmentSettings{{Name: "Test"}}}},
			"Test",
			entities.ErrTenantMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &fakeSink{}
			source := &fakeSource{files: map[string]string{"a.xml": "x"}}
			uc := NewBuildPoliciesUseCase(tt.settings, source, sink, nil)

			_, err := uc.Execute(context.Background(), buildRequest(tt.env))
			require.Error(t, err)

			var cfgErr *apperrors.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, "environment", cfgErr.Aspect)
			assert.ErrorIs(t, err, tt.cause)
			assert.Empty(t, sink.written)
		})
	}
}

func Test_BuildPoliciesUseCase_Execute_SettingsLoadError(t *testing.T) {
	loadErr := errors.New("settings file not found")
	uc := NewBuildPoliciesUseCase(&fakeSettings{err: loadErr}, &fakeSource{}, &fakeSink{}, nil)

	_, err := uc.Execute(context.Background(), buildRequest("Test"))

	var cfgErr *apperrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "settings", cfgErr.Aspect)
	assert.ErrorIs(t, err, loadErr)
}

func Test_BuildPoliciesUseCase_Execute_NoTemplates(t *testing.T) {
	uc := NewBuildPoliciesUseCase(&fakeSettings{settings: testAppSettings()}, &fakeSource{}, &fakeSink{}, nil)

	_, err := uc.Execute(context.Background(), buildRequest("Test"))

	var noInput *apperrors.NoInputError
	require.ErrorAs(t, err, &noInput)
	assert.Equal(t, "in", noInput.Folder)
}

func Test_BuildPoliciesUseCase_Execute_UnresolvedLenient(t *testing.T) {
	source := &fakeSource{files: map[string]string{"a.xml": "{Settings:Missing}"}}
	sink := &fakeSink{}
	uc := NewBuildPoliciesUseCase(&fakeSettings{settings: testAppSettings()}, source, sink, nil)

	_, err := uc.Execute(context.Background(), buildRequest("Test"))
	require.NoError(t, err)
	assert.Equal(t, "{Settings:Missing}", sink.written["a.xml"])
}

func Test_BuildPoliciesUseCase_Execute_UnresolvedStrict(t *testing.T) {
	source := &fakeSource{files: map[string]string{
		"a.xml": "{Settings:Tenant}",
		"b.xml": "{Settings:Missing}",
	}}
	sink := &fakeSink{}
	uc := NewBuildPoliciesUseCase(&fakeSettings{settings: testAppSettings()}, source, sink, nil)

	req := buildRequest("Test")
	req.Strict = true

	_, err := uc.Execute(context.Background(), req)

	var cfgErr *apperrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "placeholders", cfgErr.Aspect)
	assert.Contains(t, err.Error(), "b.xml: {Settings:Missing}")
	assert.Empty(t, sink.written, "nothing is written when strict mode fails")
}

func Test_BuildPoliciesUseCase_Execute_ListError(t *testing.T) {
	listErr := errors.New("permission denied")
	source := &fakeSource{listErr: listErr}
	uc := NewBuildPoliciesUseCase(&fakeSettings{settings: testAppSettings()}, source, &fakeSink{}, nil)

	_, err := uc.Execute(context.Background(), buildRequest("Test"))
	require.ErrorIs(t, err, listErr)
}
