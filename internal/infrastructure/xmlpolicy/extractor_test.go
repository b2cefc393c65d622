package xmlpolicy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const extensionsPolicy = `<?xml version="1.0" encoding="utf-8" ?>
<TrustFrameworkPolicy
  xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
  xmlns="http://schemas.microsoft.com/online/cpim/schemas/2013/06"
  PolicySchemaVersion="0.3.0.0"
  TenantId="{Settings:Tenant}"
  PolicyId="B2C_1A_TrustFrameworkExtensions"
  PublicPolicyUri="http://{Settings:Tenant}/B2C_1A_TrustFrameworkExtensions">

  <BasePolicy>
    <TenantId>{Settings:Tenant}</TenantId>
    <PolicyId> B2C_1A_TrustFrameworkLocalization </PolicyId>
  </BasePolicy>

  <BuildingBlocks>
    <ClaimsSchema>
      <ClaimType Id="PolicyId"><PolicyId>not-the-base</PolicyId></ClaimType>
    </ClaimsSchema>
  </BuildingBlocks>
</TrustFrameworkPolicy>`

const basePolicy = `<TrustFrameworkPolicy xmlns="http://schemas.microsoft.com/online/cpim/schemas/2013/06" PolicyId="B2C_1A_TrustFrameworkBase">
  <BuildingBlocks><PolicyId>decoy</PolicyId></BuildingBlocks>
</TrustFrameworkPolicy>`

func Test_Extractor_Extract(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		id       string
		parentID string
	}{
		{"child policy", extensionsPolicy, "B2C_1A_TrustFrameworkExtensions", "B2C_1A_TrustFrameworkLocalization"},
		{"root policy", basePolicy, "B2C_1A_TrustFrameworkBase", ""},
		{"byte order mark", "\ufeff" + basePolicy, "B2C_1A_TrustFrameworkBase", ""},
		{"missing policy id", `<TrustFrameworkPolicy><BasePolicy><PolicyId>p</PolicyId></BasePolicy></TrustFrameworkPolicy>`, "", "p"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := NewExtractor().Extract("policy.xml", strings.NewReader(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.id, doc.ID)
			assert.Equal(t, tt.parentID, doc.ParentID)
			assert.Equal(t, "policy.xml", doc.SourceFile)
		})
	}
}

func Test_Extractor_Extract_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		notA    bool
	}{
		{"wrong root", `<Policy PolicyId="x"/>`, true},
		{"empty", ``, true},
		{"malformed", `<TrustFrameworkPolicy PolicyId="x"><BasePolicy>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewExtractor().Extract("bad.xml", strings.NewReader(tt.content))
			require.Error(t, err)
			if tt.notA {
				assert.ErrorIs(t, err, ErrNotAPolicy)
			}
		})
	}
}
