package appconf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	require.NoError(t, err)

	assert.NotEmpty(t, c.Version)
	assert.Len(t, c.Sources, 5)
	assert.Equal(t, 3.3, c.Investment.RentFactor)
	assert.Equal(t, 10.0, c.Investment.RentDivisor)

	kinds := make(map[string]bool)
	for _, s := range c.Sources {
		kinds[s.Kind] = true
	}
	for _, k := range SourceKinds {
		assert.True(t, kinds[k], "default catalog should include a %s source", k)
	}
}

func TestParseCatalogValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "missing version",
			input:   "[investment]\nrent_divisor = 10.0\n",
			wantErr: "version is required",
		},
		{
			name: "unknown kind",
			input: `version = "1"
[investment]
rent_divisor = 10.0
[[sources]]
name = "a.csv"
kind = "weather"
path = "a.csv"
`,
			wantErr: "unknown kind",
		},
		{
			name: "data row before header",
			input: `version = "1"
[investment]
rent_divisor = 10.0
[[sources]]
name = "a.csv"
kind = "rent"
path = "a.csv"
header_row = 2
data_start_row = 1
`,
			wantErr: "data_start_row",
		},
		{
			name: "duplicate names",
			input: `version = "1"
[investment]
rent_divisor = 10.0
[[sources]]
name = "a.csv"
kind = "rent"
path = "a.csv"
[[sources]]
name = "a.csv"
kind = "stores"
path = "b.csv"
`,
			wantErr: "duplicate name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEnvFlagToEnvironment(t *testing.T) {
	assert.Equal(t, Test, EnvFlagToEnvironment("test"))
	assert.Equal(t, Production, EnvFlagToEnvironment("Production"))
	assert.Equal(t, Development, EnvFlagToEnvironment("development"))
	assert.Equal(t, Development, EnvFlagToEnvironment("staging"))
	assert.Equal(t, "production", Production.String())
}
