package env_vars_test

import (
	"testing"

	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/testutil"
	"github.com/specialistvlad/pixelgrid/internal/value"
	"github.com/specialistvlad/pixelgrid/modules/env_vars"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnRunEnv(t *testing.T) {
	t.Setenv("PIXELGRID_TEST_VALUE", "lena.png")

	tests := []struct {
		name    string
		varName string
		want    string
		set     bool
	}{
		{name: "set", varName: "PIXELGRID_TEST_VALUE", want: "lena.png", set: true},
		{name: "unset falls back", varName: "PIXELGRID_TEST_MISSING", want: "fallback", set: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ec := operation.NewExecutionContext(testutil.Context(t), "env", nil, map[string]value.Value{
				"name":    value.String(tt.varName),
				"default": value.String("fallback"),
			})
			require.NoError(t, env_vars.OnRunEnv(ec))
			assert.True(t, ec.Outputs()["value"].Equal(value.String(tt.want)))
			assert.True(t, ec.Outputs()["set"].Equal(value.Bool(tt.set)))
		})
	}
}

func TestEnv_RejectsBadName(t *testing.T) {
	reg := testutil.Registry(t)
	op, err := reg.Create("env")
	require.NoError(t, err)

	p, ok := op.Metadata().Parameter("name")
	require.True(t, ok)
	assert.Error(t, p.Check(value.String("1BAD-NAME")))
	assert.NoError(t, p.Check(value.String("HOME")))
}
