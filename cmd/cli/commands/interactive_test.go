package commands

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    []string
		wantErr bool
	}{
		{"plain words", "status duty-1 hlf-1 lock", []string{"status", "duty-1", "hlf-1", "lock"}, false},
		{"double quoted reason", `assign duty-1 hlf-1 m-7 --override --reason "GF on sick leave"`,
			[]string{"assign", "duty-1", "hlf-1", "m-7", "--override", "--reason", "GF on sick leave"}, false},
		{"single quotes", "assign d s m --reason 'acting leader'", []string{"assign", "d", "s", "m", "--reason", "acting leader"}, false},
		{"extra whitespace", "  show   duty-1  ", []string{"show", "duty-1"}, false},
		{"empty quoted argument", `assign d s m --reason ""`, []string{"assign", "d", "s", "m", "--reason", ""}, false},
		{"unclosed quote", `assign d s m --reason "GF on`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommandLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunInteractive_ResetsFlagsBetweenRuns(t *testing.T) {
	var gotVehicles []string
	var gotDryRun bool
	var gotArgs []string

	cmd := &cobra.Command{
		Use:  "generate <duty_id>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gotVehicles, _ = cmd.Flags().GetStringSlice("vehicles")
			gotDryRun, _ = cmd.Flags().GetBool("dry-run")
			gotArgs = args
			return nil
		},
	}
	cmd.Flags().StringSlice("vehicles", nil, "")
	cmd.Flags().Bool("dry-run", false, "")

	require.NoError(t, runInteractive(cmd, []string{"duty-1", "--vehicles", "HLF 20", "--dry-run"}))
	assert.Equal(t, []string{"HLF 20"}, gotVehicles)
	assert.True(t, gotDryRun)
	assert.Equal(t, []string{"duty-1"}, gotArgs)

	require.NoError(t, runInteractive(cmd, []string{"duty-2", "--vehicles", "TLF 3000"}))
	assert.Equal(t, []string{"TLF 3000"}, gotVehicles)
	assert.False(t, gotDryRun)

	require.NoError(t, runInteractive(cmd, []string{"duty-3"}))
	assert.Empty(t, gotVehicles)

	assert.Error(t, runInteractive(cmd, []string{}))
}
