package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/tracer/internal/core/domain"
	"github.com/vietddude/tracer/internal/indexing/match"
)

func TestPrintResult_Missing(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, nil))
	assert.Equal(t, "null\n", buf.String())
}

func TestPrintResult_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, domain.NewBlockResult("0xabc")))
	assert.JSONEq(t, `{"blockId":"0xabc","events":[],"transfers":[]}`, buf.String())
}

func newAnalyzeFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	analyzeAddresses, analyzeContracts = nil, nil
	analyzeNoEvents, analyzeNoTransfers = false, false

	cmd := &cobra.Command{Use: "analyze"}
	cmd.Flags().StringSliceVar(&analyzeAddresses, "address", nil, "")
	cmd.Flags().StringSliceVar(&analyzeContracts, "contracts", nil, "")
	cmd.Flags().BoolVar(&analyzeNoEvents, "no-events", false, "")
	cmd.Flags().BoolVar(&analyzeNoTransfers, "no-transfers", false, "")
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestApplyFlags_KeepsConfiguredDefaults(t *testing.T) {
	base := match.NewConfig(match.WithContracts("0xc1"), match.WithAddresses("0xa1"))
	cfg := applyFlags(newAnalyzeFlags(t), base)

	assert.True(t, cfg.Event)
	assert.True(t, cfg.Transfer)
	assert.Equal(t, []string{"0xc1"}, cfg.Contracts)
	assert.Equal(t, []string{"0xa1"}, cfg.Address)
}

func TestApplyFlags_Overrides(t *testing.T) {
	base := match.NewConfig(match.WithContracts("0xc1"))
	cmd := newAnalyzeFlags(t, "--address", "0xa1, 0xa2", "--contracts", "0xc2", "--no-transfers")
	cfg := applyFlags(cmd, base)

	assert.True(t, cfg.Event)
	assert.False(t, cfg.Transfer)
	assert.Equal(t, []string{"0xa1", "0xa2"}, cfg.Address)
	assert.Equal(t, []string{"0xc2"}, cfg.Contracts)

	cfg = applyFlags(newAnalyzeFlags(t, "--no-events"), base)
	assert.False(t, cfg.Event)
}

func TestRootCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["analyze"])
}
