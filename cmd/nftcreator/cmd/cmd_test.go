package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/onchainnft/nftcreator/flow"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(t.Context())

	return out.String(), err
}

func TestTemplatesCommand(t *testing.T) {
	out, err := run(t, "templates")
	require.NoError(t, err)
	require.Contains(t, out, "triplehelix")
	require.Contains(t, out, "available")
	require.Contains(t, out, "coming soon")
}

func TestPreviewHelixCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "helix.svg")

	_, err := run(t, "preview", "helix", "--hue1", "10", "--hue2", "200", "--hue3", "300", path)
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), `<svg`)

	_, err = run(t, "preview", "helix", "--hue1", "400", path)
	require.ErrorIs(t, err, flow.ErrValidation)
}
