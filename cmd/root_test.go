package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryoscope/snowkit/internal/config"
)

// swapConfig installs c as the active config for the duration of the test.
func swapConfig(t *testing.T, c *config.Config) {
	t.Helper()
	orig := cfg
	cfg = c
	t.Cleanup(func() { cfg = orig })
}

func TestSurveyMigrate_RejectsInvalidConfig(t *testing.T) {
	bad := &config.Config{}
	bad.Store.Driver = "mysql"
	bad.Raster.Concurrency = 4
	swapConfig(t, bad)

	surveyMigrateCmd.SetContext(context.Background())
	err := surveyMigrateCmd.RunE(surveyMigrateCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be postgres or sqlite")
}

func TestServe_RejectsInvalidConfig(t *testing.T) {
	bad := &config.Config{}
	bad.Store.Driver = "sqlite"
	bad.Store.SQLitePath = "snowkit.db"
	bad.Raster.Concurrency = 4
	bad.Server.Port = 0
	swapConfig(t, bad)

	serveCmd.SetContext(context.Background())
	err := serveCmd.RunE(serveCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	// Verify expected subcommands are registered.
	expected := []string{"raster", "survey", "classify", "fetch", "serve", "config"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "snowkit", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRasterCommand_HasSubcommands(t *testing.T) {
	cmds := rasterCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"info", "clip", "resample"}
	for _, name := range expected {
		assert.True(t, names[name], "raster should have subcommand %q", name)
	}
}

func TestSurveyCommand_HasSubcommands(t *testing.T) {
	cmds := surveyCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"migrate", "load", "query", "pivot", "status"}
	for _, name := range expected {
		assert.True(t, names[name], "survey should have subcommand %q", name)
	}
}

func TestRasterClipCommand_Flags(t *testing.T) {
	for _, flagName := range []string{"bbox", "aoi", "out-dir"} {
		flag := rasterClipCmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "raster clip should have --%s flag", flagName)
	}
}

func TestRasterResampleCommand_Flags(t *testing.T) {
	flag := rasterResampleCmd.Flags().Lookup("res")
	require.NotNil(t, flag, "raster resample should have --res flag")

	methodFlag := rasterResampleCmd.Flags().Lookup("method")
	require.NotNil(t, methodFlag, "raster resample should have --method flag")
}

func TestSurveyLoadCommand_Flags(t *testing.T) {
	for _, flagName := range []string{"sites", "measurements", "latin1"} {
		flag := surveyLoadCmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "survey load should have --%s flag", flagName)
	}
}

func TestSurveyQueryCommand_Flags(t *testing.T) {
	for _, flagName := range []string{"site", "instrument", "from", "to", "limit", "offset", "csv"} {
		flag := surveyQueryCmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "survey query should have --%s flag", flagName)
	}
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestFetchCommand_Flags(t *testing.T) {
	for _, flagName := range []string{"out", "extract"} {
		flag := fetchCmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "fetch should have --%s flag", flagName)
	}
}
