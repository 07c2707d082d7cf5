package cmd

import "testing"

func TestVersionRunsWithoutConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	rootCmd.SetArgs([]string{"version"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
