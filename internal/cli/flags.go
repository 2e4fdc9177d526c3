package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func optionalStringFlag(cmd *cobra.Command, name string) (string, error) {
	if cmd == nil || cmd.Flags().Lookup(name) == nil {
		return "", nil
	}
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return strings.TrimSpace(value), nil
}

func stringSliceFlag(cmd *cobra.Command, name string) ([]string, error) {
	values, err := cmd.Flags().GetStringSlice(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return values, nil
}

func boolFlag(cmd *cobra.Command, name string) (bool, error) {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}

func intFlag(cmd *cobra.Command, name string) (int, error) {
	value, err := cmd.Flags().GetInt(name)
	if err != nil {
		return 0, fmt.Errorf("failed to read --%s flag: %w", name, err)
	}
	return value, nil
}
