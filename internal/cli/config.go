package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/mlkit/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and edit configuration files",
}

var configShowCmd = &cobra.Command{
	Use:   "show [file]",
	Short: "Print a config file or one of its keys",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigShow,
}

var configResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Merge defaults, files, environment, and overrides",
	Long: `Resolve merges config files in order, then environment variables with the
given prefix (PREFIX_SECTION__KEY), then --set overrides, and prints every
key with the layer it came from.`,
	Args: cobra.NoArgs,
	RunE: runConfigResolve,
}

var configSetCmd = &cobra.Command{
	Use:   "set [file] [key] [value]",
	Short: "Set a dotted key in a config file",
	Args:  cobra.ExactArgs(3),
	RunE:  runConfigSet,
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset [file] [key]",
	Short: "Remove a dotted key from a config file",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigUnset,
}

var (
	configKey       string
	configFiles     []string
	configEnvPrefix string
	configOverrides []string
)

func init() {
	configShowCmd.Flags().StringVarP(&configKey, "key", "k", "", "Dotted key to print (e.g. data_ingestion.root_dir)")

	configResolveCmd.Flags().StringSliceVarP(&configFiles, "file", "f", nil, "Config file to merge (repeatable, later wins)")
	configResolveCmd.Flags().StringVar(&configEnvPrefix, "env-prefix", "", "Environment variable prefix (e.g. MLKIT_)")
	configResolveCmd.Flags().StringArrayVar(&configOverrides, "set", nil, "Override as key=value (repeatable)")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configResolveCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path := args[0]

	doc, err := toolkit(cmd).ReadConfig(path)
	if err != nil {
		return err
	}

	if configKey == "" {
		return printValue(cmd, doc)
	}

	v, ok := doc.Get(configKey)
	if !ok {
		return fmt.Errorf("key %q not found in %s", configKey, path)
	}
	return printValue(cmd, v)
}

func runConfigResolve(cmd *cobra.Command, _ []string) error {
	overrides := make(map[string]string, len(configOverrides))
	for _, kv := range configOverrides {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid override %q, expected key=value", kv)
		}
		overrides[key] = value
	}

	resolver := config.NewResolver(config.ResolverConfig{
		Files:     configFiles,
		EnvPrefix: configEnvPrefix,
		Logger:    toolkit(cmd).Logger(),
	})
	resolved, err := resolver.ResolveWithOverrides(overrides)
	if err != nil {
		return err
	}

	keys := resolved.Keys()
	if len(keys) == 0 {
		cmd.Println("No configuration values resolved")
		return nil
	}

	for _, key := range keys {
		v, src := resolved.GetWithSource(key)
		cmd.Printf("%s = %v (%s)\n", key, v, src)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if err := config.SetValue(args[0], args[1], args[2]); err != nil {
		return err
	}
	cmd.Printf("Set %s in %s\n", args[1], args[0])
	return nil
}

func runConfigUnset(cmd *cobra.Command, args []string) error {
	if err := config.DeleteKey(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Removed %s from %s\n", args[1], args[0])
	return nil
}
