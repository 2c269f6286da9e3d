package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dirsCmd = &cobra.Command{
	Use:   "dirs [path...]",
	Short: "Create directories and their parents",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDirs,
}

var sizeCmd = &cobra.Command{
	Use:   "size [file]",
	Short: "Print the approximate size of a file in KB",
	Args:  cobra.ExactArgs(1),
	RunE:  runSize,
}

var jsonCmd = &cobra.Command{
	Use:   "json",
	Short: "Read JSON artifacts",
}

var jsonGetCmd = &cobra.Command{
	Use:   "get [file]",
	Short: "Print a JSON object or one of its keys",
	Args:  cobra.ExactArgs(1),
	RunE:  runJSONGet,
}

var (
	dirsQuiet bool
	jsonKey   string
)

func init() {
	dirsCmd.Flags().BoolVarP(&dirsQuiet, "quiet", "q", false, "Do not log each created directory")
	jsonGetCmd.Flags().StringVarP(&jsonKey, "key", "k", "", "Dotted key to print")

	jsonCmd.AddCommand(jsonGetCmd)
	rootCmd.AddCommand(dirsCmd)
	rootCmd.AddCommand(sizeCmd)
	rootCmd.AddCommand(jsonCmd)
}

func runDirs(cmd *cobra.Command, args []string) error {
	if err := toolkit(cmd).CreateDirectories(args, !dirsQuiet); err != nil {
		return err
	}
	cmd.Printf("Created %d directories\n", len(args))
	return nil
}

func runSize(cmd *cobra.Command, args []string) error {
	size, err := toolkit(cmd).FileSizeKB(args[0])
	if err != nil {
		return err
	}
	cmd.Println(size)
	return nil
}

func runJSONGet(cmd *cobra.Command, args []string) error {
	path := args[0]

	doc, err := toolkit(cmd).LoadJSON(path)
	if err != nil {
		return err
	}

	if jsonKey == "" {
		return printValue(cmd, doc)
	}

	v, ok := doc.Get(jsonKey)
	if !ok {
		return fmt.Errorf("key %q not found in %s", jsonKey, path)
	}
	return printValue(cmd, v)
}
