package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"batchkit/internal/api"
	"batchkit/internal/codec"
	"batchkit/internal/inventory"
	"batchkit/internal/storage"
)

var (
	runFile        string
	runInputFormat string
	runOutput      string
	runBasePath    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a batch file against the local store",
	Long: `Process a batch request file against the local inventory store without
starting the HTTP server, and print the batch response.

The request format follows the file extension (.json, .yaml, .yml, .toml).
Use --file - to read from stdin together with --input-format.

Examples:
  batchkit run --file requests.json
  batchkit run --file requests.yaml --output yaml
  cat requests.toml | batchkit run --file - --input-format toml --output toml`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFile, "file", "f", "", "Batch request file, or - for stdin")
	runCmd.Flags().StringVar(&runInputFormat, "input-format", "", "Request format (json, yaml, toml); inferred from the extension by default")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "json", "Response format (json, yaml, toml, protobuf)")
	runCmd.Flags().StringVar(&runBasePath, "base-path", "", "Base path reported in responses (default {pathPrefix}/items)")
	_ = runCmd.MarkFlagRequired("file")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	input, err := requestFormat(runFile, runInputFormat)
	if err != nil {
		return err
	}
	output, err := codec.ParseFormat(runOutput)
	if err != nil {
		return err
	}

	basePath := runBasePath
	if basePath == "" {
		basePath = api.BasePath(cfg.Server.PathPrefix, inventory.ResourceName)
	}

	var r io.Reader = cmd.InOrStdin()
	if runFile != "-" {
		f, err := os.Open(runFile)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	logger := newLogger(cfg, os.Stderr)
	db, dispatcher, err := openInventory(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	return runBatch(cmd.Context(), dispatcher, r, input, output, basePath, cmd.OutOrStdout())
}

// requestFormat picks the request format from the flag or the file extension
func requestFormat(file, flag string) (codec.Format, error) {
	if flag != "" {
		return codec.ParseFormat(flag)
	}
	if file == "-" {
		return codec.JSON, nil
	}
	return codec.FormatFromPath(file)
}

// runBatch decodes one request from r, processes it and writes the response to w
func runBatch(ctx context.Context, d *inventory.Dispatcher, r io.Reader, input, output codec.Format, basePath string, w io.Writer) error {
	req, err := codec.DecodeRequest[storage.ItemInput, int64](input, r)
	if err != nil {
		return err
	}
	resp := d.Process(ctx, basePath, req)
	return codec.EncodeResponse(output, w, resp)
}
