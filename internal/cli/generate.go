package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/set-night/sketchbot/internal/domain"
	"github.com/spf13/cobra"
)

func newGenerateCmd(opts *options) *cobra.Command {
	var (
		sketchPath string
		modeFlag   string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "generate <description>",
		Short: "Generate a design from a sketch",
		Example: `  sketchctl generate --sketch login.png "a clean login page with two fields"
  sketchctl generate --sketch chair.jpg --mode 3d --out chair.png "a wooden chair"`,
		Args: cobra.MinimumNArgs(1),
		RunE: withEnv(opts, func(cmd *cobra.Command, args []string, e *env) error {
			mode, ok := domain.ParseMode(modeFlag)
			if !ok {
				return fmt.Errorf("unknown mode %q (want ui or 3d)", modeFlag)
			}

			f, err := os.Open(sketchPath)
			if err != nil {
				return fmt.Errorf("open sketch: %w", err)
			}
			defer f.Close()

			ctx := cmd.Context()
			gen := e.ws.Generation
			if err := gen.Upload(ctx, f, filepath.Base(sketchPath)); err != nil {
				return reported(err)
			}
			gen.SetMode(mode)

			res, err := gen.Generate(ctx, strings.Join(args, " "))
			if err != nil {
				return reported(err)
			}

			if outPath == "" {
				fmt.Fprintln(cmd.OutOrStdout(), res.ImageURL)
				return nil
			}
			data, err := gen.FetchResult(ctx)
			if err != nil {
				return fmt.Errorf("download result: %w", err)
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("write result: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", outPath, len(data))
			return nil
		}),
	}

	cmd.Flags().StringVarP(&sketchPath, "sketch", "s", "", "sketch image (PNG or JPG)")
	cmd.Flags().StringVarP(&modeFlag, "mode", "m", string(domain.ModeUI), "ui or 3d")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the generated image here instead of printing its URL")
	cmd.MarkFlagRequired("sketch")
	return cmd
}

func newUploadCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Store a sketch on the backend and print its server path",
		Args:  cobra.ExactArgs(1),
		RunE: withEnv(opts, func(cmd *cobra.Command, args []string, e *env) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read sketch: %w", err)
			}
			path, err := e.backend.UploadSketch(cmd.Context(), data, filepath.Base(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		}),
	}
}
