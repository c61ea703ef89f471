// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/pdf2comic/internal/codec"
	"github.com/pdiddy/pdf2comic/internal/container"
	"github.com/pdiddy/pdf2comic/internal/convert"
	"github.com/pdiddy/pdf2comic/internal/job"
	"github.com/pdiddy/pdf2comic/internal/ledger"
	"github.com/pdiddy/pdf2comic/pkg/logger"
	"github.com/pdiddy/pdf2comic/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [input]",
	Short: "Convert a PDF, CBZ, or CBR (or a directory of them) to CBZ",
	Long: `Convert renders every page of a PDF, or every image of an existing
CBZ/CBR archive, into WebP pages stored in a CBZ archive named after the
source. Pages are named <name>_-_<NNN>.webp; PDF pages count from 000 and
re-packaged archive pages from 001. A ComicInfo.xml in a source archive is
copied unchanged.

Given a directory, every file of the same kind as the first file is
converted into <input>_converted/ unless --output is set.

Examples:
  pdf2comic convert -i /home/user/comic.pdf
  pdf2comic convert -c cbz -i /home/user/comics --trim
  pdf2comic convert -i /home/user/comics -o /home/user/comics_converted`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.StringP("format", "c", "cbz", "comic format: cbz (z) or cbr (r); cbr output is not yet supported")
	f.StringP("input", "i", "", "input PDF/CBZ/CBR file or directory of them")
	f.StringP("output", "o", "", "output directory (default: input's directory, or <input>_converted for directories)")
	f.Bool("trim", false, "trim uniform borders from rendered PDF pages")
	f.Int("dpi", types.DefaultDPI, "rendering resolution for PDF pages")
	f.Int("workers", types.DefaultWorkers, "pages processed in parallel within one document")
	f.Bool("skip-existing", false, "skip documents whose output archive already exists")
	f.String("poppler-image", types.DefaultPopplerImage, "container image providing pdftoppm when it is not on PATH")
	f.Bool("no-history", false, "do not record outcomes in the history database")

	for key, flag := range map[string]string{
		"format":        "format",
		"output":        "output",
		"trim":          "trim",
		"dpi":           "dpi",
		"workers":       "workers",
		"skip_existing": "skip-existing",
		"poppler_image": "poppler-image",
	} {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := conversionConfig(cmd, args)
	if err != nil {
		return err
	}

	j, err := job.Resolve(cfg)
	if err != nil {
		return err
	}

	var raster codec.Rasterizer
	if j.Kind == types.SourceDocument {
		tool, err := container.DetectTool(codec.PopplerBin, cfg.PopplerImage)
		if err != nil {
			return err
		}
		logger.Get().Debug("rasterizer selected", zap.String("tool", tool.Name()), zap.Int("dpi", cfg.DPI))
		pr := codec.NewPopplerRasterizer(tool, cfg.DPI)
		if info, err := container.DetectTool(codec.InfoBin, cfg.PopplerImage); err == nil {
			pr.WithInfo(info)
		} else {
			logger.Get().Debug("page count fallback unavailable", zap.Error(err))
		}
		raster = pr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Fprintf(os.Stdout, "%s job: %d %s(s) -> %s\n", j.Mode, len(j.Documents), j.Kind, j.OutputDir)

	p := convert.NewPipeline(raster, cfg, logger.Get())
	result, err := job.Run(ctx, j, p, cfg.SkipExisting, os.Stdout)
	if err != nil {
		return err
	}

	if noHistory, _ := cmd.Flags().GetBool("no-history"); !noHistory {
		recordHistory(ctx, result)
	}

	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed conversion", result.Failed)
	}
	return nil
}

// conversionConfig assembles the explicit config from flags, config file,
// and environment. The input may be given with --input or as an argument.
func conversionConfig(cmd *cobra.Command, args []string) (types.ConversionConfig, error) {
	input, _ := cmd.Flags().GetString("input")
	if input == "" && len(args) > 0 {
		input = args[0]
	}
	if input == "" {
		return types.ConversionConfig{}, fmt.Errorf("%w: provide an input file or directory with -i", types.ErrInputNotFound)
	}

	format, err := types.ParseTargetFormat(viper.GetString("format"))
	if err != nil {
		return types.ConversionConfig{}, err
	}

	cfg := types.ConversionConfig{
		InputPath:    input,
		OutputPath:   viper.GetString("output"),
		Format:       format,
		Trim:         viper.GetBool("trim"),
		DPI:          viper.GetInt("dpi"),
		Workers:      viper.GetInt("workers"),
		SkipExisting: viper.GetBool("skip_existing"),
		PopplerImage: viper.GetString("poppler_image"),
	}
	return cfg.WithDefaults(), nil
}

func recordHistory(ctx context.Context, result convert.BatchResult) {
	if len(result.Outcomes) == 0 {
		return
	}
	store, err := ledger.NewStore(historyConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history not recorded: %v\n", err)
		return
	}
	defer store.Close()

	if err := store.Record(ctx, ledger.NewRunID(), result.Outcomes); err != nil {
		fmt.Fprintf(os.Stderr, "warning: history not recorded: %v\n", err)
	}
}
