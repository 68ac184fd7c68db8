package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/ironsheep/textile-qc-mcp/internal/analysis"
	"github.com/ironsheep/textile-qc-mcp/internal/config"
	"github.com/ironsheep/textile-qc-mcp/internal/imaging"
)

// analyzeOptions are the flags of the analyze subcommand.
type analyzeOptions struct {
	reference string
	sample    string
	config    string
	output    string
	operator  string
	seed      int64
	single    bool
	artifacts bool
	json      bool
}

func parseAnalyzeFlags(args []string, out io.Writer) (*analyzeOptions, error) {
	var o analyzeOptions
	flags := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
	flags.SetOutput(out)
	flags.StringVarP(&o.reference, "reference", "r", "", "reference fabric image")
	flags.StringVarP(&o.sample, "sample", "s", "", "sample fabric image")
	flags.StringVarP(&o.config, "config", "c", os.Getenv("TEXTILE_QC_CONFIG"), "YAML settings file")
	flags.StringVarP(&o.output, "output", "o", "", "directory for report.json and PNG artifacts (default: settings output_dir)")
	flags.StringVar(&o.operator, "operator", "", "operator recorded in the report")
	flags.Int64Var(&o.seed, "seed", 0, "seed for random sampling points (0: settings seed, then time)")
	flags.BoolVar(&o.single, "single", false, "measure the sample alone, without a reference")
	flags.BoolVar(&o.artifacts, "artifacts", false, "render heatmaps, overlays and charts")
	flags.BoolVar(&o.json, "json", false, "print the full report as JSON instead of a summary")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if o.sample == "" {
		return nil, errors.New("--sample is required")
	}
	if !o.single && o.reference == "" {
		return nil, errors.New("--reference is required unless --single is set")
	}
	return &o, nil
}

// settings loads the configured settings and applies the flag overrides.
func (o *analyzeOptions) settings() (config.Settings, error) {
	s, err := config.Load(o.config)
	if err != nil {
		return config.Settings{}, err
	}
	if o.operator != "" {
		s.Operator = o.operator
	}
	if o.seed != 0 {
		s.Seed = o.seed
	}
	if o.artifacts {
		s.Color.Artifacts, s.Pattern.Artifacts = true, true
	}
	if o.output != "" {
		s.OutputDir = o.output
	}
	return s, nil
}

// runAnalyze runs one comparison (or a single-image measurement) from the
// command line, writes the outputs when an output directory is configured and
// prints the result to out.
func runAnalyze(args []string, out io.Writer) error {
	o, err := parseAnalyzeFlags(args, out)
	if err != nil {
		return err
	}
	s, err := o.settings()
	if err != nil {
		return err
	}

	cache := imaging.NewImageCache()
	sample, err := cache.Load(o.sample)
	if err != nil {
		return fmt.Errorf("sample: %w", err)
	}

	if o.single {
		rep, err := analysis.RunSingle(sample, s, nil)
		if err != nil {
			return err
		}
		files, err := writeOutputs(s.OutputDir, rep, rep.Rasters)
		if err != nil {
			return err
		}
		if o.json {
			return printJSON(out, rep)
		}
		fmt.Fprintf(out, "%s  %d measurements  %s\n", rep.ID, len(rep.Result.Measurements), rep.Findings.Status)
		fmt.Fprintf(out, "  %s\n", rep.Findings.Conclusion)
		printFiles(out, files)
		return nil
	}

	ref, err := cache.Load(o.reference)
	if err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	rep, err := analysis.Run(ref, sample, s, nil)
	if err != nil {
		return err
	}
	files, err := writeOutputs(s.OutputDir, rep, rep.Rasters)
	if err != nil {
		return err
	}
	if o.json {
		return printJSON(out, rep)
	}
	fmt.Fprintf(out, "%s  %s\n", rep.ID, rep.Decision)
	fmt.Fprintf(out, "  color   %6.2f  %-12s (%s)\n", float64(rep.ColorScore.Score), rep.ColorScore.Status, rep.ColorScore.Method)
	fmt.Fprintf(out, "  pattern %6.2f  %-12s (%s)\n", float64(rep.PatternScore.Score), rep.PatternScore.Status, rep.PatternScore.Method)
	fmt.Fprintf(out, "  overall %6.2f\n", float64(rep.OverallScore))
	fmt.Fprintf(out, "  %s\n", rep.ColorFindings.Conclusion)
	fmt.Fprintf(out, "  %s\n", rep.PatternFindings.Conclusion)
	printFiles(out, files)
	return nil
}

// writeOutputs writes the report and its rasters when dir is set.
func writeOutputs(dir string, report any, rasters func() []*imaging.Raster) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	return analysis.WriteOutputs(dir, report, rasters())
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printFiles(out io.Writer, files []string) {
	for _, f := range files {
		fmt.Fprintf(out, "  wrote %s\n", f)
	}
}
