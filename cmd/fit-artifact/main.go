// Command fit-artifact fits a linear scoring artifact from a training CSV.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/okian/fairway/internal/domain/features"
	"github.com/okian/fairway/internal/domain/scoring"
	"github.com/okian/fairway/pkg/logger"
)

func main() {
	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		_, _ = os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := run(context.Background(), os.Args[1:], os.Stderr); err != nil {
		logger.Get().Error(context.Background(), "fit failed", logger.Error(err))
		os.Exit(1)
	}
}

// run parses args, fits the artifact and writes it.
func run(ctx context.Context, args []string, usage io.Writer) error {
	fs := flag.NewFlagSet("fit-artifact", flag.ContinueOnError)
	fs.SetOutput(usage)
	var (
		in     = fs.String("in", "", "Training CSV with round_number,handicap,avg_temp,precipitation,wind_speed,day_of_week_int,score")
		out    = fs.String("out", "model/artifact.json", "Path of the artifact to write")
		lambda = fs.Float64("ridge", scoring.DefaultRidge, "Ridge penalty added to the normal equations")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		fs.Usage()
		return errors.New("-in is required")
	}

	f, err := os.Open(*in)
	if err != nil {
		return fmt.Errorf("open training data: %w", err)
	}
	defer func() { _ = f.Close() }()

	frame, err := features.ReadTrainingCSV(f)
	if err != nil {
		return fmt.Errorf("read %s: %w", *in, err)
	}

	artifact, err := scoring.Train(frame, *lambda)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := scoring.WriteArtifact(*out, artifact); err != nil {
		return err
	}

	logger.Get().Info(ctx, "artifact written",
		logger.String("path", *out),
		logger.Int("rows", frame.Len()),
		logger.Int("features", len(artifact.FeatureNames)),
		logger.String("model", artifact.Model.Kind()))
	return nil
}
