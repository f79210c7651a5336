package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	runtimedebug "runtime/debug"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/sqlshift"
	"github.com/walteh/sqlshift/pkg/debug"
	"github.com/walteh/sqlshift/pkg/diff"
	"github.com/walteh/sqlshift/pkg/rewrite"
)

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	fs := afero.NewOsFs()

	rootCmd := &cobra.Command{
		Use:   "sqlshift",
		Short: "Rewrite Hive SQL into Presto SQL",
	}

	info, ok := runtimedebug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	var cfgPath string
	var verbose bool
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (yaml or hcl)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	newContext := func() context.Context {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		logger := debug.NewConsoleLogger(os.Stderr, level).With().
			Str("run", uuid.New().String()).
			Logger()
		return logger.WithContext(context.Background())
	}

	var outDir string
	var showDiff bool
	cmdRewrite := &cobra.Command{
		Use:   "rewrite [glob...]",
		Short: "Rewrite matching .sql files, or stdin when no globs are given",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runRewrite(newContext(), fs, cmd, cfgPath, outDir, showDiff, args)
		},
	}
	cmdRewrite.Flags().StringVar(&outDir, "out", "", "directory rewritten files are written to (default stdout)")
	cmdRewrite.Flags().BoolVar(&showDiff, "diff", false, "print a line diff instead of the rewritten text")

	cmdCheck := &cobra.Command{
		Use:   "check [glob...]",
		Short: "Check that matching .sql files parse as single statements",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runCheck(fs, cmd, cfgPath, args)
		},
	}

	rootCmd.AddCommand(cmdRewrite, cmdCheck)

	if err := rootCmd.Execute(); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}
	return nil
}

func resolve(fs afero.Fs, cfgPath string, globs []string) (*Config, []rewrite.StageFactory, []string, error) {
	cfg := defaultConfig()
	if cfgPath != "" {
		loaded, err := loadConfig(fs, cfgPath)
		if err != nil {
			return nil, nil, nil, err
		}
		cfg = loaded
	}
	factories, err := cfg.factories()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(globs) == 0 {
		globs = cfg.Include
	}
	paths, err := expandGlobs(fs, globs)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, factories, paths, nil
}

func runRewrite(ctx context.Context, fs afero.Fs, cmd *cobra.Command, cfgPath, outDir string, showDiff bool, globs []string) error {
	cfg, factories, paths, err := resolve(fs, cfgPath, globs)
	if err != nil {
		return err
	}
	if outDir == "" {
		outDir = cfg.OutDir
	}

	if len(paths) == 0 && len(globs) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return errors.Errorf("reading stdin: %w", err)
		}
		out := rewrite.Rewrite(ctx, string(data), factories)
		if showDiff {
			cmd.Print(diff.Text(string(data), out))
			return nil
		}
		cmd.Print(out)
		return nil
	}

	for _, path := range paths {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return errors.Errorf("reading %s: %w", path, err)
		}
		out := rewrite.Rewrite(ctx, string(data), factories)
		if showDiff {
			if d := diff.Text(string(data), out); d != "" {
				cmd.Printf("--- %s\n%s", path, d)
			}
			continue
		}
		if outDir == "" {
			cmd.Print(out)
			continue
		}
		dst := filepath.Join(outDir, filepath.Base(path))
		if err := fs.MkdirAll(outDir, 0o755); err != nil {
			return errors.Errorf("creating %s: %w", outDir, err)
		}
		if err := afero.WriteFile(fs, dst, []byte(out), 0o644); err != nil {
			return errors.Errorf("writing %s: %w", dst, err)
		}
	}
	return nil
}

func runCheck(fs afero.Fs, cmd *cobra.Command, cfgPath string, globs []string) error {
	_, _, paths, err := resolve(fs, cfgPath, globs)
	if err != nil {
		return err
	}
	failed := 0
	for _, path := range paths {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return errors.Errorf("reading %s: %w", path, err)
		}
		if err := sqlshift.Check(string(data)); err != nil {
			cmd.Printf("%s: %s\n", path, err.Error())
			failed++
			continue
		}
		cmd.Printf("%s: ok\n", path)
	}
	if failed > 0 {
		return errors.Errorf("%d file(s) failed to parse", failed)
	}
	return nil
}

func expandGlobs(fs afero.Fs, globs []string) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string
	for _, glob := range globs {
		matches, err := doublestar.Glob(afero.NewIOFS(fs), glob)
		if err != nil {
			return nil, errors.Errorf("expanding glob %q: %w", glob, err)
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			paths = append(paths, m)
		}
	}
	sort.Strings(paths)
	return paths, nil
}
