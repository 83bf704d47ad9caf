package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/datalens-cli/internal/analysis"
	"github.com/KaramelBytes/datalens-cli/internal/utils"
)

var (
	sbOutDir string
	sbJobs   int
	sbJSON   bool
	sbQuiet  bool
)

var summarizeBatchCmd = &cobra.Command{
	Use:   "summarize-batch <files...>",
	Short: "Summarize many CSV/TSV/XLSX files concurrently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		jobs := sbJobs
		if !cmd.Flags().Changed("jobs") {
			if c, err := effectiveConfig(); err == nil && c.BatchJobs > 0 {
				jobs = c.BatchJobs
			}
		}
		if jobs < 1 {
			jobs = 1
		}
		if sbOutDir != "" {
			if err := utils.EnsureDir(sbOutDir); err != nil {
				return fmt.Errorf("create out dir: %w", err)
			}
		}
		ext := ".summary.md"
		if sbJSON {
			ext = ".summary.json"
		}
		outputs := summaryPaths(files, sbOutDir, ext)

		bodies := make([][]byte, len(files))
		g, ctx := errgroup.WithContext(context.Background())
		g.SetLimit(jobs)
		for i, path := range files {
			i, path := i, path
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				t, err := loadTable(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				b, err := renderSummary(analysis.Summarize(t), filepath.Base(path), sbJSON)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				bodies[i] = b
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		total := len(files)
		for i, path := range files {
			if err := os.WriteFile(outputs[i], bodies[i], 0o644); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !sbQuiet {
				printSuccess("[%d/%d] %s -> %s", i+1, total, filepath.Base(path), outputs[i])
			}
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist, drops
// duplicates and sorts the result.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// summaryPaths picks one output path per input. Names already taken, on
// disk or earlier in the batch, get a __2, __3... suffix.
func summaryPaths(files []string, outDir, ext string) []string {
	taken := map[string]struct{}{}
	out := make([]string, len(files))
	for i, path := range files {
		dir := outDir
		if dir == "" {
			dir = filepath.Dir(path)
		}
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		cand := filepath.Join(dir, stem+ext)
		for n := 2; ; n++ {
			_, reserved := taken[cand]
			_, statErr := os.Stat(cand)
			if !reserved && os.IsNotExist(statErr) {
				break
			}
			cand = filepath.Join(dir, fmt.Sprintf("%s__%d%s", stem, n, ext))
		}
		taken[cand] = struct{}{}
		out[i] = cand
	}
	return out
}

func init() {
	rootCmd.AddCommand(summarizeBatchCmd)
	summarizeBatchCmd.Flags().StringVar(&sbOutDir, "out-dir", "", "directory for summaries (default: next to each input)")
	summarizeBatchCmd.Flags().IntVarP(&sbJobs, "jobs", "j", 4, "files summarized concurrently (default from config batch_jobs)")
	summarizeBatchCmd.Flags().BoolVar(&sbJSON, "json", false, "write .summary.json instead of Markdown")
	summarizeBatchCmd.Flags().BoolVar(&sbQuiet, "quiet", false, "suppress progress output")
}
