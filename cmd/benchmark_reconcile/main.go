package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/delaneyj/fiberparty/bench"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	configKey  = "config"
	repeatsKey = "repeats"
)

var defaultConfigs = []bench.Config{
	{Name: "simple component", Width: 10, Depth: 5, Iterations: 2000},
	{Name: "wide list", Width: 1000, Depth: 1, Iterations: 200},
	{Name: "deep", Width: 5, Depth: 500, Iterations: 100},
	{Name: "large app", Width: 100, Depth: 12, Iterations: 200},
	{Name: "sliced", Width: 100, Depth: 12, Iterations: 200, Slice: 500 * time.Microsecond},
}

type configFile struct {
	Benchmarks []bench.Config `yaml:"benchmarks"`
}

func main() {
	cmd := &cli.Command{
		Name:  "benchmark_reconcile",
		Usage: "Report reconciliation throughput for preset tree shapes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  configKey,
				Usage: "YAML file with a benchmarks list, defaults to built-in presets",
			},
			&cli.IntFlag{
				Name:  repeatsKey,
				Usage: "Repeat each preset and keep the best run",
				Value: 5,
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfigs(path string) ([]bench.Config, error) {
	if path == "" {
		return defaultConfigs, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f configFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(f.Benchmarks) == 0 {
		return nil, fmt.Errorf("%s: no benchmarks listed", path)
	}
	return f.Benchmarks, nil
}

type result struct {
	duration time.Duration
	units    int64
}

func run(ctx context.Context, cmd *cli.Command) error {
	log.Print("Starting reconcile benchmark, please wait...")
	defer log.Print("Finished reconcile benchmark")

	cfgs, err := loadConfigs(cmd.String(configKey))
	if err != nil {
		return err
	}
	repeats := int(cmd.Int(repeatsKey))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{
		"test", "size", "nodes", "slice", "nTimes", "time", "units", "updateRate",
	})

	for _, cfg := range cfgs {
		log.Printf("Running '%s' config", cfg.Name)
		best := result{duration: time.Hour}
		for i := 0; i < repeats; i++ {
			log.Printf("Running '%s' config, iteration %d/%d %d%%", cfg.Name, i+1, repeats, (i+1)*100/repeats)
			res, err := runOnce(cfg)
			if err != nil {
				return err
			}
			if res.duration < best.duration {
				best = res
			}
		}

		updateRate := float64(cfg.Iterations) / (float64(best.duration) / float64(time.Second))
		table.Append([]string{
			cfg.Name,
			cfg.Title(),
			humanize.Comma(int64(cfg.Nodes())),
			fmt.Sprint(cfg.Slice),
			humanize.Comma(int64(cfg.Iterations)),
			fmt.Sprint(best.duration),
			humanize.Comma(best.units),
			humanize.Comma(int64(updateRate)) + "/s",
		})
	}
	table.Render()
	return nil
}

// runOnce alternates leaf updates and root re-renders so both the subtree
// and full-tree paths are exercised.
func runOnce(cfg bench.Config) (result, error) {
	h, err := bench.NewHarness(cfg)
	if err != nil {
		return result{}, err
	}
	var units int64
	start := time.Now()
	for i := 0; i < cfg.Iterations; i++ {
		if i%2 == 0 {
			err = h.UpdateLeaf(i)
		} else {
			err = h.RerenderRoot(i)
		}
		if err != nil {
			return result{}, err
		}
		units += int64(h.R.Stats().Units)
	}
	return result{duration: time.Since(start), units: units}, nil
}
