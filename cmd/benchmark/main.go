package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/fiberparty/bench"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

const (
	iterationsKey = "iterations"
	sliceKey      = "slice"
	profileKey    = "profile"
)

var (
	ww = []int{1, 10, 100, 1_000}
	hh = []int{1, 10, 100}
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Measure reconciliation latency for w*h component trees",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  iterationsKey,
				Usage: "Samples per tree size",
				Value: 100,
			},
			&cli.DurationFlag{
				Name:  sliceKey,
				Usage: "Idle slice budget per work loop call, 0 to flush synchronously",
			},
			&cli.StringFlag{
				Name:  profileKey,
				Usage: "Write a CPU profile to this file",
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if path := cmd.String(profileKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	iters := int(cmd.Int(iterationsKey))
	slice := cmd.Duration(sliceKey)

	log.Printf("warming up")
	if err := benchmark("Root re-render", iters, slice, (*bench.Harness).RerenderRoot); err != nil {
		return err
	}
	return benchmark("Leaf setState", iters, slice, (*bench.Harness).UpdateLeaf)
}

func benchmark(title string, iters int, slice time.Duration, step func(*bench.Harness, int) error) error {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, w := range ww {
		for _, h := range hh {
			cfg := bench.Config{Width: w, Depth: h, Iterations: iters, Slice: slice}
			harness, err := bench.NewHarness(cfg)
			if err != nil {
				return err
			}

			tach := tachymeter.New(&tachymeter.Config{Size: iters})
			for i := 0; i < iters; i++ {
				start := time.Now()
				if err := step(harness, i+1); err != nil {
					return fmt.Errorf("%s %s: %w", title, cfg.Title(), err)
				}
				tach.AddTime(time.Since(start))
			}

			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("reconcile: %d * %d", w, h),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
				},
			})
		}
	}

	tbl.Render()
	return nil
}
