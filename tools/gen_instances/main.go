// Package main provides instance generation for fairness benchmarks.
// Generates deterministic instances in the grid text format.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/elektrokombinacija/fairmapf/internal/core"
	"github.com/elektrokombinacija/fairmapf/internal/instgen"
)

func main() {
	seed := pflag.Int64("seed", 42, "Random seed for deterministic generation")
	kind := pflag.String("kind", "random", "Map kind: random or bottleneck")
	agents := pflag.IntP("agents", "n", 4, "Number of agents")
	rows := pflag.Int("rows", 8, "Grid rows")
	cols := pflag.Int("cols", 8, "Grid columns")
	obstacles := pflag.Float64("obstacles", 0.2, "Obstacle probability for random maps")
	gap := pflag.Int("gap", 1, "Gap width for bottleneck maps")
	count := pflag.Int("count", 1, "Number of instances; seeds increase from --seed")
	outputDir := pflag.StringP("output", "o", "instances", "Output directory")
	suite := pflag.Bool("suite", false, "Generate the standard suite (3 random 8x8, 3 bottleneck 10x10)")

	pflag.Parse()

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	var instances []*core.Instance
	if *suite {
		insts, err := instgen.Suite(*seed)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating suite: %v\n", err)
			os.Exit(1)
		}
		instances = insts
	} else {
		for i := 0; i < *count; i++ {
			params := instgen.Params{
				Seed:         *seed + int64(i),
				Rows:         *rows,
				Cols:         *cols,
				Agents:       *agents,
				ObstacleProb: *obstacles,
				GapWidth:     *gap,
			}
			var (
				inst *core.Instance
				err  error
			)
			switch *kind {
			case "random":
				inst, err = instgen.Random(params)
			case "bottleneck":
				inst, err = instgen.Bottleneck(params)
				if err == nil && *count > 1 {
					inst.Name = fmt.Sprintf("%s_%d", inst.Name, i+1)
				}
			default:
				err = fmt.Errorf("unknown map kind %q", *kind)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error generating instance: %v\n", err)
				os.Exit(1)
			}
			instances = append(instances, inst)
		}
	}

	for _, inst := range instances {
		filename := filepath.Join(*outputDir, inst.Name+".txt")
		if err := writeInstance(filename, inst); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing instance %s: %v\n", filename, err)
			continue
		}
		fmt.Printf("Generated: %s (%d agents, %dx%d grid, %d free cells)\n",
			filename, len(inst.Agents), inst.Grid.Rows(), inst.Grid.Cols(), inst.Grid.FreeCells())
	}
}

func writeInstance(path string, inst *core.Instance) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := core.WriteInstance(f, inst); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
