// Package main is the pairmesh command line tool: it builds refined meshes from one of the
// analytic evaluators and queries saved ones.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/pairmesh/evaluator"
	"go.viam.com/pairmesh/logging"
	"go.viam.com/pairmesh/mesh"
)

const (
	flagConfig    = "config"
	flagLogLevel  = "log-level"
	flagEvaluator = "evaluator"
	flagCutoff    = "cutoff"
	flagMesh      = "mesh"
	flagOut       = "out"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logging.Global().Errorw("pairmesh failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	var logger logging.Logger

	return &cli.App{
		Name:  "pairmesh",
		Usage: "build and query adaptive configuration meshes of rigid-body pairs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Usage:   "load mesh configuration from `FILE`",
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Value: "info",
				Usage: "log at `LEVEL` (debug, info, warn or error)",
			},
		},
		Before: func(c *cli.Context) error {
			level, err := logging.LevelFromString(c.String(flagLogLevel))
			if err != nil {
				return err
			}
			logger = logging.NewWriterLogger("pairmesh", level, c.App.ErrWriter)
			logging.ReplaceGlobal(logger)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "build",
				Usage: "fill and refine a mesh, then save it",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagEvaluator,
						Value: "ripple",
						Usage: fmt.Sprintf("evaluator to sample, one of %v", evaluator.Names()),
					},
					&cli.Float64Flag{
						Name:  flagCutoff,
						Value: 0.01,
						Usage: "interpolation error tolerated at the position level",
					},
					&cli.StringFlag{
						Name:  flagMesh,
						Usage: "resume from the mesh saved in `FILE`",
					},
					&cli.StringFlag{
						Name:     flagOut,
						Required: true,
						Usage:    "write the mesh to `FILE`",
					},
				},
				Action: func(c *cli.Context) error {
					return buildAction(c, logger)
				},
			},
			{
				Name:      "interpolate",
				Usage:     "interpolate a saved mesh at one configuration",
				ArgsUsage: "<x> <y> <z> <axis x> <axis y> <axis z> <angle>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagMesh,
						Required: true,
						Usage:    "read the mesh from `FILE`",
					},
				},
				Action: func(c *cli.Context) error {
					return interpolateAction(c, logger)
				},
			},
			{
				Name:  "info",
				Usage: "describe a saved mesh",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagMesh,
						Required: true,
						Usage:    "read the mesh from `FILE`",
					},
				},
				Action: func(c *cli.Context) error {
					return infoAction(c, logger)
				},
			},
		},
	}
}

func readConfig(c *cli.Context) (mesh.Config, error) {
	if path := c.String(flagConfig); path != "" {
		return mesh.ReadConfig(path)
	}
	return mesh.DefaultConfig(), nil
}

// openGrid builds the grid described by the config flag and loads the mesh file, if any.
func openGrid(c *cli.Context, logger logging.Logger) (*mesh.Grid, error) {
	cfg, err := readConfig(c)
	if err != nil {
		return nil, err
	}
	g, err := mesh.NewGrid(cfg, logger)
	if err != nil {
		return nil, err
	}
	if path := c.String(flagMesh); path != "" {
		stats, err := g.Load(c.Context, path)
		if err != nil {
			if stats.Filled == 0 {
				return nil, err
			}
			logger.Warnw("some records could not be loaded", "error", err)
		}
	}
	return g, nil
}

func buildAction(c *cli.Context, logger logging.Logger) error {
	eval, err := evaluator.ByName(c.String(flagEvaluator))
	if err != nil {
		return err
	}
	g, err := openGrid(c, logger)
	if err != nil {
		return err
	}
	if err := mesh.RegisterViews(); err != nil {
		return errors.Wrap(err, "cannot register views")
	}
	defer mesh.UnregisterViews()

	counter := evaluator.NewCounter(eval)
	stats, err := g.Refine(c.Context, counter, c.Float64(flagCutoff))
	if err != nil {
		return err
	}
	if err := g.Save(c.Context, c.String(flagOut)); err != nil {
		return err
	}
	for _, level := range mesh.Levels {
		logger.Infow("refined", "level", level.String(),
			"sweeps", stats.Sweeps[level], "subdivisions", stats.Subdivisions[level])
	}
	if stats.Worst != nil {
		logger.Infow("worst interpolation", "conf", stats.Worst.ID, "error", stats.MaxError)
	}
	logger.Infow("saved mesh", "path", c.String(flagOut), "configurations", g.Len(), "evaluator_calls", counter.Calls())
	return nil
}

func interpolateAction(c *cli.Context, logger logging.Logger) error {
	if c.NArg() != 7 {
		return errors.Errorf("expected 7 arguments, got %d", c.NArg())
	}
	var args [7]float64
	for i := range args {
		v, err := strconv.ParseFloat(c.Args().Get(i), 64)
		if err != nil {
			return errors.Wrapf(err, "argument %d", i+1)
		}
		args[i] = v
	}
	g, err := openGrid(c, logger)
	if err != nil {
		return err
	}
	position := r3.Vector{X: args[0], Y: args[1], Z: args[2]}
	axis := r3.Vector{X: args[3], Y: args[4], Z: args[5]}
	values, err := g.Interpolate(position, axis, args[6])
	if err != nil {
		return err
	}
	for i, v := range values {
		if i > 0 {
			fmt.Fprint(c.App.Writer, " ")
		}
		fmt.Fprint(c.App.Writer, strconv.FormatFloat(v, 'g', -1, 64))
	}
	fmt.Fprintln(c.App.Writer)
	return nil
}

func infoAction(c *cli.Context, logger logging.Logger) error {
	g, err := openGrid(c, logger)
	if err != nil {
		return err
	}
	s := g.Summary()
	cfg := g.Config()
	fmt.Fprintf(c.App.Writer, "name %s, size %v, symmetry %d\n", cfg.Name, cfg.Size, cfg.Symmetry)
	data, err := json.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "cannot encode config")
	}
	fmt.Fprintf(c.App.Writer, "config %s\n", data)
	fmt.Fprintf(c.App.Writer, "configurations %d (%d filled)\n", s.Configurations, s.Filled)
	for _, level := range mesh.Levels {
		l := s.Levels[level]
		fmt.Fprintf(c.App.Writer, "%-8s trees %d, nodes %d, leaves %d, depth max %.0f mean %.2f\n",
			level, l.Trees, l.Nodes, l.Leaves, l.MaxDepth, l.MeanDepth)
	}
	return nil
}
