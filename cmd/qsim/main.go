package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/olekukonko/tablewriter"
	"github.com/theapemachine/qsim"
	"github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &cli.App{
		Name:  "qsim",
		Usage: "dense state-vector quantum circuit simulator",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "debug, info, warn or error",
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			infoCommand(),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newConfig(c *cli.Context) (*qsim.Config, error) {
	level, err := log.ParseLevel(c.String("log-level"))
	if err != nil {
		return nil, err
	}

	cfg := qsim.NewConfig()
	cfg.Logger = qsim.NewLogger(level)

	return cfg, nil
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "simulate a YAML circuit and print the outcome histogram",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "circuit", Aliases: []string{"c"}, Required: true, Usage: "circuit file"},
			&cli.IntFlag{Name: "shots", Aliases: []string{"n"}, Usage: "override the circuit's shot count"},
			&cli.Uint64Flag{Name: "seed", Usage: "seed for the shot generators"},
			&cli.IntFlag{Name: "workers", Usage: "shot worker count"},
			&cli.BoolFlag{Name: "dump-state", Usage: "print the final amplitudes"},
			&cli.BoolFlag{Name: "serial", Usage: "never sweep in parallel"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := newConfig(c)
			if err != nil {
				return err
			}

			if c.IsSet("seed") {
				cfg.Seed = c.Uint64("seed")
			}
			if c.IsSet("workers") {
				cfg.ShotWorkers = c.Int("workers")
			}
			cfg.IncludeState = c.Bool("dump-state")
			cfg.ForceSerial = c.Bool("serial")

			circuit, err := qsim.LoadCircuitFile(c.String("circuit"))
			if err != nil {
				return err
			}

			if c.IsSet("shots") {
				circuit.Shots = c.Int("shots")
			}

			res, err := qsim.NewEngine(cfg).Run(c.Context, circuit)
			if err != nil {
				return err
			}

			printHistogram(res)
			if res.Amplitudes != nil {
				printState(res)
			}

			return nil
		},
	}
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:  "info",
		Usage: "show how a register of the given size would be laid out and swept",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "qubits", Aliases: []string{"q"}, Value: 20},
		},
		Action: func(c *cli.Context) error {
			cfg, err := newConfig(c)
			if err != nil {
				return err
			}

			n := c.Int("qubits")
			if n < 0 || n > qsim.MaxQubits {
				return fmt.Errorf("qubits must be in [0, %d]", qsim.MaxQubits)
			}

			engine := qsim.NewEngine(cfg)
			logical := 1 << n
			store := qsim.StoreBytes(n)

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Property", "Value"})
			table.Append([]string{"lane width", strconv.Itoa(qsim.LaneWidth())})
			table.Append([]string{"logical amplitudes", strconv.Itoa(logical)})
			table.Append([]string{"store bytes", strconv.FormatUint(store, 10)})
			table.Append([]string{"slices", strconv.Itoa(engine.Sweeper().DecideSlices(logical, n))})

			if err := engine.Governor().Observe(); err != nil {
				log.Warn("memory probe failed", "err", err)
			} else {
				available, budget := engine.Governor().GetResourceUsage()
				table.Append([]string{"available memory", strconv.FormatUint(available, 10)})
				table.Append([]string{"run budget", fmt.Sprintf("%.0f", budget)})
			}

			table.Render()
			return nil
		},
	}
}

func printHistogram(res *qsim.Result) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Outcome", "Count", "Frequency"})

	for _, bits := range res.Bitstrings() {
		table.Append([]string{
			bits,
			strconv.Itoa(res.Counts[bits]),
			fmt.Sprintf("%.4f", res.Frequency(bits)),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("%d gates", res.GateCount),
		fmt.Sprintf("%d shots", res.Shots),
		res.Elapsed.String(),
	})
	table.Render()
}

func printState(res *qsim.Result) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Basis", "Real", "Imag", "Probability"})

	for i, a := range res.Amplitudes {
		p, _ := res.Probability(i)
		table.Append([]string{
			fmt.Sprintf("%0*b", max(res.Qubits, 1), i),
			fmt.Sprintf("%+.6f", real(a)),
			fmt.Sprintf("%+.6f", imag(a)),
			fmt.Sprintf("%.6f", p),
		})
	}

	table.Render()
}
