// Command bfdump prints the intermediate stages of a translation: the
// instruction tokens, the coalesced operations, or the generated program.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"bf2py/pkg/compiler"
	"bf2py/pkg/tape"
)

const testSource = "++>+++[-<+>]"

func main() {
	app := newApp(os.Stdout)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "bfdump:", err)
		os.Exit(1)
	}
}

func newApp(w io.Writer) *cli.App {
	return &cli.App{
		Name:      "bfdump",
		Usage:     "print translation stages",
		UsageText: "bfdump [flags] [FILE]",
		Writer:    w,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "emit", Value: "ops", Usage: "stage to print: tokens, ops or python"},
			&cli.IntFlag{Name: "datasize", Aliases: []string{"d"}, Value: compiler.DefaultConfig().TapeSize, Usage: "tape size"},
			&cli.IntFlag{Name: "cellsize", Aliases: []string{"c"}, Value: compiler.DefaultConfig().CellWidth, Usage: "bits per cell"},
		},
		Action: func(c *cli.Context) error {
			src := testSource
			if c.NArg() > 0 {
				data, err := os.ReadFile(c.Args().First())
				if err != nil {
					return err
				}
				src = string(data)
			}
			cfg := compiler.DefaultConfig()
			cfg.TapeSize = c.Int("datasize")
			cfg.CellWidth = c.Int("cellsize")
			return dump(w, c.String("emit"), src, cfg)
		},
	}
}

func dump(w io.Writer, stage, src string, cfg compiler.Config) error {
	switch stage {
	case "tokens":
		tokens := compiler.Lex(src)
		fmt.Fprintf(w, "Tokens (%d)\n", len(tokens))
		for _, tok := range tokens {
			fmt.Fprintln(w, " ", tok)
		}
	case "ops":
		var rec tape.Recorder
		prog, err := compiler.TranslateWith(src, cfg, &rec)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Ops (%d, %d collapsed)\n", len(rec.Ops), prog.Stats.Collapsed())
		for _, op := range rec.Ops {
			fmt.Fprintln(w, " ", op)
		}
	case "python":
		prog, err := compiler.Translate(src, cfg)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, prog.Text)
	default:
		return fmt.Errorf("unknown stage %q (want tokens, ops or python)", stage)
	}
	return nil
}
