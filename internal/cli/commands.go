package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"eduverse/internal/intent"
	"eduverse/internal/service"
	"eduverse/internal/tui"
)

func cmdChat(g *globals) *cli.Command {
	return &cli.Command{
		Name:  "chat",
		Usage: "Start an interactive advising session",
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := build(g.cfg, g.logger)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			if g.cfg.Knowledge.Watch {
				if err := a.source.Watch(ctx, a.loader, g.cfg.Knowledge.Path); err != nil {
					return err
				}
			}
			session := service.NewSession(a.advisor)
			m := tui.New(ctx, session, a.digest())
			if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
				return goerr.Wrap(err, "chat UI failed")
			}
			return nil
		},
	}
}

func cmdAsk(g *globals) *cli.Command {
	var asJSON bool
	return &cli.Command{
		Name:      "ask",
		Usage:     "Answer a single question and exit",
		ArgsUsage: "<question>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "Print the full turn record as JSON",
				Destination: &asJSON,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if question == "" {
				return goerr.New("ask needs a question")
			}
			a, err := build(g.cfg, g.logger)
			if err != nil {
				return err
			}
			turn, err := service.NewSession(a.advisor).Ask(ctx, question)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(g.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(turn)
			}
			_, err = fmt.Fprintln(g.stdout, turn.Answer)
			return err
		},
	}
}

func cmdKB(g *globals) *cli.Command {
	return &cli.Command{
		Name:  "kb",
		Usage: "List the knowledge base and its summary",
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := build(g.cfg, g.logger)
			if err != nil {
				return err
			}
			docs := a.source.Documents()
			fmt.Fprintf(g.stdout, "%d documents from %s\n\n", len(docs), a.source.Origin())
			for _, d := range docs {
				topic := d.Topic()
				if topic == "" {
					topic = "-"
				}
				fmt.Fprintf(g.stdout, "[%s] (%s) %s\n", d.ID, topic, d.Text)
			}
			if s := a.digest(); s != "" {
				fmt.Fprintf(g.stdout, "\nSummary: %s\n", s)
			}
			return nil
		},
	}
}

func cmdEval(g *globals) *cli.Command {
	var datasetPath string
	return &cli.Command{
		Name:  "eval",
		Usage: "Train the intent classifier and report accuracy",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dataset",
				Usage:       "YAML file of labelled examples to evaluate on (default: the training set)",
				Destination: &datasetPath,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			normalizer, err := newNormalizer(g.cfg)
			if err != nil {
				return err
			}
			classifier, err := trainClassifier(g.cfg, normalizer, intent.SeedDataset(), g.logger)
			if err != nil {
				return err
			}
			ds := intent.SeedDataset()
			if datasetPath != "" {
				if ds, err = intent.LoadDataset(datasetPath); err != nil {
					return err
				}
			}
			report, err := classifier.Evaluate(ds)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(g.stdout, report.String())
			return err
		},
	}
}
