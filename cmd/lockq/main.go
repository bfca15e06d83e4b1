// Command lockq runs producer/consumer scenarios against lockingqueue and
// prints a summary of what was handed over.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"github.com/xyhelper/lockingqueue/internal/demo"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	def := demo.DefaultConfig()
	return &cli.App{
		Name:  "lockq",
		Usage: "exercise a blocking queue with concurrent producers and consumers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "log level: debug, info, warn",
				EnvVars: []string{"LOCKQ_LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			return setupLogging(c.String("log-level"))
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "hand uniquely tagged items from producers to consumers and verify delivery",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "producers", Aliases: []string{"p"}, Value: def.Producers, EnvVars: []string{"LOCKQ_PRODUCERS"}},
					&cli.IntFlag{Name: "consumers", Aliases: []string{"c"}, Value: def.Consumers, EnvVars: []string{"LOCKQ_CONSUMERS"}},
					&cli.IntFlag{Name: "items", Aliases: []string{"n"}, Value: def.Items, Usage: "items per producer", EnvVars: []string{"LOCKQ_ITEMS"}},
					&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: string(def.Mode), Usage: "wait, poll, timed or context", EnvVars: []string{"LOCKQ_MODE"}},
					&cli.DurationFlag{Name: "timeout", Aliases: []string{"t"}, Value: def.Timeout, Usage: "bounded wait in timed mode", EnvVars: []string{"LOCKQ_TIMEOUT"}},
					&cli.BoolFlag{Name: "dedup", Usage: "use the de-duplicating queue", EnvVars: []string{"LOCKQ_DEDUP"}},
				},
				Action: runAction,
			},
		},
	}
}

func runAction(c *cli.Context) error {
	mode, err := demo.ParseMode(c.String("mode"))
	if err != nil {
		return cli.Exit(err, 2)
	}
	cfg := demo.Config{
		Producers: c.Int("producers"),
		Consumers: c.Int("consumers"),
		Items:     c.Int("items"),
		Mode:      mode,
		Timeout:   c.Duration("timeout"),
		Dedup:     c.Bool("dedup"),
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(err, 2)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	report, err := demo.Run(ctx, cfg, log.StandardLogger())
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	report.Render(c.App.Writer)
	if !report.OK() {
		return cli.Exit("consumed items do not match produced items", 1)
	}
	return nil
}

func setupLogging(level string) error {
	customFormatter := new(log.TextFormatter)
	customFormatter.TimestampFormat = "2006-01-02 15:04:05"
	customFormatter.FullTimestamp = true
	log.SetFormatter(customFormatter)
	log.SetOutput(os.Stderr)

	switch strings.ToLower(level) {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "info":
		log.SetLevel(log.InfoLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	default:
		return cli.Exit(fmt.Sprintf("unknown log level %q", level), 2)
	}
	return nil
}
