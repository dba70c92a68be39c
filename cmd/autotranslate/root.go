package main

import (
	"fmt"
	"io"

	"github.com/ZaguanLabs/autotranslate/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli carries what every command needs once flags are parsed.
type cli struct {
	stdin          io.Reader
	stdout, stderr io.Writer

	v          *viper.Viper
	configFile string
	envFiles   []string

	cfg *config.Config
	log *logrus.Logger
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	c := &cli{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		v:      viper.New(),
	}

	root := &cobra.Command{
		Use:           "autotranslate",
		Short:         "Cached on-demand translation for JSON APIs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return c.load()
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configFile, "config", "c", "", "config file (yaml, json or toml)")
	flags.StringSliceVar(&c.envFiles, "env-file", []string{".env"}, ".env files loaded before reading the environment")
	flags.String("content-lang", "", "language business content is written in")
	flags.String("identifier-lang", "", "language field names and enum constants are spelled in")
	flags.String("rules", "", "rules file with entities and enum labels")
	flags.String("backend", "", "translation backend: libretranslate, openai or mock")
	flags.String("backend-url", "", "translation backend URL")
	flags.String("shared", "", "shared cache: memory, redis, valkey or sqlite")
	flags.String("shared-url", "", "shared cache URL, address or DSN")
	flags.String("log-level", "", "log level")
	flags.Bool("log-json", false, "log as JSON")

	for key, flag := range map[string]string{
		"content_lang":    "content-lang",
		"identifier_lang": "identifier-lang",
		"rules_file":      "rules",
		"backend.kind":    "backend",
		"backend.url":     "backend-url",
		"shared.backend":  "shared",
		"shared.url":      "shared-url",
		"log.level":       "log-level",
		"log.json":        "log-json",
	} {
		_ = c.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newServeCmd(c),
		newTranslateCmd(c),
		newTreeCmd(c),
		newMetadataCmd(c),
		newEntitiesCmd(c),
		newCacheCmd(c),
		newVersionCmd(c),
	)

	return root
}

// load reads .env files and the configuration, then sets up logging.
func (c *cli) load() error {
	if err := config.LoadDotEnv(c.envFiles...); err != nil {
		return err
	}
	cfg, err := config.Load(c.v, c.configFile)
	if err != nil {
		return err
	}
	c.cfg = cfg

	log, err := newLogger(cfg.Log, c.stderr)
	if err != nil {
		return err
	}
	c.log = log
	return nil
}

func newLogger(cfg config.LogConfig, out io.Writer) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(out)

	if cfg.Level != "" {
		level, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		log.SetLevel(level)
	}
	if cfg.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log, nil
}
