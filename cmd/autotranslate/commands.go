package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ZaguanLabs/autotranslate"
	"github.com/ZaguanLabs/autotranslate/cache"
	"github.com/ZaguanLabs/autotranslate/server"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := buildEngine(c.cfg, c.log)
			if err != nil {
				return err
			}
			defer e.Close()

			app := server.New(e.tr, server.Options{Enabled: c.cfg.Enabled, Logger: c.log})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- app.Listen(c.cfg.Server.Addr)
			}()
			c.log.WithField("addr", c.cfg.Server.Addr).Info("listening")

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				c.log.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return app.ShutdownWithContext(shutdownCtx)
			}
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = c.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

func newTranslateCmd(c *cli) *cobra.Command {
	var to, from string
	cmd := &cobra.Command{
		Use:   "translate [text...]",
		Short: "Translate texts given as arguments, or one per line on stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			texts := args
			if len(texts) == 0 {
				lines, err := readLines(c.stdin)
				if err != nil {
					return err
				}
				texts = lines
			}

			e, err := buildEngine(c.cfg, c.log)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := cmd.Context()
			var results []string
			if from == "" {
				results = e.tr.TranslateAll(ctx, texts, to, 0)
			} else {
				for _, text := range texts {
					results = append(results, e.tr.TranslateFrom(ctx, text, from, to))
				}
			}
			for _, r := range results {
				fmt.Fprintln(c.stdout, r)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&to, "to", "t", "", "target language (required)")
	cmd.Flags().StringVarP(&from, "from", "f", "", "source language (default: content language)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newTreeCmd(c *cli) *cobra.Command {
	var to, entity string
	cmd := &cobra.Command{
		Use:   "tree [file.json]",
		Short: "Translate a JSON document read from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 1 {
				data, err = os.ReadFile(args[0]) // #nosec G304 - CLI tool reads user-specified files
			} else {
				data, err = io.ReadAll(c.stdin)
			}
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}

			tree, err := autotranslate.DecodeTree(data)
			if err != nil {
				return fmt.Errorf("parsing JSON: %w", err)
			}

			e, err := buildEngine(c.cfg, c.log)
			if err != nil {
				return err
			}
			defer e.Close()

			return writeJSON(c.stdout, e.tr.TranslateEntityTree(cmd.Context(), tree, to, entity))
		},
	}
	cmd.Flags().StringVarP(&to, "to", "t", "", "target language (required)")
	cmd.Flags().StringVarP(&entity, "entity", "e", "", "entity whose schema applies to the document")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newMetadataCmd(c *cli) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "metadata <entity>",
		Short: "Print the translated field labels of an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine(c.cfg, c.log)
			if err != nil {
				return err
			}
			defer e.Close()

			lang := to
			if lang == "" {
				lang = e.tr.ContentLang()
			}
			labels := e.tr.MetadataFor(cmd.Context(), args[0], lang)
			if len(labels) == 0 {
				return fmt.Errorf("no metadata for entity %q", args[0])
			}
			return writeJSON(c.stdout, labels)
		},
	}
	cmd.Flags().StringVarP(&to, "to", "t", "", "target language (default: content language)")
	return cmd
}

func newEntitiesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List registered entities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := buildEngine(c.cfg, c.log)
			if err != nil {
				return err
			}
			defer e.Close()

			for _, name := range e.tr.RegisteredEntities() {
				fmt.Fprintln(c.stdout, name)
			}
			return nil
		},
	}
}

func newCacheCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the shared translation cache",
	}

	var ttl time.Duration
	importCmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Load an exported cache file into the shared cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine(c.cfg, c.log)
			if err != nil {
				return err
			}
			defer e.Close()

			entryTTL := ttl
			if entryTTL == 0 {
				entryTTL = c.cfg.Shared.TTL
			}
			result, err := cache.NewImporter(e.shared, entryTTL).ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "imported %d entries (%d skipped, %d failed)\n", result.Imported, result.Skipped, result.Failed)
			return nil
		},
	}
	importCmd.Flags().DurationVar(&ttl, "ttl", 0, "entry lifetime (default: shared.ttl)")

	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete expired entries from a SQLite shared cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := buildEngine(c.cfg, c.log)
			if err != nil {
				return err
			}
			defer e.Close()

			sqlite, ok := e.shared.(*cache.SQLiteCache)
			if !ok {
				return fmt.Errorf("purge needs the sqlite shared cache, have %s", c.cfg.Shared.Backend)
			}
			n, err := sqlite.PurgeExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "purged %d expired entries\n", n)
			return nil
		},
	}

	cmd.AddCommand(importCmd, purgeCmd)
	return cmd
}

func newVersionCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(c.stdout, "%s %s\n", autotranslate.Name, autotranslate.Version)
			if rev := autotranslate.Revision(); rev != "" {
				fmt.Fprintf(c.stdout, "  commit:  %s\n", rev)
			}
			if autotranslate.BuildDate != "" {
				fmt.Fprintf(c.stdout, "  built:   %s\n", autotranslate.BuildDate)
			}
		},
	}
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return lines, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
