package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"dndtools/app/internal/app/bootstrap"
	"dndtools/app/internal/catalog"
	applog "dndtools/app/internal/log"
)

func newMigrateCmd(rt *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the catalog schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.withCatalog(cmd.Context(), func(*bootstrap.Catalog) error {
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
				return nil
			})
		},
	}
}

func newSeedCmd(rt *cliState) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference data from a YAML fixture file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return eris.Wrapf(err, "opening %s", file)
			}
			defer f.Close()

			fixtures, err := catalog.DecodeFixtures(f)
			if err != nil {
				return err
			}

			return rt.withCatalog(cmd.Context(), func(cat *bootstrap.Catalog) error {
				counts, err := catalog.LoadFixtures(cmd.Context(), cat.Database, fixtures, rt.logger)
				if err != nil {
					return err
				}
				printCounts(cmd.OutOrStdout(), counts)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "fixture file to load")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newCuratorCmd(rt *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curator",
		Short: "Manage curator accounts",
	}

	var password string
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an active curator; the password is read from stdin when not given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := passwordOrStdin(password, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return rt.withCatalog(cmd.Context(), func(cat *bootstrap.Catalog) error {
				curator, err := cat.Service.CreateCurator(cmd.Context(), args[0], secret)
				if err != nil {
					return err
				}
				applog.Component(rt.logger, "cli").WithField("username", curator.Username).Info("curator created")
				fmt.Fprintf(cmd.OutOrStdout(), "created curator %s\n", curator.Username)
				return nil
			})
		},
	}
	add.Flags().StringVar(&password, "password", "", "password for the new curator")

	cmd.AddCommand(add)
	return cmd
}

func newVerifySpellCmd(rt *cliState) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "verify-spell <slug>",
		Short: "Mark a spell as verified on behalf of a curator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := passwordOrStdin(password, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return rt.withCatalog(cmd.Context(), func(cat *bootstrap.Catalog) error {
				return verifySpell(cmd.Context(), cmd.OutOrStdout(), cat.Service, args[0], username, secret)
			})
		},
	}
	cmd.Flags().StringVar(&username, "curator", "", "curator username")
	cmd.Flags().StringVar(&password, "password", "", "curator password")
	_ = cmd.MarkFlagRequired("curator")
	return cmd
}

func verifySpell(ctx context.Context, out io.Writer, svc catalog.Service, slug, username, password string) error {
	curator, err := svc.Authenticate(ctx, username, password)
	if err != nil {
		return err
	}

	spell, err := svc.VerifySpell(ctx, slug, curator)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s verified by %s at %s\n", spell.Name, curator.Username, spell.VerifiedTime.Format("2006-01-02 15:04:05 MST"))
	return nil
}

func passwordOrStdin(password string, in io.Reader) (string, error) {
	if password != "" {
		return password, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !eris.Is(err, io.EOF) {
		return "", eris.Wrap(err, "reading password")
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", eris.New("a password is required")
	}
	return line, nil
}

func printCounts(out io.Writer, counts map[string]int) {
	tables := make([]string, 0, len(counts))
	for table := range counts {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		fmt.Fprintf(out, "%-28s %d\n", table, counts[table])
	}
}
