package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/modryn-studio/specifythat/internal/config"
	"github.com/modryn-studio/specifythat/internal/logging"
	"github.com/modryn-studio/specifythat/internal/store"
)

var specsLimit int

var specsCmd = &cobra.Command{
	Use:   "specs",
	Short: "List archived specs",
	RunE:  runSpecs,
}

func init() {
	specsCmd.Flags().IntVarP(&specsLimit, "limit", "n", 20, "maximum number of specs to list")
	rootCmd.AddCommand(specsCmd)
}

func runSpecs(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, closer := logging.NewFile(cfg.LogFile, cfg.SlogLevel())
	defer closer.Close()

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	list, err := store.NewSpecStore(db).List(specsLimit)
	if err != nil {
		logger.Error("list specs", "error", err)
		return err
	}
	if len(list) == 0 {
		fmt.Println("No specs yet. Run `specifythat interview` to write one.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROJECT\tUNIT\tCREATED\tSIZE")
	for _, s := range list {
		unit := s.UnitName
		if unit == "" {
			unit = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.ProjectName, unit,
			humanize.Time(s.CreatedAt),
			humanize.Bytes(uint64(len(s.Markdown))),
		)
	}
	return w.Flush()
}
