package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"actiontracker/internal/adapters/storage"
	"actiontracker/internal/application/orchestrators"
	"actiontracker/internal/domain/dayrecord"
	"actiontracker/internal/domain/outbox"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	dimColor  = color.New(color.Faint)
)

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and report the schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := open(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()
			v, err := storage.SchemaVersion(cmd.Context(), rt.db)
			if err != nil {
				return err
			}
			okColor.Printf("schema at version %d (%s)\n", v, rt.cfg.Database.Driver)
			return nil
		},
	}
}

func cleanupGoalsCmd(configPath *string) *cobra.Command {
	var userID, from, to string
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "cleanup-goals",
		Short: "Dedup, order and cap stored goal lists",
		Long: `Rewrite stored day records so each goal list holds unique items in display
order, capped at six. Running it twice changes nothing the second time.

Examples:
  mat cleanup-goals --from 2024-01-01 --to 2024-03-31 --dry-run
  mat cleanup-goals --user 6f1c... --from 2024-03-01 --to 2024-03-31`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := open(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			if to == "" {
				to = dayrecord.DateKey(time.Now().In(rt.cfg.Location()))
			}
			if from == "" {
				from = to
			}
			res, err := orchestrators.ExecuteCleanupGoals(cmd.Context(), orchestrators.CleanupGoalsInput{
				UserID: userID,
				From:   from,
				To:     to,
				DryRun: dryRun,
			}, orchestrators.CleanupGoalsDeps{DayStore: rt.stores.DayStore, Now: utcNow})
			if err != nil {
				return err
			}

			if len(res.Changes) > 0 {
				tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "USER\tDATE\tTARGETS\tGOALS")
				for _, c := range res.Changes {
					fmt.Fprintf(tw, "%s\t%s\t%d -> %d\t%d -> %d\n", c.UserID, c.Date,
						c.TargetsBefore, c.TargetsAfter, c.GoalsBefore, c.GoalsAfter)
				}
				tw.Flush()
			}
			verb := "rewrote"
			if res.DryRun {
				verb = "would rewrite"
			}
			okColor.Printf("scanned %d records, %s %d\n", res.Scanned, verb, len(res.Changes))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "limit to one user ID")
	cmd.Flags().StringVar(&from, "from", "", "first date (YYYY-MM-DD), defaults to --to")
	cmd.Flags().StringVar(&to, "to", "", "last date (YYYY-MM-DD), defaults to today")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without writing")
	return cmd
}

func remindCmd(configPath *string) *cobra.Command {
	var date string
	var send bool
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Queue follow-up digest emails for hot leads due on a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := open(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			res, err := orchestrators.ExecuteQueueFollowUpReminders(cmd.Context(),
				orchestrators.QueueRemindersInput{Date: date}, rt.reminderDeps())
			if err != nil {
				return err
			}
			okColor.Printf("%s: %d users, %d queued", res.Date, res.Users, res.Queued)
			dimColor.Printf(" (%d already queued, %d skipped)\n", res.Duplicate, res.Skipped)

			if !send {
				return nil
			}
			stats, err := rt.outboxProcessor().ProcessPending(cmd.Context())
			if err != nil {
				return err
			}
			printStats(stats)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "digest date (YYYY-MM-DD), defaults to today")
	cmd.Flags().BoolVar(&send, "send", false, "deliver due outbox entries after queueing")
	return cmd
}

func outboxCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect and repair queued side effects",
	}

	var status string
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List outbox entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := open(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()
			if status == "all" {
				status = ""
			}
			entries, err := rt.stores.OutboxStore.ListByStatus(cmd.Context(), status, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				dimColor.Println("no entries")
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tSTATUS\tATTEMPTS\tCREATED\tERROR")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\t%s\n", e.ID, e.ActionType, statusLabel(e.Status),
					e.Attempts, e.MaxAttempts, humanize.Time(e.CreatedAt), e.ErrorMessage)
			}
			return tw.Flush()
		},
	}
	list.Flags().StringVar(&status, "status", outbox.StatusFailed, "status to list, or all")
	list.Flags().IntVar(&limit, "limit", 50, "maximum entries")

	retry := &cobra.Command{
		Use:   "retry <id>",
		Short: "Requeue an entry with fresh attempts and try it now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := open(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()
			e, err := rt.outboxProcessor().ProcessSingle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s is now %s\n", e.ID, statusLabel(e.Status))
			return nil
		},
	}

	abandon := &cobra.Command{
		Use:   "abandon <id>",
		Short: "Stop retrying an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := open(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()
			e, err := rt.outboxProcessor().AbandonEntry(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s is now %s\n", e.ID, statusLabel(e.Status))
			return nil
		},
	}

	cmd.AddCommand(list, retry, abandon)
	return cmd
}

func statusLabel(status string) string {
	switch status {
	case outbox.StatusDone:
		return okColor.Sprint(status)
	case outbox.StatusFailed, outbox.StatusAbandoned:
		return warnColor.Sprint(status)
	}
	return status
}

func printStats(s orchestrators.ProcessStats) {
	okColor.Printf("delivered %d of %d", s.Succeeded, s.Processed)
	if s.Failed > 0 {
		warnColor.Printf(", %d failed", s.Failed)
	}
	fmt.Println()
}
