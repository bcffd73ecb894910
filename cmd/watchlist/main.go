// Command watchlist is a small CLI for the watchlist API. It drives the same
// client controller the web UI uses, so search/filter/stats behavior matches
// exactly.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/filmlog/go-watchlist-backend/internal/client"
	"github.com/filmlog/go-watchlist-backend/internal/domain"
	"github.com/filmlog/go-watchlist-backend/internal/sysutil"
)

type app struct {
	baseURL string
	ctl     *client.Controller
}

// controller lazily builds and loads the state controller so that commands
// which never touch the API (help, completion) stay offline.
func (a *app) controller(ctx context.Context) *client.Controller {
	if a.ctl == nil {
		api := client.NewAPI(a.baseURL, nil)
		a.ctl = client.NewController(api, func(level, msg string) {
			if level == "error" {
				fmt.Fprintln(os.Stderr, msg)
			}
		})
		a.ctl.Load(ctx)
	}
	return a.ctl
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "watchlist",
		Short:         "Manage your movie watchlist",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defaultURL := sysutil.FirstNonEmpty(os.Getenv("WATCHLIST_API_URL"), "http://localhost:8080")
	root.PersistentFlags().StringVar(&a.baseURL, "api", defaultURL, "base URL of the watchlist API")

	root.AddCommand(
		newListCmd(a),
		newAddCmd(a),
		newWatchCmd(a, domain.StatusWatched),
		newWatchCmd(a, domain.StatusUnwatched),
		newRemoveCmd(a),
		newStatsCmd(a),
		newExportCmd(a),
	)
	return root
}

func newListCmd(a *app) *cobra.Command {
	var search, status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List movies, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl := a.controller(cmd.Context())
			ctl.SetSearch(search)
			ctl.SetFilter(client.StatusFilter(status))
			for _, m := range ctl.View() {
				mark := " "
				if m.Status == domain.StatusWatched {
					mark = "x"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %-40s %d  (id %d)\n", mark, m.Title, m.Year, m.ID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by title or year substring")
	cmd.Flags().StringVar(&status, "status", "all", "all|watched|unwatched")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "add <title> <year>",
		Short: "Add a movie",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("year must be an integer: %q", args[1])
			}
			return a.controller(cmd.Context()).Add(cmd.Context(), args[0], year, status)
		},
	}
	cmd.Flags().StringVar(&status, "status", string(domain.StatusUnwatched), "watched|unwatched")
	return cmd
}

func newWatchCmd(a *app, target domain.Status) *cobra.Command {
	use := "watch <id>"
	short := "Mark a movie watched"
	if target == domain.StatusUnwatched {
		use = "unwatch <id>"
		short = "Mark a movie unwatched"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("id must be an integer: %q", args[0])
			}
			return a.controller(cmd.Context()).ToggleStatus(cmd.Context(), id, target)
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a movie",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("id must be an integer: %q", args[0])
			}
			return a.controller(cmd.Context()).Remove(cmd.Context(), id)
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show watch statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.controller(cmd.Context()).Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "total:     %d\n", s.Total)
			fmt.Fprintf(out, "watched:   %d\n", s.Watched)
			fmt.Fprintf(out, "unwatched: %d\n", s.Unwatched)
			fmt.Fprintf(out, "progress:  %.1f%%\n", s.PercentWatched)
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the collection as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			api := client.NewAPI(a.baseURL, nil)
			data, err := api.Export(cmd.Context())
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(outPath, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to file instead of stdout")
	return cmd
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
