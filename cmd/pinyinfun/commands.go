package main

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/chrischowai/Putonghua-learning/pkg/arcade"
	"github.com/chrischowai/Putonghua-learning/pkg/corpus"
	"github.com/chrischowai/Putonghua-learning/pkg/ingest"
	"github.com/chrischowai/Putonghua-learning/pkg/vocab"
)

func newIngestCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Upload documents and print the vocabulary suggestions found in them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(a *app) error { return runIngest(cmd, a, args) })
		},
	}
}

func runIngest(cmd *cobra.Command, a *app, paths []string) error {
	out := cmd.OutOrStdout()
	var mu sync.Mutex
	a.pipeline.OnProcessed = func(f vocab.LibraryFile, _ string, suggestions []vocab.Entry) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, "%s\t%s\t%s\n", f.ID, f.Name, f.Status)
		for _, s := range suggestions {
			fmt.Fprintf(out, "  suggestion: %s\n", s.Character)
		}
	}

	ctx := cmd.Context()
	a.pipeline.Start(ctx)
	g, gctx := errgroup.WithContext(ctx)
	for _, path := range paths {
		g.Go(func() error {
			up, err := readUpload(path, a.cfg.Ingest.MaxUploadBytes)
			if err != nil {
				return err
			}
			_, err = a.pipeline.Submit(gctx, up)
			return err
		})
	}
	err := g.Wait()
	// Close waits for every queued upload to finish.
	a.pipeline.Close()
	return err
}

func readUpload(path string, maxBytes int64) (ingest.Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return ingest.Upload{}, err
	}
	if info.Size() > maxBytes {
		return ingest.Upload{}, fmt.Errorf("%s: %d bytes exceeds the %d byte upload limit", path, info.Size(), maxBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ingest.Upload{}, err
	}
	mt := mime.TypeByExtension(filepath.Ext(path))
	if mt == "" {
		mt = http.DetectContentType(data)
	}
	return ingest.Upload{Name: filepath.Base(path), MIMEType: mt, Data: data}, nil
}

func newVocabCmd(flags *rootFlags) *cobra.Command {
	vocabCmd := &cobra.Command{
		Use:   "vocab",
		Short: "List, add and remove vocabulary",
	}

	var userOnly bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the vocabulary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(a *app) error {
				entries := a.corpus.GetAll()
				if userOnly {
					entries = a.corpus.User()
				}
				printEntries(cmd, entries)
				return nil
			})
		},
	}
	listCmd.Flags().BoolVar(&userOnly, "user", false, "only list user entries")

	var meaning string
	addCmd := &cobra.Command{
		Use:   "add <character> <pinyin>",
		Short: "Add a user entry; tone, initial and final are derived from the pinyin",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := ingest.Confirm(vocab.Entry{Character: args[0], Pinyin: args[1], Meaning: meaning})
			if err != nil {
				return err
			}
			return withApp(cmd, flags, func(a *app) error {
				added, err := a.corpus.Add(entry)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s %s (%s)\n", added.Character, added.Pinyin, added.ID)
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&meaning, "meaning", "", "meaning of the entry")

	removeCmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a user entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(a *app) error { return a.corpus.Remove(args[0]) })
		},
	}

	vocabCmd.AddCommand(listCmd, addCmd, removeCmd)
	return vocabCmd
}

func newFilesCmd(flags *rootFlags) *cobra.Command {
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "List and delete uploaded files",
	}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List uploaded files in upload order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(a *app) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tKIND\tSTATUS\tUPLOADED")
				for _, f := range a.pipeline.List() {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", f.ID, f.Name, f.Kind, f.Status, f.UploadedAt.Format(time.DateTime))
				}
				return w.Flush()
			})
		},
	}
	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an uploaded file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(a *app) error { return a.pipeline.Delete(args[0]) })
		},
	}
	filesCmd.AddCommand(listCmd, deleteCmd)
	return filesCmd
}

func newSampleCmd(flags *rootFlags) *cobra.Command {
	var initial, final string
	var tone int
	cmd := &cobra.Command{
		Use:   "sample <count>",
		Short: "Draw random entries, optionally filtered by initial, final or tone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("count: %w", err)
			}
			var preds []corpus.Predicate
			if initial != "" {
				preds = append(preds, corpus.HasInitial(initial))
			}
			if final != "" {
				preds = append(preds, corpus.HasFinal(final))
			}
			if tone != 0 {
				preds = append(preds, corpus.HasTone(tone))
			}
			pred := func(e vocab.Entry) bool {
				for _, p := range preds {
					if !p(e) {
						return false
					}
				}
				return true
			}
			return withApp(cmd, flags, func(a *app) error {
				printEntries(cmd, a.corpus.Sample(n, pred))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&initial, "initial", "", "only entries with this initial")
	cmd.Flags().StringVar(&final, "final", "", "only entries with this final")
	cmd.Flags().IntVar(&tone, "tone", 0, "only entries with this tone (1-5)")
	return cmd
}

func newPlayCmd(flags *rootFlags) *cobra.Command {
	var target string
	var duration time.Duration
	var auto bool
	cmd := &cobra.Command{
		Use:       "play <fishing|rhyme|balloons>",
		Short:     "Play a headless timed round",
		Args:      cobra.ExactArgs(1),
		ValidArgs: arcade.Games,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := arcade.Preset(args[0], target, nil)
			if err != nil {
				return err
			}
			if duration > 0 {
				cfg.Duration = duration
			}
			return withApp(cmd, flags, func(a *app) error { return runPlay(cmd, a, cfg, auto) })
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "initial, final or tone to look for (random if empty)")
	cmd.Flags().DurationVar(&duration, "duration", 0, "override the round length")
	cmd.Flags().BoolVar(&auto, "auto", true, "answer every matching entity automatically")
	return cmd
}

func runPlay(cmd *cobra.Command, a *app, cfg arcade.Config, auto bool) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: find %q in %s\n", cfg.Name, cfg.Target.Label, cfg.Duration)

	var round *arcade.Round
	observer := func(ev arcade.Event) {
		switch ev.Kind {
		case arcade.EventSpawned:
			if !auto || !ev.Entity.MatchesTarget {
				return
			}
			id := ev.Entity.InstanceID
			if cfg.PauseOnSelect {
				if err := round.Select(id); err == nil {
					_, _ = round.Confirm()
				}
				return
			}
			_, _ = round.Interact(id)
		case arcade.EventCorrect:
			fmt.Fprintf(out, "  %s %s +%d (score %d, combo %d)\n",
				ev.Entity.Entry.Character, ev.Entity.Entry.Pinyin, ev.Delta, ev.Score, ev.Combo)
		case arcade.EventWrong:
			fmt.Fprintf(out, "  %s %s wrong\n", ev.Entity.Entry.Character, ev.Entity.Entry.Pinyin)
		}
	}
	round = arcade.NewRound(cfg, a.corpus,
		arcade.WithLogger(a.logger),
		arcade.WithScoreSink(a.tracker),
		arcade.WithObserver(observer),
	)
	if err := round.Start(cmd.Context()); err != nil {
		return err
	}
	<-round.Done()

	snap := round.Snapshot()
	fmt.Fprintf(out, "final score %d, level %d\n", snap.Score, a.tracker.Level())
	return nil
}

func newScoreCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "score",
		Short: "Show the cumulative score and level",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(a *app) error {
				fmt.Fprintf(cmd.OutOrStdout(), "score %d, level %d\n", a.tracker.Total(), a.tracker.Level())
				return nil
			})
		},
	}
}

func printEntries(cmd *cobra.Command, entries []vocab.Entry) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCHAR\tPINYIN\tTONE\tINITIAL\tFINAL\tSOURCE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n", e.ID, e.Character, e.Pinyin, e.Tone, e.Initial, e.Final, e.Origin)
	}
	w.Flush()
}
