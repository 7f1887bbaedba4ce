package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/chrischowai/Putonghua-learning/pkg/dictionary"
	"github.com/chrischowai/Putonghua-learning/pkg/drill"
)

var drillNames = []string{"tone", "match", "sorting", "listen", "bridge", "puzzle"}

func newDrillCmd(flags *rootFlags) *cobra.Command {
	var rounds int
	cmd := &cobra.Command{
		Use:       "drill <tone|match|sorting|listen|bridge|puzzle>",
		Short:     "Run a turn-based drill, answering every question correctly",
		Args:      cobra.ExactArgs(1),
		ValidArgs: drillNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(drillNames, args[0]) {
				return fmt.Errorf("unknown drill %q", args[0])
			}
			return withApp(cmd, flags, func(a *app) error {
				return runDrill(cmd.OutOrStdout(), a, args[0], rounds)
			})
		},
	}
	cmd.Flags().IntVar(&rounds, "rounds", 5, "questions to answer")
	return cmd
}

func runDrill(out io.Writer, a *app, name string, rounds int) error {
	report := func(label string, r drill.Result) {
		fmt.Fprintf(out, "  %s +%d (score %d, combo %d)\n", label, r.Delta, r.Score, r.Combo)
	}

	switch name {
	case "tone":
		q, err := drill.NewToneQuiz(a.corpus.ToneSet(), a.tracker)
		if err != nil {
			return err
		}
		for range rounds {
			e := q.Current()
			report(e.Character, q.Answer(e.Tone))
		}
	case "match":
		m, err := drill.NewPinyinMatch(a.corpus.PinyinMatchSet(), a.tracker, nil)
		if err != nil {
			return err
		}
		for range rounds {
			e := m.Current()
			report(e.Character, m.Answer(e.Pinyin))
		}
	case "sorting":
		s, err := drill.NewSorting(a.corpus.SortingSet(), a.tracker, nil)
		if err != nil {
			return err
		}
		for range rounds {
			e := s.Current()
			report(e.Character, s.Answer(e.Initial))
		}
	case "listen":
		l, err := drill.NewInitialsListen(a.corpus.SortingSet(), a.tracker, nil)
		if err != nil {
			return err
		}
		for range rounds {
			e := l.Current()
			report(e.Character, l.Answer(e.Initial))
		}
	case "bridge":
		pairs, err := dictionary.BridgePairs()
		if err != nil {
			return err
		}
		b, err := drill.NewBridge(pairs, a.tracker, nil)
		if err != nil {
			return err
		}
		for _, e := range b.Left {
			if r, ok := b.Match(e.ID, e.ID); ok {
				report(e.DialectVariant+" = "+e.Character, r)
			}
		}
	case "puzzle":
		puzzles, err := dictionary.Puzzles()
		if err != nil {
			return err
		}
		w, err := drill.NewWordPuzzle(puzzles, a.tracker, nil)
		if err != nil {
			return err
		}
		for range rounds {
			p := w.Current()
			for _, ch := range p.Chars {
				i := slices.Index(w.Tiles(), ch)
				if r, ok := w.Place(i); ok {
					report(p.Word, r)
				}
			}
		}
	}

	fmt.Fprintf(out, "score %d, level %d\n", a.tracker.Total(), a.tracker.Level())
	return nil
}
