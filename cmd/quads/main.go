// Command quads loads, queries and serves quad datasets kept as badger
// snapshots.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/wbrown/janus-quads/quads"
	"github.com/wbrown/janus-quads/quads/annotations"
	"github.com/wbrown/janus-quads/quads/notation"
	"github.com/wbrown/janus-quads/quads/render"
	"github.com/wbrown/janus-quads/quads/server"
	"github.com/wbrown/janus-quads/quads/snapshot"
	"github.com/wbrown/janus-quads/quads/store"
	"github.com/wbrown/janus-quads/quads/term"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	configPath string
	dataDir    string
	snapshot   string
	verbose    bool
	noColor    bool

	cfg       Config
	out       io.Writer
	errOut    io.Writer
	collector *annotations.Collector
}

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "quads",
		Short:         "An in-memory RDF quad store with badger snapshots",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	configDefault := os.Getenv("QUADS_CONFIG")
	if configDefault == "" {
		configDefault = "quads.yaml"
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", configDefault, "config file")
	flags.StringVar(&a.dataDir, "data", "", "snapshot database directory")
	flags.StringVarP(&a.snapshot, "snapshot", "s", "", "snapshot name")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "print store annotations to stderr")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored annotations")

	root.AddCommand(
		a.loadCommand(),
		a.queryCommand(),
		a.extractCommand(),
		a.dropGraphCommand(),
		a.statsCommand(),
		a.snapshotsCommand(),
		a.serveCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("data") {
		cfg.DataDir = a.dataDir
	}
	if cmd.Flags().Changed("snapshot") {
		cfg.Snapshot = a.snapshot
	}
	a.cfg = cfg

	if a.verbose {
		formatter := annotations.NewOutputFormatter(a.errOut)
		if cfg.Color != nil {
			formatter.WithColor(*cfg.Color)
		}
		if a.noColor {
			formatter.WithColor(false)
		}
		a.collector = annotations.NewCollector(formatter.Handle)
	}
	return nil
}

func (a *app) formatter() *render.TableFormatter {
	tf := render.NewTableFormatter()
	if a.cfg.MaxWidth > 0 {
		tf.MaxWidth = a.cfg.MaxWidth
	}
	return tf
}

func (a *app) open() (*snapshot.Store, error) {
	return snapshot.Open(a.cfg.DataDir, snapshot.WithCollector(a.collector))
}

// dataset rebuilds the configured snapshot. A missing snapshot yields an
// empty dataset only when allowMissing is set.
func (a *app) dataset(snaps *snapshot.Store, allowMissing bool) (*store.IndexedDataset[term.Term], error) {
	plain := store.NewDataset(term.Compare, store.WithCollector(a.collector))
	_, err := snaps.Load(a.cfg.Snapshot, plain.Insert)
	if err != nil && !(allowMissing && errors.Is(err, snapshot.ErrNotFound)) {
		return nil, err
	}
	return plain.Indexed(), nil
}

func (a *app) save(snaps *snapshot.Store, d *store.IndexedDataset[term.Term]) error {
	_, err := snaps.Save(a.cfg.Snapshot, d.All())
	return err
}

// withDataset opens the database, loads the snapshot and runs fn. The
// dataset is saved back when fn reports a change.
func (a *app) withDataset(allowMissing bool, fn func(d *store.IndexedDataset[term.Term]) (bool, error)) error {
	snaps, err := a.open()
	if err != nil {
		return err
	}
	defer snaps.Close()

	d, err := a.dataset(snaps, allowMissing)
	if err != nil {
		return err
	}
	changed, err := fn(d)
	if err != nil {
		return err
	}
	if changed {
		return a.save(snaps, d)
	}
	return nil
}

func (a *app) loadCommand() *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "load FILE...",
		Short: "Parse facts from files and add them to the snapshot",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snaps, err := a.open()
			if err != nil {
				return err
			}
			defer snaps.Close()

			d := store.NewIndexedDataset(term.Compare, store.WithCollector(a.collector))
			if !replace {
				if d, err = a.dataset(snaps, true); err != nil {
					return err
				}
			}

			parsed, inserted := 0, 0
			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				qs, err := notation.ReadQuads(path, f, a.collector)
				f.Close()
				if err != nil {
					return err
				}
				parsed += len(qs)
				for _, q := range qs {
					if d.Insert(q) {
						inserted++
					}
				}
			}
			fmt.Fprintf(a.out, "parsed %d facts, %d new; snapshot %q holds %d quads\n",
				parsed, inserted, a.cfg.Snapshot, d.Len())
			if inserted == 0 && !replace {
				return nil
			}
			return a.save(snaps, d)
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "discard the existing snapshot contents")
	return cmd
}

func (a *app) queryCommand() *cobra.Command {
	var limit int
	var count bool
	cmd := &cobra.Command{
		Use:   "query PATTERN",
		Short: "Print the quads matching a pattern such as '[?s knows ?o]'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := notation.ParsePattern(args[0])
			if err != nil {
				return err
			}
			return a.withDataset(false, func(d *store.IndexedDataset[term.Term]) (bool, error) {
				if count {
					fmt.Fprintf(a.out, "%d\n", d.CountMatching(p))
					return false, nil
				}
				matches := d.PatternMatching(p)
				if limit > 0 {
					var firstN []quads.Quad[term.Term]
					for q := range matches {
						if len(firstN) == limit {
							break
						}
						firstN = append(firstN, q)
					}
					matches = slices.Values(firstN)
				}
				fmt.Fprintln(a.out, render.Quads(a.formatter(), matches))
				return false, nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "print at most n quads")
	cmd.Flags().BoolVarP(&count, "count", "c", false, "print only the number of matches")
	return cmd
}

func (a *app) extractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract PATTERN",
		Short: "Remove the quads matching a pattern and print them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := notation.ParsePattern(args[0])
			if err != nil {
				return err
			}
			return a.withDataset(false, func(d *store.IndexedDataset[term.Term]) (bool, error) {
				removed := slices.Collect(d.ExtractPatternMatching(p))
				fmt.Fprintln(a.out, render.Quads(a.formatter(), slices.Values(removed)))
				return len(removed) > 0, nil
			})
		},
	}
}

func (a *app) dropGraphCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "drop-graph GRAPH",
		Short: "Remove a named graph, or the default graph with 'default'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var label *term.Term
			if args[0] != "default" {
				t, err := notation.ParseTerm(args[0])
				if err != nil {
					return err
				}
				label = &t
			}
			return a.withDataset(false, func(d *store.IndexedDataset[term.Term]) (bool, error) {
				g, ok := d.RemoveGraph(label)
				if !ok {
					return false, fmt.Errorf("graph %s not found", args[0])
				}
				fmt.Fprintln(a.out, render.Triples(a.formatter(), g.All()))
				return !g.IsEmpty(), nil
			})
		},
	}
}

func (a *app) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print dataset sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDataset(false, func(d *store.IndexedDataset[term.Term]) (bool, error) {
				rows := [][]string{
					{"quads", fmt.Sprint(d.Len())},
					{"default graph", fmt.Sprint(d.DefaultGraphLen())},
					{"named graphs", fmt.Sprint(d.NamedGraphCount())},
					{"resources", fmt.Sprint(d.ResourceCount())},
					{"subjects", fmt.Sprint(d.SubjectCount())},
					{"predicates", fmt.Sprint(d.PredicateCount())},
					{"objects", fmt.Sprint(d.ObjectCount())},
				}
				fmt.Fprintln(a.out, a.formatter().Table([]string{"measure", "value"}, rows))
				return false, nil
			})
		},
	}
}

func (a *app) snapshotsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshots",
		Short: "List saved snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snaps, err := a.open()
			if err != nil {
				return err
			}
			defer snaps.Close()

			names, err := snaps.Names()
			if err != nil {
				return err
			}
			var rows [][]string
			for _, name := range names {
				n, err := snaps.Count(name)
				if err != nil {
					return err
				}
				rows = append(rows, []string{name, fmt.Sprint(n)})
			}
			fmt.Fprintln(a.out, a.formatter().Table([]string{"snapshot", "quads"}, rows))
			return nil
		},
	}
}

func (a *app) serveCommand() *cobra.Command {
	var addr string
	var readOnly bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the snapshot over HTTP and save it on shutdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}
			snaps, err := a.open()
			if err != nil {
				return err
			}
			defer snaps.Close()

			d, err := a.dataset(snaps, true)
			if err != nil {
				return err
			}
			shared := store.NewShared(d)

			httpServer := &http.Server{
				Addr:    a.cfg.Addr,
				Handler: server.NewServer(shared, a.collector).Handler(),
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				fmt.Fprintf(a.errOut, "serving snapshot %q (%d quads) on %s\n", a.cfg.Snapshot, d.Len(), a.cfg.Addr)
				errc <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
				shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdown); err != nil {
					log.Printf("shutdown: %v", err)
				}
			}

			if readOnly {
				return nil
			}
			return shared.View(func(d *store.IndexedDataset[term.Term]) error {
				return a.save(snaps, d)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "do not save changes on shutdown")
	return cmd
}
