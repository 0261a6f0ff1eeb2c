package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kinesis-dev/kinesis/internal/config"
	"github.com/kinesis-dev/kinesis/internal/demo"
	kerrors "github.com/kinesis-dev/kinesis/internal/errors"
	"github.com/kinesis-dev/kinesis/pkg/dom"
	"github.com/kinesis-dev/kinesis/pkg/kinesis"
	"github.com/kinesis-dev/kinesis/pkg/snapshot"
)

type renderOptions struct {
	component  string
	events     string
	out        string
	s3         bool
	name       string
	configPath string
}

func renderCmd() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a component to HTML",
		Long: `Mount a demo component on an in-memory document, fire the given
event ids in order and print the resulting HTML.

With --out or --s3 the HTML is also stored as a named snapshot.

Examples:
  kinesis render --component counter --events 1,1,0
  kinesis render --component nested --events 1 --out ./snapshots
  kinesis render --events 1 --s3 --config kinesis.yaml --name run-1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.component, "component", "c", "counter", "Component to render")
	cmd.Flags().StringVarP(&opts.events, "events", "e", "", "Comma-separated event ids to fire")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Store a snapshot in this directory")
	cmd.Flags().BoolVar(&opts.s3, "s3", false, "Store a snapshot in the configured S3 bucket")
	cmd.Flags().StringVar(&opts.name, "name", "", "Snapshot name (default: component name)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Config file for --s3")
	cmd.MarkFlagsMutuallyExclusive("out", "s3")

	return cmd
}

func runRender(cmd *cobra.Command, opts renderOptions) error {
	components := demo.Components()
	factory, ok := components[opts.component]
	if !ok {
		names := make([]string, 0, len(components))
		for name := range components {
			names = append(names, name)
		}
		slices.Sort(names)
		return kerrors.New("K203").
			WithDetail("no component named %q (have %s)", opts.component, strings.Join(names, ", "))
	}

	events, err := parseEvents(opts.events)
	if err != nil {
		return err
	}

	html, err := render(factory, opts.component, events)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), html)

	if opts.out == "" && !opts.s3 {
		return nil
	}

	store, err := openStore(opts)
	if err != nil {
		return err
	}
	name := opts.name
	if name == "" {
		name = opts.component
	}
	ids := make([]uint32, len(events))
	for i, ev := range events {
		ids[i] = uint32(ev)
	}
	snap := &snapshot.Snapshot{
		Name:      name,
		Component: opts.component,
		Events:    ids,
		HTML:      []byte(html),
	}
	if err := store.Save(cmd.Context(), snap); err != nil {
		return kerrors.New("K303").WithOp("snapshot.save").WithDetail("snapshot %q", name).Wrap(err)
	}
	success(cmd, "Saved snapshot %s", name)
	return nil
}

// render mounts the component on a fresh document, fires events and
// returns the body's HTML.
func render(factory kinesis.Factory, name string, events []kinesis.EventID) (string, error) {
	doc := dom.NewDocument()
	root, err := factory(doc, kinesis.WithName(name))
	if err != nil {
		return "", err
	}
	if err := root.Mount(dom.AtParent(doc.Body())); err != nil {
		return "", err
	}
	for _, ev := range events {
		if err := root.HandleEvent(ev); err != nil {
			return "", err
		}
	}
	return doc.HTML(doc.Body()), nil
}

func parseEvents(s string) ([]kinesis.EventID, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var events []kinesis.EventID
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid event id %q: %w", part, err)
		}
		events = append(events, kinesis.EventID(v))
	}
	return events, nil
}

func openStore(opts renderOptions) (snapshot.Store, error) {
	if opts.out != "" {
		store, err := snapshot.NewDiskStore(opts.out)
		if err != nil {
			return nil, kerrors.New("K303").WithOp("snapshot.open").Wrap(err)
		}
		return store, nil
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	cfg.Snapshot.Backend = "s3"
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg.SnapshotStore()
}

// loadConfig reads path, or the working directory's config file, or falls
// back to defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if config.Exists(".") {
		return config.Load(".")
	}
	return config.New(), nil
}
