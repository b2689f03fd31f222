package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/machinestate/pkg/collector"
	"github.com/NVIDIA/machinestate/pkg/config"
	"github.com/NVIDIA/machinestate/pkg/infogroup"
)

func groupsCmd() *cli.Command {
	return &cli.Command{
		Name:  "groups",
		Usage: "List the groups a snapshot collects",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a group definitions file",
				Sources: cli.EnvVars(config.EnvConfig),
			},
			&cli.BoolFlag{
				Name:    "extended",
				Aliases: []string{"e"},
				Usage:   "Count extended sources",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Also list every group instance, children included",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			reg := infogroup.NewRegistry()
			opts := []infogroup.Option{
				infogroup.WithExtended(cmd.Bool("extended")),
				infogroup.WithRegistry(reg),
			}

			factory := collector.NewDefaultFactory()
			factory.Version = version
			groups, err := factory.Create(nil, opts...)
			if err != nil {
				return err
			}

			if path := cmd.String("config"); path != "" {
				defs, err := config.Load(path)
				if err != nil {
					return fmt.Errorf("failed to load group definitions: %w", err)
				}
				defined, err := config.BuildAll(defs, opts...)
				if err != nil {
					return err
				}
				groups = append(groups, defined...)
			}

			w := cmd.Root().Writer
			if err := listGroups(w, groups); err != nil {
				return err
			}
			if !cmd.Bool("verbose") {
				return nil
			}
			err = listInstances(w, reg)
			runtime.KeepAlive(groups)
			return err
		},
	}
}

func listGroups(w io.Writer, groups []*infogroup.Group) error {
	if w == nil {
		w = os.Stdout
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GROUP\tSOURCES\tCHILDREN")
	for _, g := range groups {
		if err := g.Generate(); err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\n", g.Name, len(g.Keys()), len(g.Children))
	}
	return tw.Flush()
}

// listInstances prints every group held by reg, nested children included.
func listInstances(w io.Writer, reg *infogroup.Registry) error {
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "\n%d instances\n", reg.Len())
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INSTANCE\tSTATE\tKEYS")
	for _, g := range reg.Instances() {
		name := g.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, g.State(), strings.Join(g.Keys(), ","))
	}
	return tw.Flush()
}
