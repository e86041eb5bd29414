package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/talgya/planetgen/internal/body"
	"github.com/talgya/planetgen/internal/builder"
	"github.com/talgya/planetgen/internal/catalog"
	"github.com/talgya/planetgen/internal/observability"
	"github.com/talgya/planetgen/internal/persistence"
	"github.com/talgya/planetgen/internal/phys"
	"github.com/talgya/planetgen/internal/system"
)

func generateCmd() *cobra.Command {
	var (
		name        string
		seed        int64
		dbPath      string
		asJSON      bool
		catalogPath string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one planetary system and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv())
			if err != nil {
				return err
			}
			defer observability.ShutdownWithTimeout(context.Background(), shutdown)

			cat, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}

			_, span := observability.Tracer().Start(ctx, "cli.generate")
			sys, stats, err := builder.New(builder.DefaultGenConfig(), cat).GenerateWithStats(name, seed)
			if err != nil {
				span.RecordError(err)
				span.End()
				return fmt.Errorf("generate: %w", err)
			}
			span.SetAttributes(attribute.Int64("seed.used", stats.Seed), attribute.Int("system.bodies", sys.Len()))
			span.End()

			if dbPath != "" {
				db, err := persistence.Open(dbPath)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := db.SaveSystem(sys); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeSystemJSON(out, sys, &stats)
			}
			printSystem(out, sys)
			fmt.Fprintf(out, "\nseed %d: %d slots, %d empty, %d dead ends\n", stats.Seed, stats.Slots, stats.Empty, stats.DeadEnds)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "system name (default: the star's name)")
	cmd.Flags().Int64VarP(&seed, "seed", "s", 0, "random seed; 0 picks one")
	cmd.Flags().StringVar(&dbPath, "db", "", "save the system to this SQLite file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a tree")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "material catalog YAML (default: bundled)")
	return cmd
}

func showCmd() *cobra.Command {
	var (
		dbPath string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "show [system-id]",
		Short: "Print a stored system, or list stored systems without an id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := persistence.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				stored, err := db.ListSystems(50)
				if err != nil {
					return err
				}
				for _, s := range stored {
					fmt.Fprintf(out, "%s  %-20s %3d bodies  seed %-20d %s\n",
						s.ID, s.Name, s.BodyCount, s.Seed, humanize.Time(s.Created()))
				}
				return nil
			}

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid system id %q: %w", args[0], err)
			}
			sys, err := db.LoadSystem(id)
			if err != nil {
				return err
			}
			if asJSON {
				return writeSystemJSON(out, sys, nil)
			}
			printSystem(out, sys)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", envOr("PLANETGEN_DB", "planetgen.db"), "SQLite file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a tree")
	return cmd
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadFile(path)
}

func writeSystemJSON(w io.Writer, sys *system.System, stats *builder.Stats) error {
	doc := struct {
		ID      uuid.UUID         `json:"id"`
		Name    string            `json:"name"`
		Seed    int64             `json:"seed"`
		Spacing system.SpacingLaw `json:"spacing"`
		Bodies  []*body.Body      `json:"bodies"`
		Stats   *builder.Stats    `json:"stats,omitempty"`
	}{sys.ID, sys.Name, sys.Seed, sys.Spacing, sys.Bodies(), stats}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// printSystem writes the body hierarchy as an indented tree.
func printSystem(w io.Writer, sys *system.System) {
	fmt.Fprintf(w, "%s  (%s, seed %d)\n", sys.Name, sys.ID, sys.Seed)
	sys.Walk(func(b *body.Body, depth int) bool {
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), describe(b))
		return true
	})
}

func describe(b *body.Body) string {
	switch {
	case b.Star != nil:
		return fmt.Sprintf("%s [%s %s] %.2f M☉, %.2f L☉, %s K, frost line %.2f AU",
			b.Name, b.Kind, b.Star.SpectralType, b.Star.SolarMass, b.Star.Luminosity,
			humanize.Commaf(roundK(b.Star.SurfaceTemp)), b.Star.FrostLine)
	case b.Planet != nil:
		p := b.Planet
		s := fmt.Sprintf("%s [%s] %s M⊕ at %s AU, period %s, %.0f K",
			b.Name, b.Kind, humanize.FtoaWithDigits(p.EarthMass, 3),
			humanize.FtoaWithDigits(p.OrbitalDistance, 3), period(p.OrbitalPeriod), p.EffTemp)
		if p.Retrograde {
			s += ", retrograde"
		}
		if p.Habitable {
			s += ", habitable"
		}
		return s
	}
	return fmt.Sprintf("%s [%s]", b.Name, b.Kind)
}

func roundK(k float64) float64 {
	return float64(int64(k + 0.5))
}

// period renders an orbital period in days as a duration.
func period(days float64) string {
	d := time.Duration(days * phys.SecondsPerDay * float64(time.Second))
	if days < 2 {
		return d.Round(time.Minute).String()
	}
	if days < phys.DaysPerYear {
		return fmt.Sprintf("%.1f d", days)
	}
	return fmt.Sprintf("%.2f y", days/phys.DaysPerYear)
}
