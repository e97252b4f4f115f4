package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/gironde-risk-etl/internal/domain"
	"github.com/couchcryptid/gironde-risk-etl/internal/join"
	"github.com/couchcryptid/gironde-risk-etl/internal/query"
	"github.com/couchcryptid/gironde-risk-etl/internal/stats"
)

func (c *cli) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show how much of each dataset reached the fact table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			s := p.Summary()
			return c.emit(cmd.OutOrStdout(), s, func(w io.Writer) {
				f := s.Facts
				fmt.Fprintf(w, "Fact table (run %s)\n", s.RunID)
				fmt.Fprintf(w, "==================\n")
				fmt.Fprintf(w, "Municipalities:      %d (%d with centroid)\n", f.Municipalities, f.WithCentroid)
				fmt.Fprintf(w, "With social data:    %d\n", f.WithSocial)
				fmt.Fprintf(w, "With wildfires:      %d (%d fires in window)\n", f.WithFire, f.FiresInWindow)
				fmt.Fprintf(w, "Clay risk:           %d high, %d medium, %d low\n", f.ClayRisk["HIGH"], f.ClayRisk["MEDIUM"], f.ClayRisk["LOW"])
				fmt.Fprintf(w, "Linked to a gauge:   %d\n", f.WithWater)
				fmt.Fprintf(w, "Cavities:            %d\n", f.Cavities)
				fmt.Fprintf(w, "Ground movements:    %d\n", f.Movements)
				printReports(w, s.Reports)
			})
		},
	}
}

func printReports(w io.Writer, reports []join.Report) {
	fmt.Fprintf(w, "\nJoins\n-----\n")
	for _, r := range reports {
		fmt.Fprintf(w, "  %-10s  rows: %6d  joined: %6d  dropped: %6d\n", r.Source, r.Rows, r.Joined, r.Dropped)
	}
}

func (c *cli) searchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Find municipalities by name or INSEE code",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			matches := query.Search(p.Store(), strings.Join(args, " "), limit)
			return c.emit(cmd.OutOrStdout(), matches, func(w io.Writer) {
				if len(matches) == 0 {
					fmt.Fprintln(w, "No match.")
					return
				}
				for _, m := range matches {
					fmt.Fprintf(w, "%s  %s\n", m.ID, m.Name)
				}
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", query.DefaultSearchLimit, "Maximum number of results")
	return cmd
}

func (c *cli) rankCmd() *cobra.Command {
	var (
		asc  bool
		page int
	)
	names := make([]string, len(query.Indicators))
	for i, ind := range query.Indicators {
		names[i] = string(ind)
	}
	cmd := &cobra.Command{
		Use:       "rank <indicator>",
		Short:     "Rank municipalities by " + strings.Join(names, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			ind, err := query.ParseIndicator(args[0])
			if err != nil {
				return err
			}
			order := query.Descending
			if asc {
				order = query.Ascending
			}
			p, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			rp := query.Rank(p.Store(), ind, order, page-1)
			return c.emit(cmd.OutOrStdout(), rp, func(w io.Writer) {
				fmt.Fprintf(w, "%s, page %d/%d (%d municipalities)\n", rp.Indicator, rp.Page+1, max(rp.TotalPages, 1), rp.TotalItems)
				for i, item := range rp.Items {
					fmt.Fprintf(w, "%3d. %-30s %s  %s\n", rp.Page*query.PageSize+i+1, item.Name, item.ID, item.Label)
				}
			})
		},
	}
	cmd.Flags().BoolVar(&asc, "asc", false, "Lowest values first")
	cmd.Flags().IntVar(&page, "page", 1, "Page number, starting at 1")
	return cmd
}

func (c *cli) clayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clay",
		Short: "List municipalities exposed to clay shrink-swell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			v := query.ClayBreakdown(p.Store())
			return c.emit(cmd.OutOrStdout(), v, func(w io.Writer) {
				fmt.Fprintf(w, "%s (%d)\n", domain.RiskHigh.Label(), len(v.High))
				for _, m := range v.High {
					fmt.Fprintf(w, "  %s  %s\n", m.ID, m.Name)
				}
				fmt.Fprintf(w, "%s (%d)\n", domain.RiskMedium.Label(), len(v.Medium))
				for _, m := range v.Medium {
					fmt.Fprintf(w, "  %s  %s\n", m.ID, m.Name)
				}
				fmt.Fprintf(w, "%s: %d municipalities\n", domain.RiskLow.Label(), v.LowCount)
			})
		},
	}
}

func (c *cli) stationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "station <name>",
		Short: "Show a river gauge, its linked municipalities and daily maxima",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			station, err := c.findStation(args[0])
			if err != nil {
				return err
			}
			p, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			v := query.StationReport(p.Store(), station.Name, p.Series(station.Name))
			return c.emit(cmd.OutOrStdout(), v, func(w io.Writer) {
				fmt.Fprintf(w, "Station %s\n", v.Station)
				if v.LatestLabel != "" {
					fmt.Fprintf(w, "Latest level: %s\n", v.LatestLabel)
				} else {
					fmt.Fprintln(w, "No readings.")
				}
				fmt.Fprintf(w, "Linked municipalities (%d)\n", len(v.Linked))
				for _, m := range v.Linked {
					fmt.Fprintf(w, "  %s  %s\n", m.ID, m.Name)
				}
				for _, d := range v.Days {
					fmt.Fprintf(w, "  %s  max %.2f m\n", d.Label, d.Max)
				}
			})
		},
	}
}

func (c *cli) findStation(name string) (domain.Station, error) {
	want := domain.NormalizeName(name)
	known := make([]string, 0, len(c.cfg.Stations))
	for _, s := range c.cfg.Stations {
		if domain.NormalizeName(s.Name) == want {
			return s, nil
		}
		known = append(known, s.Name)
	}
	return domain.Station{}, fmt.Errorf("unknown station %q (known: %s)", name, strings.Join(known, ", "))
}

type correlation struct {
	stats.Regression
	Conclusion  stats.Strength `json:"conclusion"`
	Description string         `json:"description"`
	Formula     string         `json:"equation"`
}

func (c *cli) correlateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "correlate",
		Short: "Fit median income against poverty rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			reg := stats.FitLinearRegression(stats.PovertyIncomePoints(p.Store().All()))
			strength := stats.Conclude(reg.R)
			out := correlation{
				Regression:  reg,
				Conclusion:  strength,
				Description: strength.Describe(),
				Formula:     reg.Equation(),
			}
			return c.emit(cmd.OutOrStdout(), out, func(w io.Writer) {
				if reg.N < 2 {
					fmt.Fprintf(w, "Not enough municipalities with both indicators (%d).\n", reg.N)
					return
				}
				fmt.Fprintf(w, "Municipalities: %d\n", reg.N)
				fmt.Fprintf(w, "Regression:     %s\n", out.Formula)
				fmt.Fprintf(w, "r = %.3f, r² = %.3f\n", reg.R, reg.RSquared)
				fmt.Fprintln(w, out.Description)
			})
		},
	}
}

func (c *cli) municipalityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "municipality <insee>",
		Short: "Show every indicator of one municipality",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			id := domain.NormalizeCode(args[0])
			m, ok := p.Store().Get(id)
			if !ok {
				return fmt.Errorf("no municipality with code %q", args[0])
			}
			return c.emit(cmd.OutOrStdout(), m, func(w io.Writer) {
				printMunicipality(w, m)
			})
		},
	}
}

func printMunicipality(w io.Writer, m domain.Municipality) {
	fmt.Fprintf(w, "%s (%s)\n", m.Name, m.ID)
	if m.HasCentroid {
		fmt.Fprintf(w, "Centroid:        %.5f, %.5f\n", m.Centroid.Lat(), m.Centroid.Lon())
	}
	poverty, income := query.NoValue, query.NoValue
	if m.Social != nil {
		if m.Social.PovertyRate != nil {
			poverty = fmt.Sprintf("%.1f%%", *m.Social.PovertyRate)
		}
		if m.Social.MedianIncome != nil {
			income = fmt.Sprintf("%.0f €", *m.Social.MedianIncome)
		}
	}
	fmt.Fprintf(w, "Poverty rate:    %s\n", poverty)
	fmt.Fprintf(w, "Median income:   %s\n", income)
	win := m.Fire.Window()
	fmt.Fprintf(w, "Wildfires:       %d in %d, %d in %d-%d\n", m.Fire.TotalCurrentYear(), win.CurrentYear, m.Fire.TotalWindow(), win.Start(), win.CurrentYear)
	for _, yc := range query.FireYears(m) {
		fmt.Fprintf(w, "  %d: %d\n", yc.Year, yc.Count)
	}
	fmt.Fprintf(w, "Clay risk:       %s\n", m.ClayRisk.Label())
	if m.Water != nil {
		fmt.Fprintf(w, "River gauge:     %s at %.1f km, %s\n", m.Water.Station, m.Water.DistanceKm, m.Water.LatestLabel)
	} else {
		fmt.Fprintln(w, "River gauge:     none in range")
	}
	fmt.Fprintf(w, "Cavities:        %d\n", m.Cavities)
	fmt.Fprintf(w, "Ground movements: %d\n", m.Movements)
}

func (c *cli) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Build the fact table and fail if a dataset joined nothing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := c.build(cmd.Context())
			if err != nil {
				return err
			}
			reports := p.Reports()
			var empty []string
			for _, r := range reports {
				if r.Joined == 0 {
					empty = append(empty, r.Source.String())
				}
			}
			if err := c.emit(cmd.OutOrStdout(), reports, func(w io.Writer) {
				fmt.Fprintf(w, "%d municipalities\n", p.Store().Len())
				printReports(w, reports)
			}); err != nil {
				return err
			}
			if len(empty) > 0 {
				return fmt.Errorf("datasets joined nothing: %s", strings.Join(empty, ", "))
			}
			return nil
		},
	}
}
