package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skytonelabs/skytone/pkg/cli"
	"github.com/skytonelabs/skytone/pkg/district"
	"github.com/skytonelabs/skytone/pkg/geo"
	"github.com/skytonelabs/skytone/pkg/proximity"
)

var (
	districtsAt     string
	districtsLocale string
	districtsJSON   bool
)

var districtsCmd = &cobra.Command{
	Use:   "districts",
	Short: "Inspect the city registry and district weights",
	Long: `List the districts of the loaded city. With --at, also compute the
influence weight of every district at that position and sort by it.

Examples:
  skytone districts
  skytone districts --at 35.6595,139.7005
  skytone districts --locale ja --json`,
	RunE: runDistricts,
}

func init() {
	districtsCmd.Flags().StringVar(&districtsAt, "at", "", "position lat,lng for a live weight preview")
	districtsCmd.Flags().StringVar(&districtsLocale, "locale", "", "display name locale (e.g. ja)")
	districtsCmd.Flags().BoolVar(&districtsJSON, "json", false, "output as JSON (for piping)")
}

type districtRow struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Radius float64 `json:"radius_m"`
	Prompt string  `json:"prompt"`
	Weight float64 `json:"weight,omitempty"`
}

func runDistricts(cmd *cobra.Command, args []string) error {
	city, err := loadCity()
	if err != nil {
		return err
	}
	reg, err := district.NewRegistry(city.Districts)
	if err != nil {
		return err
	}
	proj := geo.NewProjector(city.Origin)
	engine := proximity.NewEngine(reg, proj, city.Proximity)

	var weights proximity.Weights
	havePos := districtsAt != ""
	if havePos {
		pos, err := parseLatLng(districtsAt)
		if err != nil {
			return err
		}
		weights = engine.Compute(proj.Project(pos, 0))
	}

	byID := map[string]float64{}
	for _, e := range weights.Entries {
		byID[e.DistrictID] = e.Weight
	}

	var rows []districtRow
	appendRow := func(id string) {
		d := reg.ByID(id)
		if d == nil {
			return
		}
		rows = append(rows, districtRow{
			ID:     d.ID,
			Name:   d.NameFor(districtsLocale),
			Radius: d.Radius,
			Prompt: d.Prompt,
			Weight: byID[d.ID],
		})
	}
	if havePos {
		// Weight order (ties already broken by registry order).
		for _, e := range weights.Entries {
			appendRow(e.DistrictID)
		}
	} else {
		for _, d := range reg.All() {
			appendRow(d.ID)
		}
	}

	if districtsJSON {
		return cli.Output(rows, cli.OutputOptions{Format: cli.FormatJSON})
	}

	styles := cli.NewStyles(cli.DefaultTheme)
	for _, row := range rows {
		d := reg.ByID(row.ID)
		line := fmt.Sprintf("%s %s %s  r=%s",
			cli.Swatch(d.Color),
			styles.Title.Render(fmt.Sprintf("%-14s", row.Name)),
			styles.Help.Render(fmt.Sprintf("%-10s", row.ID)),
			cli.FormatMeters(row.Radius))
		if havePos {
			line += fmt.Sprintf("  %s %.2f", styles.WeightBar(row.Weight, 16), row.Weight)
		}
		fmt.Println(line)
		fmt.Println("   " + styles.Help.Render(row.Prompt))
	}
	if havePos {
		fmt.Printf("\ntotal weight %.2f\n", weights.Total)
	}
	return nil
}

// parseLatLng parses "lat,lng".
func parseLatLng(s string) (geo.LatLng, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geo.LatLng{}, fmt.Errorf("invalid position %q, want lat,lng", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geo.LatLng{}, fmt.Errorf("invalid latitude %q", parts[0])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.LatLng{}, fmt.Errorf("invalid longitude %q", parts[1])
	}
	return geo.LatLng{Lat: lat, Lng: lng}, nil
}
