package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/skytonelabs/skytone/pkg/audio/pcm"
	"github.com/skytonelabs/skytone/pkg/audio/sink"
	"github.com/skytonelabs/skytone/pkg/cli"
	"github.com/skytonelabs/skytone/pkg/flyover"
	"github.com/skytonelabs/skytone/pkg/geo"
	"github.com/skytonelabs/skytone/pkg/musicrt"
	"github.com/skytonelabs/skytone/pkg/soundtrack"
	"github.com/skytonelabs/skytone/pkg/tour"
)

var (
	flyDuration time.Duration
	flyTick     time.Duration
	flyOutput   string
	flyRate     int
	flyAPIKey   string
	flyStart    string
	flyNoTour   bool
)

var flyCmd = &cobra.Command{
	Use:   "fly",
	Short: "Run a headless flyover and stream the soundtrack",
	Long: `Run the flyover pipeline without a renderer: a virtual camera flies
the city's scripted tour while the soundtrack streams from the backend.

The decoded PCM is written to the output file (raw 16-bit little-endian),
or discarded when no output is given. Without an API key the flight runs
silent and only the weight pipeline is exercised.

Examples:
  skytone fly --duration 1m -o soundtrack.pcm
  skytone fly --duration 30s -o out.pcm --rate 44100
  skytone fly --start 35.6595,139.7005,300 --no-tour`,
	RunE: runFly,
}

func init() {
	flyCmd.Flags().DurationVar(&flyDuration, "duration", 60*time.Second, "flight duration")
	flyCmd.Flags().DurationVar(&flyTick, "tick", 100*time.Millisecond, "simulation tick")
	flyCmd.Flags().StringVarP(&flyOutput, "output", "o", "", "PCM output file (default: discard audio)")
	flyCmd.Flags().IntVar(&flyRate, "rate", musicrt.OutputFormat.Rate, "output sample rate (resampled when it differs from the stream)")
	flyCmd.Flags().StringVar(&flyAPIKey, "api-key", "", "backend API key (overrides context and $SKYTONE_API_KEY)")
	flyCmd.Flags().StringVar(&flyStart, "start", "", "start position lat,lng[,alt]")
	flyCmd.Flags().BoolVar(&flyNoTour, "no-tour", false, "hold position instead of flying the scripted tour")
}

// virtualCamera is the headless stand-in for the renderer's camera.
type virtualCamera struct {
	pose tour.Pose
}

func (v *virtualCamera) Pose() tour.Pose     { return v.pose }
func (v *virtualCamera) SetPose(p tour.Pose) { v.pose = p }

func runFly(cmd *cobra.Command, args []string) error {
	city, err := loadCity()
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("open client store: %w", err)
	}
	defer store.Close()

	out, err := buildSink(flyOutput, flyRate)
	if err != nil {
		return err
	}
	defer out.Close()

	connect := musicrt.ConnectConfig{}
	if ctx := getContext(); ctx != nil {
		connect.Endpoint = ctx.Endpoint
		connect.Model = ctx.Model
	}
	track := soundtrack.New(out, soundtrack.Config{
		Connect:    connect,
		Generation: city.Generation,
	})
	defer track.Close()

	f, err := flyover.New(city, track, store)
	if err != nil {
		return err
	}

	sig, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if apiKey := resolveAPIKey(); apiKey != "" {
		track.Connect(sig, apiKey)
		if err := waitConnected(sig, track, 15*time.Second); err != nil {
			return err
		}
		track.Play()
		cli.PrintSuccess("Connected, soundtrack playing")
	} else {
		cli.PrintInfo("No API key configured; flying silent (weights only)")
	}

	cam := &virtualCamera{pose: tour.Pose{
		Position: startPosition(f.Projector(), city.Origin),
		Rotation: geo.Identity,
	}}

	if !flyNoTour {
		f.Tour().Start(cam)
	}

	styles := cli.NewStyles(cli.DefaultTheme)
	f.Presenter().OnVisibilityChange(func(visible bool) {
		if !visible {
			return
		}
		id := f.Presenter().Displayed()
		if d := f.Registry().ByID(id); d != nil {
			fmt.Printf("%s %s\n", styles.Label.Render("▸ entering"), styles.Title.Render(d.Name))
		}
	})

	ticker := time.NewTicker(flyTick)
	defer ticker.Stop()

	var elapsed time.Duration
	for elapsed < flyDuration {
		select {
		case <-sig.Done():
			cli.PrintInfo("Interrupted after %s", cli.FormatDuration(elapsed))
			return nil
		case <-ticker.C:
		}

		weights := f.Tick(cam, flyTick)
		elapsed += flyTick

		if verbose && elapsed%time.Second == 0 {
			line := fmt.Sprintf("t=%-8s tour=%-13s", cli.FormatDuration(elapsed), f.Tour().Phase())
			if len(weights.Entries) > 0 && weights.Entries[0].Weight > 0 {
				top := weights.Entries[0]
				line += fmt.Sprintf(" %s %s %.2f", top.DistrictID, styles.WeightBar(top.Weight, 16), top.Weight)
			}
			fmt.Fprintln(os.Stderr, line)
		}
	}

	cli.PrintSuccess("Flight complete: %s", cli.FormatDuration(elapsed))
	return nil
}

// resolveAPIKey returns the backend key: flag, then environment, then
// the selected context.
func resolveAPIKey() string {
	if flyAPIKey != "" {
		return flyAPIKey
	}
	if key := os.Getenv("SKYTONE_API_KEY"); key != "" {
		return key
	}
	if ctx := getContext(); ctx != nil {
		return ctx.APIKey
	}
	return ""
}

// buildSink creates the audio destination: a raw PCM file (resampled if
// the requested rate differs from the stream) or a discard sink.
func buildSink(path string, rate int) (sink.Sink, error) {
	if path == "" {
		return sink.Discard{Fmt: musicrt.OutputFormat}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	w := &sink.Writer{W: file, Fmt: pcm.Format{
		Rate:     rate,
		Channels: musicrt.OutputFormat.Channels,
	}}
	if rate == musicrt.OutputFormat.Rate {
		return w, nil
	}
	printVerbose("resampling %d Hz -> %d Hz", musicrt.OutputFormat.Rate, rate)
	return sink.NewResample(musicrt.OutputFormat, w)
}

// waitConnected polls until the controller is connected, errors, or the
// deadline passes.
func waitConnected(ctx context.Context, track *soundtrack.Controller, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		switch track.State() {
		case soundtrack.StateConnected:
			return nil
		case soundtrack.StateError:
			return fmt.Errorf("connect failed: %w", track.Err())
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return fmt.Errorf("connect timed out after %s", timeout)
}

// startPosition parses --start, defaulting to 400m above the city
// origin.
func startPosition(proj *geo.Projector, origin geo.LatLng) geo.Vec3 {
	pos := proj.Project(origin, 400)
	if flyStart == "" {
		return pos
	}
	parts := strings.Split(flyStart, ",")
	if len(parts) < 2 {
		cli.PrintError("invalid --start %q, using origin", flyStart)
		return pos
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		cli.PrintError("invalid --start %q, using origin", flyStart)
		return pos
	}
	alt := 400.0
	if len(parts) > 2 {
		if a, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64); err == nil {
			alt = a
		}
	}
	return proj.Project(geo.LatLng{Lat: lat, Lng: lng}, alt)
}
