package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/barikoi/barikoi-go"
	"github.com/barikoi/barikoi-go/geo"
	"github.com/barikoi/barikoi-go/route"
	"github.com/barikoi/barikoi-go/transport"
)

type Options struct {
	APIKey  string `long:"api-key" description:"Barikoi API key, defaults to $BARIKOI_API_KEY"`
	BaseURL string `long:"base-url" description:"API root, defaults to $BARIKOI_BASE_URL"`
	Pretty  bool   `short:"p" long:"pretty" description:"Indent JSON output"`
}

var (
	opts Options
	ctx  = context.Background()
)

func main() {
	var cancel context.CancelFunc
	ctx, cancel = signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	parser := newParser()
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		cancel()
		os.Exit(1)
	}
}

func newParser() *flags.Parser {
	parser := flags.NewParser(&opts, flags.Default)
	parser.AddCommand("reverse", "Reverse geocode a coordinate", "", &reverseCommand{})
	parser.AddCommand("geocode", "Geocode an address (Rupantor)", "", &geocodeCommand{})
	parser.AddCommand("autocomplete", "Suggest places for a partial query", "", &autocompleteCommand{})
	parser.AddCommand("search", "Search places", "", &searchCommand{})
	parser.AddCommand("nearby", "List places around a coordinate", "", &nearbyCommand{})
	parser.AddCommand("route", "Route overview through points", "", &routeCommand{})
	parser.AddCommand("navigate", "Turn by turn navigation between two points", "", &navigateCommand{})
	parser.AddCommand("check-nearby", "Check whether a position is within a radius of a destination", "", &checkNearbyCommand{})
	parser.AddCommand("divisions", "List divisions", "", &divisionsCommand{})
	parser.AddCommand("districts", "List districts", "", &districtsCommand{})
	return parser
}

func sdk() (*barikoi.Barikoi, error) {
	var sdkOptions []barikoi.Option
	if opts.APIKey != "" {
		sdkOptions = append(sdkOptions, barikoi.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		sdkOptions = append(sdkOptions, barikoi.WithBaseURL(opts.BaseURL))
	}
	return barikoi.New(sdkOptions...)
}

func call(fn func(b *barikoi.Barikoi) (any, error)) error {
	b, err := sdk()
	if err != nil {
		return err
	}
	out, err := fn(b)
	if err != nil {
		return err
	}
	return printJSON(out)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	if opts.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// options turns key:value flags into request options. "true" and "false"
// become booleans so each endpoint applies its own encoding.
func options(values map[string]string) transport.Options {
	o := transport.Options{}
	for k, v := range values {
		switch v {
		case "true", "false":
			o[k] = v == "true"
		default:
			o[k] = v
		}
	}
	return o
}

// parsePair parses "a,b" into two floats.
func parsePair(s string) (float64, float64, error) {
	first, second, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("invalid pair %q (expected a,b)", s)
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(first), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid pair %q: %w", s, err)
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(second), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid pair %q: %w", s, err)
	}
	return a, b, nil
}

type reverseCommand struct {
	Longitude float64           `long:"lon" required:"true" description:"Longitude"`
	Latitude  float64           `long:"lat" required:"true" description:"Latitude"`
	Option    map[string]string `short:"o" long:"option" description:"Extra option as key:value, e.g. district:true"`
}

func (c *reverseCommand) Execute([]string) error {
	return call(func(b *barikoi.Barikoi) (any, error) {
		return b.ReverseGeocode(ctx, c.Longitude, c.Latitude, options(c.Option))
	})
}

type geocodeCommand struct {
	Option map[string]string `short:"o" long:"option" description:"Extra option as key:value, e.g. thana:true"`
	Args   struct {
		Address string `positional-arg-name:"address" required:"yes"`
	} `positional-args:"yes"`
}

func (c *geocodeCommand) Execute([]string) error {
	return call(func(b *barikoi.Barikoi) (any, error) {
		return b.Geocode(ctx, c.Args.Address, options(c.Option))
	})
}

type autocompleteCommand struct {
	Bangla bool `long:"bangla" description:"Include Bangla names"`
	City   bool `long:"city" description:"Include city"`
	Area   bool `long:"area" description:"Include area"`
	Args   struct {
		Query string `positional-arg-name:"query" required:"yes"`
	} `positional-args:"yes"`
}

func (c *autocompleteCommand) Execute([]string) error {
	o := transport.Options{}
	if c.Bangla {
		o["bangla"] = true
	}
	if c.City {
		o["city"] = true
	}
	if c.Area {
		o["area"] = true
	}
	return call(func(b *barikoi.Barikoi) (any, error) {
		return b.Autocomplete(ctx, c.Args.Query, o)
	})
}

type searchCommand struct {
	Option map[string]string `short:"o" long:"option" description:"Extra option as key:value"`
	Args   struct {
		Query string `positional-arg-name:"query" required:"yes"`
	} `positional-args:"yes"`
}

func (c *searchCommand) Execute([]string) error {
	return call(func(b *barikoi.Barikoi) (any, error) {
		return b.SearchPlace(ctx, c.Args.Query, options(c.Option))
	})
}

type nearbyCommand struct {
	Longitude float64  `long:"lon" required:"true" description:"Longitude"`
	Latitude  float64  `long:"lat" required:"true" description:"Latitude"`
	Distance  float64  `short:"d" long:"distance" default:"0.5" description:"Radius in kilometres"`
	Limit     int      `short:"l" long:"limit" default:"10" description:"Maximum number of places"`
	Category  string   `long:"category" description:"Only places of this category"`
	Types     []string `long:"type" description:"Only places of these types (repeatable)"`
}

func (c *nearbyCommand) Execute([]string) error {
	return call(func(b *barikoi.Barikoi) (any, error) {
		switch {
		case c.Category != "":
			return b.NearbyWithCategory(ctx, c.Longitude, c.Latitude, c.Category, c.Distance, c.Limit)
		case len(c.Types) > 0:
			return b.NearbyWithTypes(ctx, c.Longitude, c.Latitude, c.Types, c.Distance, c.Limit)
		default:
			return b.Nearby(ctx, c.Longitude, c.Latitude, c.Distance, c.Limit, nil)
		}
	})
}

type routeCommand struct {
	Points  []string `long:"point" required:"true" description:"lon,lat point (repeat at least twice)"`
	Profile string   `long:"profile" choice:"car" choice:"foot" default:"car" description:"Travel profile"`
	Decode  bool     `long:"decode" description:"Print the decoded route geometry instead of the raw response"`
}

func (c *routeCommand) Execute([]string) error {
	points := make([]geo.Coordinate, 0, len(c.Points))
	for _, p := range c.Points {
		lon, lat, err := parsePair(p)
		if err != nil {
			return err
		}
		points = append(points, geo.NewCoordinate(lon, lat))
	}
	return call(func(b *barikoi.Barikoi) (any, error) {
		res, err := b.RouteOverview(ctx, points, transport.Options{"profile": c.Profile})
		if err != nil || !c.Decode {
			return res, err
		}
		return route.GeometryOf(res)
	})
}

type navigateCommand struct {
	From        string `long:"from" required:"true" description:"Start as lat,lng"`
	To          string `long:"to" required:"true" description:"Destination as lat,lng"`
	Type        string `long:"type" choice:"vh" choice:"gh" default:"vh" description:"Routing engine"`
	Profile     string `long:"profile" choice:"motorcycle" choice:"car" choice:"bike" default:"motorcycle" description:"Vehicle"`
	CountryCode string `long:"country-code" description:"ISO country code"`
}

func (c *navigateCommand) Execute([]string) error {
	startLat, startLng, err := parsePair(c.From)
	if err != nil {
		return err
	}
	destLat, destLng, err := parsePair(c.To)
	if err != nil {
		return err
	}
	o := transport.Options{"type": c.Type, "profile": c.Profile}
	if c.CountryCode != "" {
		o["country_code"] = c.CountryCode
	}
	return call(func(b *barikoi.Barikoi) (any, error) {
		return b.DetailedNavigation(ctx, startLat, startLng, destLat, destLng, o)
	})
}

type checkNearbyCommand struct {
	Destination string  `long:"destination" required:"true" description:"Destination as lat,lng"`
	Current     string  `long:"current" required:"true" description:"Current position as lat,lng"`
	Radius      float64 `short:"r" long:"radius" default:"50" description:"Radius in metres"`
}

func (c *checkNearbyCommand) Execute([]string) error {
	destLat, destLng, err := parsePair(c.Destination)
	if err != nil {
		return err
	}
	curLat, curLng, err := parsePair(c.Current)
	if err != nil {
		return err
	}
	return call(func(b *barikoi.Barikoi) (any, error) {
		return b.CheckNearby(ctx, destLat, destLng, curLat, curLng, c.Radius)
	})
}

type divisionsCommand struct{}

func (c *divisionsCommand) Execute([]string) error {
	return call(func(b *barikoi.Barikoi) (any, error) {
		return b.Administrative().Divisions(ctx)
	})
}

type districtsCommand struct {
	Division string `long:"division" description:"Only districts of this division"`
}

func (c *districtsCommand) Execute([]string) error {
	return call(func(b *barikoi.Barikoi) (any, error) {
		return b.Administrative().Districts(ctx, c.Division)
	})
}
