package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/solarlog/tariff-tracker/httpcache"
	"github.com/solarlog/tariff-tracker/octopus"
	"github.com/solarlog/tariff-tracker/tariff"
	"github.com/solarlog/tariff-tracker/timeline"
)

// App manages application dependencies and logic.
type App struct {
	Config   *Config
	Tariffs  *timeline.Config
	Resolver *timeline.Resolver
	Octopus  *octopus.Service
}

func NewApp(config *Config) *App {
	rt := http.DefaultTransport

	if config.CacheDirectory != "disable" {
		cacheDir := config.CacheDirectory
		if cacheDir == "" {
			cacheDir = os.TempDir()
		}
		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			zap.L().Fatal("failed to create cache dir", zap.Error(err))
		}

		rt = &httpcache.CachingRoundTripper{
			UnderlyingTransport: http.DefaultTransport, CacheDir: path.Clean(cacheDir),
		}
		zap.L().Info("HTTP caching enabled", zap.String("dir", cacheDir))
	}

	tariffs := timeline.Load(config.ConfigFile)

	return &App{
		Config:   config,
		Tariffs:  tariffs,
		Resolver: timeline.NewResolver(tariffs),
		Octopus:  octopus.NewService(rt, config.APIKey),
	}
}

// Run dispatches the given subcommand. With no arguments it prints the
// timeline summary.
func (app *App) Run(args []string) error {
	cmd := "summary"
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "summary":
		return app.runSummary()
	case "validate":
		return app.runValidate()
	case "rate":
		return app.runRate(args)
	case "standing-charge":
		return app.runStandingCharge(args)
	case "add":
		return app.runAdd(args)
	case "remove":
		return app.runRemove(args)
	case "refresh":
		return app.runRefresh()
	case "products":
		return app.runProducts(args)
	default:
		return fmt.Errorf("unknown command %q (want summary, validate, rate, standing-charge, add, remove, refresh or products)", cmd)
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func (app *App) runSummary() error {
	return printJSON(app.Resolver.Summary())
}

func (app *App) runValidate() error {
	report := app.Resolver.Validate()
	if err := printJSON(report); err != nil {
		return err
	}
	if !report.Clean() {
		return fmt.Errorf("timeline validation found issues")
	}
	return nil
}

func parseDirection(s string) (tariff.FlowDirection, error) {
	return tariff.ParseFlowDirection(s)
}

func (app *App) runRate(args []string) error {
	fs := flag.NewFlagSet("rate", flag.ContinueOnError)
	at := fs.String("at", "", "Instant to resolve, RFC3339 format (defaults to now)")
	direction := fs.String("direction", "import", "Flow direction (import or export)")
	label := fs.String("label", "", "Explicit rate label (standard, day or night); derived from the tariff when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dir, err := parseDirection(*direction)
	if err != nil {
		return err
	}
	instant, err := parseInstant(*at)
	if err != nil {
		return err
	}

	var (
		rate tariff.Rate
		ok   bool
	)
	if *label == "" {
		rate, ok = app.Resolver.RateAt(instant, dir)
	} else {
		parsed, err := tariff.ParseLabel(*label)
		if err != nil {
			return err
		}
		rate, ok = app.Resolver.RateAtLabel(instant, dir, parsed)
	}

	if !ok {
		fmt.Printf("no %s rate information for %s\n", dir, instant.Format(time.RFC3339))
		return nil
	}
	fmt.Printf("%.2fp/kWh inc VAT (%.2fp exc VAT, %s rate)\n", rate.ValueIncVAT, rate.ValueExcVAT, rate.Label)
	return nil
}

func (app *App) runStandingCharge(args []string) error {
	fs := flag.NewFlagSet("standing-charge", flag.ContinueOnError)
	at := fs.String("at", "", "Instant to resolve, RFC3339 format (defaults to now)")
	direction := fs.String("direction", "import", "Flow direction (import or export)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dir, err := parseDirection(*direction)
	if err != nil {
		return err
	}
	instant, err := parseInstant(*at)
	if err != nil {
		return err
	}

	charge, ok := app.Resolver.StandingChargeAt(instant, dir)
	if !ok {
		fmt.Printf("no %s standing charge for %s\n", dir, instant.Format(time.RFC3339))
		return nil
	}
	fmt.Printf("%.2fp/day inc VAT (%.2fp exc VAT)\n", charge.ValueIncVAT, charge.ValueExcVAT)
	return nil
}

func parseInstant(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid instant %q (want RFC3339): %w", s, err)
	}
	return t, nil
}

func (app *App) runAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	direction := fs.String("direction", "import", "Flow direction (import or export)")
	start := fs.String("start", "", "Contract start date (2006-01-02)")
	end := fs.String("end", "", "Contract end date, empty for ongoing")
	product := fs.String("product", "", "Supplier product code")
	name := fs.String("name", "", "Display name")
	kind := fs.String("kind", "", "Tariff kind (fixed, variable, time_of_use, market_linked); classified from the product code when empty")
	notes := fs.String("notes", "", "Free-form notes")
	fetch := fs.Bool("fetch", false, "Fetch rate data for the new period from the supplier API")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dir, err := parseDirection(*direction)
	if err != nil {
		return err
	}
	if *start == "" || *product == "" || *name == "" {
		return fmt.Errorf("add requires -start, -product and -name")
	}
	startDate, err := tariff.ParseDate(*start)
	if err != nil {
		return err
	}
	var endDate *tariff.Date
	if *end != "" {
		d, err := tariff.ParseDate(*end)
		if err != nil {
			return err
		}
		endDate = &d
	}

	periodKind := tariff.Kind("")
	if *kind != "" {
		periodKind, err = tariff.ParseKind(*kind)
		if err != nil {
			return err
		}
	} else {
		var probe tariff.ProbeFunc
		if app.Config.APIKey != "" {
			probe = app.Octopus.ProbeDayNight(app.Config.Region)
		}
		periodKind = tariff.ClassifyProduct(*product, probe)
		zap.L().Info("classified product",
			zap.String("product", *product),
			zap.Stringer("kind", periodKind))
	}

	period := &tariff.Period{
		StartDate:     startDate,
		EndDate:       endDate,
		ProductCode:   *product,
		TariffCode:    octopus.BuildTariffCode(*product, app.Config.Region, dir),
		DisplayName:   *name,
		Kind:          periodKind,
		FlowDirection: dir,
		Region:        app.Config.Region,
		Notes:         *notes,
	}

	if err := app.Tariffs.Timeline(dir).AddPeriod(period); err != nil {
		return err
	}
	if *fetch {
		if err := app.Octopus.RefreshPeriod(period); err != nil {
			return err
		}
	}
	return app.Tariffs.Save(app.Config.ConfigFile)
}

func (app *App) runRemove(args []string) error {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	direction := fs.String("direction", "import", "Flow direction (import or export)")
	index := fs.Int("index", -1, "Period index in start-date order (see summary)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	dir, err := parseDirection(*direction)
	if err != nil {
		return err
	}
	if err := app.Tariffs.Timeline(dir).RemovePeriod(*index); err != nil {
		return err
	}
	return app.Tariffs.Save(app.Config.ConfigFile)
}

func (app *App) runRefresh() error {
	if err := app.Octopus.RefreshAll(app.Tariffs); err != nil {
		return err
	}
	return app.Tariffs.Save(app.Config.ConfigFile)
}

func (app *App) runProducts(args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	search := fs.String("search", "", "Search term for product code or display name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	matches, err := app.Octopus.SearchProducts(*search)
	if err != nil {
		return err
	}
	for _, p := range matches {
		fmt.Printf("%s\t%s\t%s\n", p.Code, p.DisplayName, tariff.ClassifyProduct(p.Code, nil))
	}
	return nil
}
