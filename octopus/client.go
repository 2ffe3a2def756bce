// Package octopus wraps the generated Octopus Energy REST client with the
// fetch operations the tariff tracker needs: paginated unit rates (standard
// and day/night), standing charges and product search. The engine itself
// never calls out here; ingestion populates periods up front and queries run
// over the stored records.
package octopus

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	httptransport "github.com/go-openapi/runtime/client"
	"github.com/go-openapi/strfmt"
	octopus "github.com/mgazza/go-octopus-energy/client"
	"github.com/mgazza/go-octopus-energy/client/products"

	"github.com/solarlog/tariff-tracker/tariff"
)

// pageSize fetches two weeks of half-hour slots per page.
const pageSize = int64(672)

// Service handles interactions with the Octopus Energy API.
type Service struct {
	Client *octopus.OctopusEnergyRESTAPI

	loc *time.Location
}

// NewService creates a new Service with pre-configured authentication. The
// RoundTripper is injectable so callers can layer caching or stubbing.
func NewService(rt http.RoundTripper, apiKey string) *Service {
	cfg := octopus.DefaultTransportConfig()
	transport := httptransport.New(cfg.Host, cfg.BasePath, cfg.Schemes)
	transport.Transport = rt
	transport.DefaultAuthentication = httptransport.BasicAuth(apiKey, "")

	client := octopus.New(transport, strfmt.Default)
	return &Service{
		Client: client,
		loc:    marketTimezone(),
	}
}

func marketTimezone() *time.Location {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		return time.UTC
	}
	return loc
}

// BuildTariffCode assembles a full tariff code from its components:
// electricity, direct debit, product, region, with the outgoing suffix for
// export tariffs. Example: E-1R-VAR-22-11-01-C.
func BuildTariffCode(productCode, region string, direction tariff.FlowDirection) string {
	suffix := ""
	if direction == tariff.Export {
		suffix = "-OUTGOING"
	}
	return fmt.Sprintf("E-1R-%s-%s%s", productCode, region, suffix)
}

// FetchStandardRates fetches the standard unit rates for a tariff over
// [start, end) with pagination.
func (s *Service) FetchStandardRates(productCode, tariffCode string, start, end time.Time) ([]tariff.Rate, error) {
	size := pageSize
	page := int64(1)

	params := products.NewListElectricityTariffStandardUnitRatesParams().
		WithProductCode(productCode).
		WithTariffCode(tariffCode).
		WithPeriodFrom((*strfmt.DateTime)(&start)).
		WithPeriodTo((*strfmt.DateTime)(&end)).
		WithPageSize(&size)

	var rates []tariff.Rate
	for {
		params.WithPage(&page)
		response, err := s.Client.Products.ListElectricityTariffStandardUnitRates(params, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch standard unit rates: %w", err)
		}

		for _, r := range response.Payload.Results {
			rates = append(rates, toRate(tariff.LabelStandard, r.ValueExcVat, r.ValueIncVat, (*time.Time)(r.ValidFrom), (*time.Time)(r.ValidTo)))
		}

		if response.Payload.Next == nil {
			break
		}
		page++
	}

	return rates, nil
}

// FetchDayNightRates fetches the day and night unit rates of a two-rate
// tariff over [start, end), labelled accordingly.
func (s *Service) FetchDayNightRates(productCode, tariffCode string, start, end time.Time) ([]tariff.Rate, error) {
	day, err := s.fetchDayRates(productCode, tariffCode, start, end)
	if err != nil {
		return nil, err
	}
	night, err := s.fetchNightRates(productCode, tariffCode, start, end)
	if err != nil {
		return nil, err
	}
	return append(day, night...), nil
}

func (s *Service) fetchDayRates(productCode, tariffCode string, start, end time.Time) ([]tariff.Rate, error) {
	size := pageSize
	page := int64(1)

	params := products.NewListElectricityTariffDayUnitRatesParams().
		WithProductCode(productCode).
		WithTariffCode(tariffCode).
		WithPeriodFrom((*strfmt.DateTime)(&start)).
		WithPeriodTo((*strfmt.DateTime)(&end)).
		WithPageSize(&size)

	var rates []tariff.Rate
	for {
		params.WithPage(&page)
		response, err := s.Client.Products.ListElectricityTariffDayUnitRates(params, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch day unit rates: %w", err)
		}

		for _, r := range response.Payload.Results {
			rates = append(rates, toRate(tariff.LabelDay, r.ValueExcVat, r.ValueIncVat, (*time.Time)(r.ValidFrom), (*time.Time)(r.ValidTo)))
		}

		if response.Payload.Next == nil {
			break
		}
		page++
	}

	return rates, nil
}

func (s *Service) fetchNightRates(productCode, tariffCode string, start, end time.Time) ([]tariff.Rate, error) {
	size := pageSize
	page := int64(1)

	params := products.NewListElectricityTariffNightUnitRatesParams().
		WithProductCode(productCode).
		WithTariffCode(tariffCode).
		WithPeriodFrom((*strfmt.DateTime)(&start)).
		WithPeriodTo((*strfmt.DateTime)(&end)).
		WithPageSize(&size)

	var rates []tariff.Rate
	for {
		params.WithPage(&page)
		response, err := s.Client.Products.ListElectricityTariffNightUnitRates(params, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch night unit rates: %w", err)
		}

		for _, r := range response.Payload.Results {
			rates = append(rates, toRate(tariff.LabelNight, r.ValueExcVat, r.ValueIncVat, (*time.Time)(r.ValidFrom), (*time.Time)(r.ValidTo)))
		}

		if response.Payload.Next == nil {
			break
		}
		page++
	}

	return rates, nil
}

// FetchStandingCharges fetches the standing charges for a tariff over
// [start, end) with pagination.
func (s *Service) FetchStandingCharges(productCode, tariffCode string, start, end time.Time) ([]tariff.StandingCharge, error) {
	size := pageSize
	page := int64(1)

	params := products.NewListElectricityTariffStandingChargesParams().
		WithProductCode(productCode).
		WithTariffCode(tariffCode).
		WithPeriodFrom((*strfmt.DateTime)(&start)).
		WithPeriodTo((*strfmt.DateTime)(&end)).
		WithPageSize(&size)

	var charges []tariff.StandingCharge
	for {
		params.WithPage(&page)
		response, err := s.Client.Products.ListElectricityTariffStandingCharges(params, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch standing charges: %w", err)
		}

		for _, c := range response.Payload.Results {
			charges = append(charges, tariff.StandingCharge{
				ValidFrom:   fromOpenBound((*time.Time)(c.ValidFrom)),
				ValidTo:     (*time.Time)(c.ValidTo),
				ValueExcVAT: c.ValueExcVat,
				ValueIncVAT: c.ValueIncVat,
			})
		}

		if response.Payload.Next == nil {
			break
		}
		page++
	}

	return charges, nil
}

// Product is a supplier product as returned by search.
type Product struct {
	Code        string
	DisplayName string
}

// SearchProducts returns the products whose code or display name contains
// term, case-insensitively.
func (s *Service) SearchProducts(term string) ([]Product, error) {
	response, err := s.Client.Products.ListProducts(products.NewListProductsParams(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	term = strings.ToLower(term)
	var matches []Product
	for _, p := range response.Payload.Results {
		if p.Code == nil {
			continue
		}
		displayName := ""
		if p.DisplayName != nil {
			displayName = *p.DisplayName
		}
		if strings.Contains(strings.ToLower(*p.Code), term) ||
			strings.Contains(strings.ToLower(displayName), term) {
			matches = append(matches, Product{Code: *p.Code, DisplayName: displayName})
		}
	}
	return matches, nil
}

// ProbeDayNight adapts the client into a tariff.ProbeFunc for the classifier:
// it reports whether a product publishes separate day and night unit rates,
// by fetching a one-day sample window.
func (s *Service) ProbeDayNight(region string) tariff.ProbeFunc {
	return func(productCode string) (bool, error) {
		tariffCode := BuildTariffCode(productCode, region, tariff.Import)
		from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 0, 1)

		day, err := s.fetchDayRates(productCode, tariffCode, from, to)
		if err != nil || len(day) == 0 {
			return false, err
		}
		night, err := s.fetchNightRates(productCode, tariffCode, from, to)
		if err != nil {
			return false, err
		}
		return len(night) > 0, nil
	}
}

func toRate(label tariff.Label, excVAT, incVAT float64, from, to *time.Time) tariff.Rate {
	return tariff.Rate{
		ValidFrom:   fromOpenBound(from),
		ValidTo:     to,
		ValueExcVAT: excVAT,
		ValueIncVAT: incVAT,
		Label:       label,
	}
}

// fromOpenBound maps the API's null valid_from (in effect since before
// records began) to the zero time, which every instant is on or after.
func fromOpenBound(from *time.Time) time.Time {
	if from == nil {
		return time.Time{}
	}
	return *from
}
