package travelhost

import (
	"context"
	"encoding/json"
	"fmt"

	"travelhost-backend/lib/textutil"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel/codes"
)

type marketKind int

const (
	originMarkets marketKind = iota
	destinationMarkets
)

func (k marketKind) endpoint() string {
	if k == originMarkets {
		return "/Services/MarketService.asmx/GetOrigins"
	}
	return "/Services/MarketService.asmx/GetDestinations"
}

// the host's auxiliary endpoints wrap every array payload in a fixed
// single-field envelope.
type marketEnvelope struct {
	D []marketRecord `json:"d"`
}

type marketRecord struct {
	Code string `json:"Code"`
	Name string `json:"Name"`
}

// quotedParam renders a parameter the way the host's endpoints demand:
// a literal quoted string, or the literal text "null" when absent. An
// omitted parameter is rejected upstream.
func quotedParam(v string) string {
	if v == "" {
		return "null"
	}
	return `"` + v + `"`
}

func (c *Client) fetchMarkets(ctx context.Context, kind marketKind) ([]Market, error) {
	ctx, span := tracer.Start(ctx, "client:fetchMarkets")
	defer span.End()

	if err := c.EnsureLoggedIn(ctx); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	body := map[string]string{
		"tenantId": quotedParam(c.creds.TenantId),
		"filter":   quotedParam(""),
	}
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json; charset=utf-8").
		SetBody(body).
		Post(c.appUrl.JoinPath(kind.endpoint()).String())
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch market list")
		return nil, err
	}

	var envelope marketEnvelope
	err = json.Unmarshal(res.Body(), &envelope)
	if err != nil {
		span.SetStatus(codes.Error, "failed to unmarshal market list")
		return nil, err
	}

	markets := make([]Market, len(envelope.D))
	for i, record := range envelope.D {
		markets[i] = Market{Code: record.Code, Name: record.Name}
	}
	return markets, nil
}

// Origins returns the host's origin market list, cached after the
// first fetch.
func (c *Client) Origins(ctx context.Context) ([]Market, error) {
	if c.origins == nil {
		markets, err := c.fetchMarkets(ctx, originMarkets)
		if err != nil {
			return nil, err
		}
		c.origins = markets
	}
	return c.origins, nil
}

// Destinations returns the host's destination market list, cached
// after the first fetch.
func (c *Client) Destinations(ctx context.Context) ([]Market, error) {
	if c.destinations == nil {
		markets, err := c.fetchMarkets(ctx, destinationMarkets)
		if err != nil {
			return nil, err
		}
		c.destinations = markets
	}
	return c.destinations, nil
}

// resolveMarketLabel maps a market code to the display string the
// search form expects. Exact code match first, then an exact name
// match, then the closest market name by JaroWinkler similarity, since
// operators tend to type names rather than codes.
func (c *Client) resolveMarketLabel(ctx context.Context, code string, kind marketKind) (string, error) {
	var markets []Market
	var err error
	if kind == originMarkets {
		markets, err = c.Origins(ctx)
	} else {
		markets, err = c.Destinations(ctx)
	}
	if err != nil {
		return "", err
	}

	for _, market := range markets {
		if market.Code == code {
			return marketLabel(market), nil
		}
	}

	normalized := textutil.NormalizeName(code)
	for _, market := range markets {
		if textutil.NormalizeName(market.Name) == normalized {
			return marketLabel(market), nil
		}
	}

	best := -1.0
	var bestMarket Market
	for _, market := range markets {
		similarity := matchr.JaroWinkler(code, market.Name, false)
		if similarity > best {
			best = similarity
			bestMarket = market
		}
	}
	if best >= 0.85 {
		return marketLabel(bestMarket), nil
	}

	return "", fmt.Errorf("unknown market %q", code)
}

func marketLabel(m Market) string {
	return fmt.Sprintf("%s (%s)", m.Name, m.Code)
}
