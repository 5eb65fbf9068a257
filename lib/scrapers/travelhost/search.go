package travelhost

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"travelhost-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const searchPagePath = "/SearchTools.aspx"

// the framework initialization call on the search surface names the
// script manager the partial-postback protocol posts through.
var scriptManagerRegex = regexp.MustCompile(`Sys\.WebForms\.PageRequestManager\._initialize\('([^']+)'`)

type searchPage struct {
	hidden          map[string]string
	scriptManagerId string
	vendors         []Vendor
}

func (c *Client) fetchSearchPage(ctx context.Context) (searchPage, error) {
	ctx, span := tracer.Start(ctx, "client:fetchSearchPage")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		Get(c.appUrl.JoinPath(searchPagePath).String())
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch search page")
		return searchPage{}, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse search page html")
		return searchPage{}, err
	}

	page := searchPage{
		hidden: htmlutil.HiddenFields(doc),
	}

	for _, script := range doc.Find("script").Nodes {
		groups := scriptManagerRegex.FindStringSubmatch(htmlutil.GetText(script))
		if len(groups) >= 2 {
			page.scriptManagerId = groups[1]
			break
		}
	}
	if page.scriptManagerId == "" {
		span.SetStatus(codes.Error, "failed to find script manager id")
		return searchPage{}, fmt.Errorf("could not find the script manager id on the search page")
	}

	vendorSelect := doc.Find(fmt.Sprintf(
		"select[name='%s']",
		strings.ReplaceAll(controlName("HotelSearch", "ddlVendor"), "$", `\$`),
	))
	for _, opt := range htmlutil.GetOptions(vendorSelect) {
		page.vendors = append(page.vendors, Vendor{Code: opt.Value, Name: opt.Label})
	}

	return page, nil
}

// Vendors returns the host's live vendor list, harvested from the
// search surface. The list is a side effect of the first search and is
// cached on the client for reuse by listing operations.
func (c *Client) Vendors(ctx context.Context) ([]Vendor, error) {
	if c.vendors != nil {
		return c.vendors, nil
	}

	ctx, span := tracer.Start(ctx, "client:Vendors")
	defer span.End()

	if err := c.EnsureLoggedIn(ctx); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	page, err := c.fetchSearchPage(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	c.vendors = page.vendors
	return c.vendors, nil
}

// SearchVendor runs the two-step search for one vendor: harvest the
// search surface's opaque state, then post the layered form back. Any
// failure is a per-vendor failure; callers are expected to skip and
// move on.
func (c *Client) SearchVendor(ctx context.Context, vendor Vendor, params SearchParams) ([]HotelResult, error) {
	ctx, span := tracer.Start(ctx, "client:SearchVendor")
	defer span.End()
	span.SetAttributes(
		attribute.String("vendor", vendor.Code),
		attribute.String("origin", params.Origin),
		attribute.String("destination", params.Destination),
	)

	if err := params.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	page, err := c.fetchSearchPage(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("vendor %s: %w", vendor.Code, err)
	}
	if c.vendors == nil {
		c.vendors = page.vendors
	}

	originLabel, err := c.resolveMarketLabel(ctx, params.Origin, originMarkets)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("vendor %s: %w", vendor.Code, err)
	}
	destinationLabel, err := c.resolveMarketLabel(ctx, params.Destination, destinationMarkets)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("vendor %s: %w", vendor.Code, err)
	}

	form := buildSearchForm(page.hidden, page.scriptManagerId, vendor, params, originLabel, destinationLabel)

	res, err := c.http.R().
		SetContext(ctx).
		SetBody(form.Encode()).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		Post(c.appUrl.JoinPath(searchPagePath).String())
	if err != nil {
		span.SetStatus(codes.Error, "failed to post search")
		return nil, fmt.Errorf("vendor %s: %w", vendor.Code, err)
	}

	hotels, err := ParseResults(ctx, res.Body())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("vendor %s: %w", vendor.Code, err)
	}
	return hotels, nil
}
