// Package hotelsearch aggregates per-vendor hotel searches behind a
// result cache. One search fans out over every vendor the host offers,
// tolerating individual vendor failures.
package hotelsearch

import (
	"context"
	"log/slog"
	"time"

	"travelhost-backend/lib/resultstore"
	"travelhost-backend/lib/scrapers/travelhost"
	"travelhost-backend/lib/sessionstore"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/hotelsearch")

type Options struct {
	// base url of the host's login origin
	LoginBaseUrl string
	// base url of the application origin
	AppBaseUrl string
	// how long a persisted login session stays valid
	SessionTTL time.Duration
	Results    resultstore.Store
	Sessions   sessionstore.Store
}

type Service struct {
	results  resultstore.Store
	sessions sessionstore.Store
	clients  clientCache
	// pause between consecutive vendor searches
	vendorDelay time.Duration
}

func NewService(opts Options) Service {
	dial := func(creds travelhost.Credentials) (searcher, error) {
		client, err := travelhost.NewClient(travelhost.ClientOptions{
			LoginBaseUrl: opts.LoginBaseUrl,
			AppBaseUrl:   opts.AppBaseUrl,
			Credentials:  creds,
			Sessions:     opts.Sessions,
			SessionTTL:   opts.SessionTTL,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return Service{
		results:     opts.Results,
		sessions:    opts.Sessions,
		clients:     newClientCache(dial),
		vendorDelay: time.Second * 2,
	}
}

// Aggregate is the combined outcome of one search across all vendors.
type Aggregate struct {
	// hotels in vendor processing order
	Hotels    []travelhost.HotelResult
	FromCache bool
	// vendor codes whose search failed and was skipped
	FailedVendors []string
}

// SearchAllVendors answers from the result cache when it can; otherwise
// it logs in, walks every vendor strictly in sequence and caches
// whatever it gathered. A failed vendor costs its own results, never
// the whole search. Callers bound the total wall-clock time through
// ctx.
func (s Service) SearchAllVendors(ctx context.Context, creds travelhost.Credentials, params travelhost.SearchParams) (Aggregate, error) {
	ctx, span := tracer.Start(ctx, "SearchAllVendors")
	defer span.End()
	span.SetAttributes(
		attribute.String("user", creds.Identity()),
		attribute.String("origin", params.Origin),
		attribute.String("destination", params.Destination),
	)

	if err := params.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Aggregate{}, err
	}

	if hotels, ok := s.results.Get(ctx, params); ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return Aggregate{Hotels: hotels, FromCache: true}, nil
	}

	client, err := s.clients.get(creds)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Aggregate{}, err
	}
	if err := client.EnsureLoggedIn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Aggregate{}, err
	}
	vendors, err := client.Vendors(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Aggregate{}, err
	}

	var agg Aggregate
	for i, vendor := range vendors {
		// the host throttles per session; vendors are searched one at
		// a time with a pause in between
		if i > 0 {
			select {
			case <-ctx.Done():
				span.SetStatus(codes.Error, ctx.Err().Error())
				return Aggregate{}, ctx.Err()
			case <-time.After(s.vendorDelay):
			}
		}

		hotels, err := client.SearchVendor(ctx, vendor, params)
		if err != nil {
			slog.WarnContext(ctx, "vendor search failed, skipping", "vendor", vendor.Code, "err", err)
			span.RecordError(err)
			agg.FailedVendors = append(agg.FailedVendors, vendor.Code)
			continue
		}
		agg.Hotels = append(agg.Hotels, hotels...)
	}
	span.SetAttributes(
		attribute.Int("hotels", len(agg.Hotels)),
		attribute.Int("failed_vendors", len(agg.FailedVendors)),
	)

	// a broken cache degrades the next search, it never fails this one
	err = s.results.Put(ctx, params, agg.Hotels)
	if err != nil {
		slog.WarnContext(ctx, "failed to cache search results", "err", err)
		span.RecordError(err)
	}

	return agg, nil
}

func (s Service) Vendors(ctx context.Context, creds travelhost.Credentials) ([]travelhost.Vendor, error) {
	ctx, span := tracer.Start(ctx, "Vendors")
	defer span.End()

	client, err := s.clients.get(creds)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return client.Vendors(ctx)
}

func (s Service) Origins(ctx context.Context, creds travelhost.Credentials) ([]travelhost.Market, error) {
	ctx, span := tracer.Start(ctx, "Origins")
	defer span.End()

	client, err := s.clients.get(creds)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return client.Origins(ctx)
}

func (s Service) Destinations(ctx context.Context, creds travelhost.Credentials) ([]travelhost.Market, error) {
	ctx, span := tracer.Start(ctx, "Destinations")
	defer span.End()

	client, err := s.clients.get(creds)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return client.Destinations(ctx)
}

// EvictCache drops cached results older than the given number of days
// and reports how many hotel records died.
func (s Service) EvictCache(ctx context.Context, days int) (int64, error) {
	ctx, span := tracer.Start(ctx, "EvictCache")
	defer span.End()

	return s.results.EvictOlderThan(ctx, days)
}

// Sessions lists the currently active login sessions.
func (s Service) Sessions(ctx context.Context) ([]sessionstore.Record, error) {
	ctx, span := tracer.Start(ctx, "Sessions")
	defer span.End()

	return s.sessions.ListActive(ctx)
}

// CleanupSessions sweeps expired session records.
func (s Service) CleanupSessions(ctx context.Context) (int64, error) {
	ctx, span := tracer.Start(ctx, "CleanupSessions")
	defer span.End()

	return s.sessions.CleanupExpired(ctx)
}
