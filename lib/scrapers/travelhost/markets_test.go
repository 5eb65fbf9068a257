package travelhost

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuotedParam(t *testing.T) {
	require.Equal(t, `"acme"`, quotedParam("acme"))
	require.Equal(t, `null`, quotedParam(""))
}

func TestResolveMarketLabel(t *testing.T) {
	client := &Client{
		origins: []Market{
			{Code: "ATL", Name: "Atlanta Metro"},
			{Code: "MCO", Name: "Orlando Area"},
		},
		destinations: []Market{
			{Code: "MCO", Name: "Orlando Area"},
		},
	}
	ctx := context.Background()

	label, err := client.resolveMarketLabel(ctx, "ATL", originMarkets)
	require.NoError(t, err)
	require.Equal(t, "Atlanta Metro (ATL)", label)

	// operators often type the market name instead of its code
	label, err = client.resolveMarketLabel(ctx, "orlando area", originMarkets)
	require.NoError(t, err)
	require.Equal(t, "Orlando Area (MCO)", label)

	label, err = client.resolveMarketLabel(ctx, "Orlando Are", originMarkets)
	require.NoError(t, err)
	require.Equal(t, "Orlando Area (MCO)", label)

	label, err = client.resolveMarketLabel(ctx, "MCO", destinationMarkets)
	require.NoError(t, err)
	require.Equal(t, "Orlando Area (MCO)", label)

	_, err = client.resolveMarketLabel(ctx, "ZZZ", originMarkets)
	require.Error(t, err)
}
