package domain

import (
	"context"
)

// LocationSource defines the interface for loading selectable locations
type LocationSource interface {
	// ListLocations retrieves every location known to the upstream resource
	ListLocations(ctx context.Context) ([]Location, error)
}

// RecordSource defines the interface for fetching breakdown records.
// An empty location means records for all locations.
type RecordSource interface {
	// ListAdSpends retrieves advertising spend entries
	ListAdSpends(ctx context.Context, location string) ([]AdSpendRecord, error)

	// ListCryptoEarnings retrieves business crypto earning entries
	ListCryptoEarnings(ctx context.Context, location string) ([]CryptoEarningRecord, error)
}
