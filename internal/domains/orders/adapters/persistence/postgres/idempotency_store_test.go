package postgres

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/figurestore/go-order-api/internal/domains/orders/ports"
)

func TestResolveDuplicateKey_VanishedRowIsAnError(t *testing.T) {
	record := ports.IdempotencyRecord{Key: "key-1", RequestHash: "hash-1", OrderID: "order-1"}

	resolved, err := resolveDuplicateKey(nil, record)
	require.Error(t, err)
	require.Nil(t, resolved)
	require.Contains(t, err.Error(), "key-1")
}

func TestResolveDuplicateKey_MatchingRowReplays(t *testing.T) {
	record := ports.IdempotencyRecord{Key: "key-1", RequestHash: "hash-1", OrderID: "order-1"}
	stored := &ports.IdempotencyRecord{Key: "key-1", RequestHash: "hash-1", OrderID: "order-1"}

	resolved, err := resolveDuplicateKey(stored, record)
	require.NoError(t, err)
	require.Equal(t, stored, resolved)
}

func TestResolveDuplicateKey_DivergingRowConflicts(t *testing.T) {
	record := ports.IdempotencyRecord{Key: "key-1", RequestHash: "hash-2", OrderID: "order-2"}
	stored := &ports.IdempotencyRecord{Key: "key-1", RequestHash: "hash-1", OrderID: "order-1"}

	resolved, err := resolveDuplicateKey(stored, record)
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	require.Equal(t, stored, resolved)
}
