package stock

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func resolverLedger() []Carton {
	return []Carton{
		{CartonID: "PARA01-C01", ProductID: "PARA01", ProductName: "Paracetamol 500mg"},
		{CartonID: "PARA01-C02", ProductID: "PARA01", ProductName: "Paracetamol 500mg"},
		{CartonID: "PARA02-C01", ProductID: "PARA02", ProductName: "Paracetamol 650mg"},
		{CartonID: "IBU01-C01", ProductID: "IBU01", ProductName: "Ibuprofen 200mg"},
	}
}

func TestResolveExactID(t *testing.T) {
	ref, err := Resolve("para01", resolverLedger())
	require.NoError(t, err)
	require.Equal(t, "PARA01", ref.ProductID)
	require.Equal(t, "Paracetamol 500mg", ref.ProductName)
}

func TestResolveExactIDBeatsNameMatches(t *testing.T) {
	// "COLD01" is also a substring of another product's name. The exact id
	// match must win without reporting ambiguity.
	ledger := append(resolverLedger(),
		Carton{CartonID: "COLD01-C01", ProductID: "COLD01", ProductName: "Cold Relief Syrup"},
		Carton{CartonID: "COMBO01-C01", ProductID: "COMBO01", ProductName: "Cold01 Combo Pack"},
	)
	ref, err := Resolve("cold01", ledger)
	require.NoError(t, err)
	require.Equal(t, "COLD01", ref.ProductID)
	require.Equal(t, "Cold Relief Syrup", ref.ProductName)
}

func TestResolveBySubstring(t *testing.T) {
	ref, err := Resolve("ibupro", resolverLedger())
	require.NoError(t, err)
	require.Equal(t, "IBU01", ref.ProductID)
}

func TestResolveReverseSubstring(t *testing.T) {
	// The query may contain the stored name rather than the other way round.
	ref, err := Resolve("ibuprofen 200mg tablets strip", resolverLedger())
	require.NoError(t, err)
	require.Equal(t, "IBU01", ref.ProductID)
}

func TestResolveAmbiguous(t *testing.T) {
	_, err := Resolve("paracetamol", resolverLedger())
	var ambiguous *AmbiguousError
	require.ErrorAs(t, err, &ambiguous)
	require.Len(t, ambiguous.Candidates, 2)
	require.Equal(t, "PARA01", ambiguous.Candidates[0].ProductID)
	require.Equal(t, "PARA02", ambiguous.Candidates[1].ProductID)
}

func TestResolveNotFound(t *testing.T) {
	_, err := Resolve("aspirin", resolverLedger())
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.Equal(t, "aspirin", notFound.Query)
}
