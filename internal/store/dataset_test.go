package store_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/farxc/purchasing-kpi/internal/civil"
	"github.com/farxc/purchasing-kpi/internal/db"
	"github.com/farxc/purchasing-kpi/internal/store"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *sqlx.DB {
	t.Helper()
	conn, err := db.New("sqlite", ":memory:", 1, 1, "15m")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, store.Migrate(context.Background(), conn))
	return conn
}

func amount(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func id(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}

func sampleSCs() []store.SC {
	return []store.SC{
		{
			RequestDate:  civil.New(2025, time.July, 14),
			Description:  "SENSOR BOIA TANQUE",
			Status:       "Concluido",
			Priority:     "Emergente",
			Requester:    "DANILO - ALMOX",
			Department:   "MANUTENÇÃO",
			Category:     "TANQUE",
			PurchaseDate: civil.New(2025, time.July, 15),
			OrderID:      id(122978),
			LeadTimeDays: id(2),
			PaymentDays:  id(30),
			Amount:       amount("235.00"),
			Supplier:     "BELCAR",
			Buyer:        "MATHEUS",
		},
		{
			RequestDate: civil.New(2025, time.July, 15),
			Description: "VÁLVULA CONTROLE",
			OrderID:     id(123058),
			Amount:      amount("1286.37"),
			Supplier:    "BUENOS",
			Buyer:       "CARLOS",
		},
	}
}

func sampleSavings() []store.Saving {
	return []store.Saving{
		{
			Date:             civil.New(2025, time.July, 15),
			OrderID:          id(123058),
			Supplier:         "BUENOS",
			InitialAmount:    amount("1286.00"),
			FinalAmount:      amount("1180.00"),
			ReductionAmount:  amount("106.00"),
			ReductionPercent: amount("8.24"),
			NegotiationNotes: "NEGOCIAÇÃO",
			SavingType:       "Negociação",
			Buyer:            "CARLOS",
		},
	}
}

func TestCurrentBeforeAnyIngest(t *testing.T) {
	ds := store.NewDatasetStore(openMemory(t))

	_, err := ds.Current(context.Background())
	assert.ErrorIs(t, err, store.ErrNoSnapshot)

	_, err = ds.Snapshot(context.Background())
	assert.ErrorIs(t, err, store.ErrNoSnapshot)
}

func TestReplaceRoundTrip(t *testing.T) {
	ctx := context.Background()
	ds := store.NewDatasetStore(openMemory(t))

	scs, savings := sampleSCs(), sampleSavings()
	snap, err := ds.Replace(ctx, scs, savings, "KPIs- Compras (Base de Dados).xlsx")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.SCCount)
	assert.Equal(t, 1, snap.SavingCount)

	got, err := ds.Current(ctx)
	require.NoError(t, err)

	assert.Equal(t, snap, got.Snapshot)
	require.Len(t, got.SCs, len(scs))
	require.Len(t, got.Savings, len(savings))

	for i, want := range scs {
		have := got.SCs[i]
		assert.EqualValues(t, i+1, have.ID)
		assert.Equal(t, want.RequestDate, have.RequestDate)
		assert.Equal(t, want.PurchaseDate, have.PurchaseDate)
		assert.Equal(t, want.Description, have.Description)
		assert.Equal(t, want.OrderID, have.OrderID)
		assert.Equal(t, want.LeadTimeDays, have.LeadTimeDays)
		assert.Equal(t, want.PaymentDays, have.PaymentDays)
		assert.Equal(t, want.Amount.Valid, have.Amount.Valid)
		assert.True(t, want.Amount.Decimal.Equal(have.Amount.Decimal))
		assert.Equal(t, want.Buyer, have.Buyer)
	}

	sv := got.Savings[0]
	assert.Equal(t, savings[0].Date, sv.Date)
	assert.True(t, savings[0].FinalAmount.Decimal.Equal(sv.FinalAmount.Decimal))
	assert.True(t, savings[0].ReductionPercent.Decimal.Equal(sv.ReductionPercent.Decimal))
	assert.Equal(t, savings[0].NegotiationNotes, sv.NegotiationNotes)
}

func TestReplaceRecordsMissingRoles(t *testing.T) {
	ctx := context.Background()
	ds := store.NewDatasetStore(openMemory(t))

	missing := []string{"Amount in SC's", "Buyer in Saving"}
	snap, err := ds.Replace(ctx, sampleSCs(), sampleSavings(), "partial.xlsx", missing...)
	require.NoError(t, err)
	assert.Equal(t, store.Labels(missing), snap.Missing)

	got, err := ds.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	// The next ingest starts clean.
	_, err = ds.Replace(ctx, sampleSCs(), sampleSavings(), "full.xlsx")
	require.NoError(t, err)
	got, err = ds.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Missing)
}

func TestLabelsScan(t *testing.T) {
	var l store.Labels
	require.NoError(t, l.Scan([]byte(`["Order in Saving"]`)))
	assert.Equal(t, store.Labels{"Order in Saving"}, l)

	require.NoError(t, l.Scan(nil))
	assert.Nil(t, l)

	assert.Error(t, l.Scan(42))
	assert.Error(t, l.Scan("not json"))

	v, err := store.Labels(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestReplaceKeepsNulls(t *testing.T) {
	ctx := context.Background()
	ds := store.NewDatasetStore(openMemory(t))

	_, err := ds.Replace(ctx, []store.SC{{Description: "sem pedido"}}, []store.Saving{{Supplier: "X"}}, "nulls.xlsx")
	require.NoError(t, err)

	got, err := ds.Current(ctx)
	require.NoError(t, err)
	assert.False(t, got.SCs[0].OrderID.Valid)
	assert.False(t, got.SCs[0].Amount.Valid)
	assert.True(t, got.SCs[0].RequestDate.IsZero())
	assert.False(t, got.Savings[0].FinalAmount.Valid)
}

func TestSecondReplaceSupersedesFirst(t *testing.T) {
	ctx := context.Background()
	ds := store.NewDatasetStore(openMemory(t))

	_, err := ds.Replace(ctx, sampleSCs(), sampleSavings(), "first.xlsx")
	require.NoError(t, err)

	second := []store.SC{{OrderID: id(999), Amount: amount("10"), Buyer: "ANA"}}
	snap, err := ds.Replace(ctx, second, nil, "second.xlsx")
	require.NoError(t, err)

	got, err := ds.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second.xlsx", got.Snapshot.SourceFile)
	assert.Equal(t, snap, got.Snapshot)
	require.Len(t, got.SCs, 1)
	assert.EqualValues(t, 999, got.SCs[0].OrderID.Int64)
	assert.Empty(t, got.Savings)
}

func TestFailedReplaceLeavesPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	ds := store.NewDatasetStore(openMemory(t))

	first, err := ds.Replace(ctx, sampleSCs(), sampleSavings(), "good.xlsx")
	require.NoError(t, err)

	// Negative amounts violate the amount >= 0 constraint mid-insert.
	bad := append(sampleSCs(), store.SC{OrderID: id(1), Amount: amount("-5")})
	_, err = ds.Replace(ctx, bad, sampleSavings(), "bad.xlsx")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrIngest))

	got, err := ds.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, got.Snapshot)
	assert.Len(t, got.SCs, 2)
	assert.Len(t, got.Savings, 1)
}

func TestConcurrentReplaceNeverMixes(t *testing.T) {
	ctx := context.Background()
	ds := store.NewDatasetStore(openMemory(t))

	batch := func(buyer string, n int) []store.SC {
		rows := make([]store.SC, n)
		for i := range rows {
			rows[i] = store.SC{OrderID: id(int64(i)), Amount: amount("1"), Buyer: buyer}
		}
		return rows
	}

	var wg sync.WaitGroup
	for _, buyer := range []string{"ANA", "CARLOS", "MATHEUS"} {
		wg.Add(1)
		go func(b string) {
			defer wg.Done()
			_, err := ds.Replace(ctx, batch(b, 20), nil, b+".xlsx")
			assert.NoError(t, err)
		}(buyer)
	}
	wg.Wait()

	got, err := ds.Current(ctx)
	require.NoError(t, err)
	require.Len(t, got.SCs, 20)
	for _, sc := range got.SCs {
		assert.Equal(t, got.SCs[0].Buyer, sc.Buyer)
	}
	assert.Equal(t, got.SCs[0].Buyer+".xlsx", got.Snapshot.SourceFile)
}

func TestStorageExposesDataset(t *testing.T) {
	s := store.NewStorage(openMemory(t))
	_, err := s.Dataset.Replace(context.Background(), sampleSCs(), nil, "x.csv")
	require.NoError(t, err)

	snap, err := s.Dataset.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "x.csv", snap.SourceFile)
	assert.Equal(t, 0, snap.SavingCount)
}
