package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/etnz/tradestats"
	"github.com/etnz/tradestats/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func inr(v float64) tradestats.Money { return tradestats.M(v, "INR") }

func dec(t *testing.T, s string) primitive.Decimal128 {
	t.Helper()
	d, err := primitive.ParseDecimal128(s)
	require.NoError(t, err)
	return d
}

// tradeBSON returns a stored trade document closed on day.
func tradeBSON(mt *mtest.T, day, symbol, pnl, currency string) bson.D {
	return bson.D{
		{Key: "kind", Value: "trade"},
		{Key: "closed_at", Value: date.MustParse(day).Time()},
		{Key: "symbol", Value: symbol},
		{Key: "pnl", Value: dec(mt.T, pnl)},
		{Key: "currency", Value: currency},
	}
}

func TestWindowFilter(t *testing.T) {
	from, to := date.MustParse("2025-06-01"), date.MustParse("2025-06-30")

	assert.Equal(t, bson.M{"kind": "trade"}, windowFilter(date.Range{}))
	assert.Equal(t, bson.M{
		"kind":      "trade",
		"closed_at": bson.M{"$gte": from.Time(), "$lte": to.Time()},
	}, windowFilter(date.NewRange(from, to)))
	assert.Equal(t, bson.M{
		"kind":      "trade",
		"closed_at": bson.M{"$lte": to.Time()},
	}, windowFilter(date.Range{To: to}))
}

func TestTradeDoc(t *testing.T) {
	trade := tradestats.NewTrade(date.MustParse("2025-06-03"), "NIFTY25JUN24500CE", inr(-1234.56))
	doc := toTradeDoc(trade)
	assert.Equal(t, "trade", doc.Kind)
	assert.Equal(t, "-1234.56", doc.PnL.String())

	got, err := doc.trade()
	require.NoError(t, err)
	assert.Equal(t, trade.Symbol, got.Symbol)
	assert.Equal(t, trade.ClosedAt, got.ClosedAt)
	assert.True(t, trade.RealizedPnL.Equal(got.RealizedPnL), "got %s", got.RealizedPnL)
}

func TestStateDoc(t *testing.T) {
	s := tradestats.PortfolioState{
		StartingCapital:    inr(1500000),
		TotalCharges:       inr(120.4),
		OtherCreditsDebits: inr(-11.8),
		UnrealizedPnL:      inr(450),
		CurrentValue:       inr(0),
		Period:             date.NewRange(date.MustParse("2025-06-01"), date.MustParse("2026-02-05")),
	}
	got, err := toStateDoc(s).state()
	require.NoError(t, err)
	assert.True(t, got.StartingCapital.Equal(s.StartingCapital))
	assert.True(t, got.OtherCreditsDebits.Equal(s.OtherCreditsDebits))
	assert.Equal(t, s.Period, got.Period)

	s.Period = date.Range{}
	doc := toStateDoc(s)
	assert.Nil(t, doc.PeriodFrom)
	got, err = doc.state()
	require.NoError(t, err)
	assert.True(t, got.Period.IsOpen())
}

func TestMerge(t *testing.T) {
	june := date.NewRange(date.MustParse("2025-06-01"), date.MustParse("2025-06-30"))
	base := tradestats.PortfolioState{
		StartingCapital: inr(100000),
		TotalCharges:    inr(50),
		CurrentValue:    inr(101000),
		Period:          june,
	}
	got := merge(base, tradestats.PortfolioState{TotalCharges: inr(25), OtherCreditsDebits: inr(-5)})
	assert.True(t, got.StartingCapital.Equal(inr(100000)))
	assert.True(t, got.TotalCharges.Equal(inr(75)))
	assert.True(t, got.OtherCreditsDebits.Equal(inr(-5)))
	assert.True(t, got.CurrentValue.Equal(inr(101000)), "zero valuation keeps the stored one")
	assert.Equal(t, june, got.Period)

	july := date.NewRange(date.MustParse("2025-07-01"), date.MustParse("2025-07-31"))
	got = merge(base, tradestats.PortfolioState{CurrentValue: inr(99000), Period: july})
	assert.True(t, got.CurrentValue.Equal(inr(99000)))
	assert.Equal(t, july, got.Period)
}

func TestRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("save trades", func(mt *mtest.T) {
		r := &Repository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		err := r.SaveTrades(context.Background(), []tradestats.Trade{
			tradestats.NewTrade(date.MustParse("2025-06-03"), "A", inr(100)),
		})
		assert.NoError(mt, err)
		assert.NoError(mt, r.SaveTrades(context.Background(), nil), "nothing to insert")
	})

	mt.Run("trades", func(mt *mtest.T) {
		r := &Repository{collection: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "kind", Value: "trade"},
				{Key: "closed_at", Value: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)},
				{Key: "symbol", Value: "A"},
				{Key: "pnl", Value: dec(mt.T, "1200.5")},
				{Key: "currency", Value: "INR"},
			},
			bson.D{
				{Key: "kind", Value: "trade"},
				{Key: "closed_at", Value: time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)},
				{Key: "symbol", Value: "B"},
				{Key: "pnl", Value: dec(mt.T, "-300")},
				{Key: "currency", Value: "INR"},
			},
		))
		trades, err := r.Trades(context.Background(), date.Range{})
		require.NoError(mt, err)
		require.Len(mt, trades, 2)
		assert.Equal(mt, "A", trades[0].Symbol)
		assert.Equal(mt, date.MustParse("2025-06-03"), trades[0].ClosedAt)
		assert.True(mt, trades[0].RealizedPnL.Equal(inr(1200.5)))
		assert.True(mt, trades[1].RealizedPnL.Equal(inr(-300)))
	})

	mt.Run("trades error", func(mt *mtest.T) {
		r := &Repository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 13, Name: "Unauthorized", Message: "not authorized",
		}))
		_, err := r.Trades(context.Background(), date.Range{})
		assert.ErrorContains(mt, err, "failed to query trades")
	})

	mt.Run("no state", func(mt *mtest.T) {
		r := &Repository{collection: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		s, err := r.State(context.Background())
		require.NoError(mt, err)
		assert.True(mt, s.StartingCapital.IsZero())
	})

	mt.Run("state", func(mt *mtest.T) {
		r := &Repository{collection: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "state"},
			{Key: "kind", Value: "state"},
			{Key: "currency", Value: "INR"},
			{Key: "starting_capital", Value: dec(mt.T, "1500000")},
			{Key: "total_charges", Value: dec(mt.T, "120.4")},
			{Key: "other_credits_debits", Value: dec(mt.T, "-11.8")},
			{Key: "unrealized_pnl", Value: dec(mt.T, "450")},
			{Key: "current_value", Value: dec(mt.T, "0")},
		}))
		s, err := r.State(context.Background())
		require.NoError(mt, err)
		assert.True(mt, s.StartingCapital.Equal(inr(1500000)))
		assert.True(mt, s.TotalCharges.Equal(inr(120.4)))
		assert.Equal(mt, "INR", s.Currency())
		assert.True(mt, s.Period.IsOpen())
	})

	mt.Run("save state", func(mt *mtest.T) {
		r := &Repository{collection: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		assert.NoError(mt, r.SaveState(context.Background(), tradestats.PortfolioState{StartingCapital: inr(1000)}))
	})

	mt.Run("import", func(mt *mtest.T) {
		r := &Repository{collection: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch), // no stored state
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch), // no trade in another currency
			mtest.CreateSuccessResponse(),                       // insert trades
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: "state"}}}}),
		)
		day := date.MustParse("2025-06-03")
		n, err := r.Import(context.Background(), []tradestats.Entry{
			tradestats.Capital(day, inr(100000)),
			tradestats.Close(day, "A", inr(100)),
			tradestats.Close(day, "B", inr(-20)),
		})
		require.NoError(mt, err)
		assert.Equal(mt, 2, n)
	})

	mt.Run("import rejects another currency", func(mt *mtest.T) {
		r := &Repository{collection: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch), // no stored state
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, tradeBSON(mt, "2025-06-03", "A", "100", "INR")),
		)
		n, err := r.Import(context.Background(), []tradestats.Entry{
			tradestats.Close(date.MustParse("2025-06-04"), "B", tradestats.M(50, "EUR")),
		})
		assert.ErrorIs(mt, err, tradestats.ErrInvalidTrade)
		assert.ErrorContains(mt, err, "stored trades are in INR")
		assert.Zero(mt, n)
	})

	mt.Run("snapshot", func(mt *mtest.T) {
		r := &Repository{collection: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				tradeBSON(mt, "2025-06-03", "A", "100", "INR"),
				tradeBSON(mt, "2025-06-04", "B", "-20", "INR"),
			),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch), // no stored state
		)
		trades, state, err := r.Snapshot(context.Background(), date.Range{})
		require.NoError(mt, err)
		assert.Len(mt, trades, 2)
		assert.True(mt, state.StartingCapital.IsZero())
	})

	mt.Run("snapshot rejects mixed currencies", func(mt *mtest.T) {
		r := &Repository{collection: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				tradeBSON(mt, "2025-06-03", "A", "100", "EUR"),
				tradeBSON(mt, "2025-06-04", "B", "-20", "INR"),
			),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch), // no stored state
		)
		trades, _, err := r.Snapshot(context.Background(), date.Range{})
		assert.ErrorIs(mt, err, tradestats.ErrInvalidTrade)
		assert.Nil(mt, trades)
	})

	mt.Run("import rejects invalid entries", func(mt *mtest.T) {
		r := &Repository{collection: mt.Coll}
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		_, err := r.Import(context.Background(), []tradestats.Entry{
			tradestats.Close(date.MustParse("2025-06-03"), "", inr(100)),
		})
		assert.ErrorIs(mt, err, tradestats.ErrInvalidTrade)
	})
}

func TestNewRepository(t *testing.T) {
	_, err := NewRepository(nil, "ledger")
	assert.Error(t, err)
}
