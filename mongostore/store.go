// Package mongostore persists closed trades and account figures in MongoDB.
//
// Trades and the account state share one collection, told apart by their
// kind. Amounts are stored as Decimal128 so no precision is lost.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/etnz/tradestats"
	"github.com/etnz/tradestats/date"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	kindTrade = "trade"
	kindState = "state"
	stateID   = "state"
)

// Repository stores a ledger in a collection.
type Repository struct {
	client     *mongo.Client // nil when the database is not owned by the repository
	collection *mongo.Collection
}

// NewRepository returns a repository over the collection name of db.
func NewRepository(db *mongo.Database, name string) (*Repository, error) {
	if db == nil {
		return nil, errors.New("database connection is nil")
	}
	if name == "" {
		return nil, errors.New("collection name is empty")
	}
	return &Repository{collection: db.Collection(name)}, nil
}

// Connect connects to uri and returns a repository over database.collection.
// The repository must be closed.
func Connect(ctx context.Context, uri, database, collection string) (*Repository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("cannot connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("cannot reach mongodb: %w", err)
	}
	r, err := NewRepository(client.Database(database), collection)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	r.client = client
	return r, nil
}

// Close disconnects the client opened by Connect.
func (r *Repository) Close(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Disconnect(ctx)
}

type tradeDoc struct {
	Kind     string               `bson:"kind"`
	ClosedAt time.Time            `bson:"closed_at"`
	Symbol   string               `bson:"symbol"`
	PnL      primitive.Decimal128 `bson:"pnl"`
	Currency string               `bson:"currency"`
}

type stateDoc struct {
	ID                 string               `bson:"_id"`
	Kind               string               `bson:"kind"`
	Currency           string               `bson:"currency"`
	StartingCapital    primitive.Decimal128 `bson:"starting_capital"`
	TotalCharges       primitive.Decimal128 `bson:"total_charges"`
	OtherCreditsDebits primitive.Decimal128 `bson:"other_credits_debits"`
	UnrealizedPnL      primitive.Decimal128 `bson:"unrealized_pnl"`
	CurrentValue       primitive.Decimal128 `bson:"current_value"`
	PeriodFrom         *time.Time           `bson:"period_from,omitempty"`
	PeriodTo           *time.Time           `bson:"period_to,omitempty"`
}

func toDecimal128(m tradestats.Money) primitive.Decimal128 {
	d, err := primitive.ParseDecimal128(m.Decimal().String())
	if err != nil {
		// decimal strings are always valid Decimal128 literals within its range.
		panic(fmt.Sprintf("cannot convert %s to Decimal128: %v", m.Decimal(), err))
	}
	return d
}

func fromDecimal128(d primitive.Decimal128, currency string) (tradestats.Money, error) {
	v, err := decimal.NewFromString(d.String())
	if err != nil {
		return tradestats.Money{}, fmt.Errorf("invalid amount %s: %w", d, err)
	}
	return tradestats.M(v, currency), nil
}

func toTradeDoc(t tradestats.Trade) tradeDoc {
	return tradeDoc{
		Kind:     kindTrade,
		ClosedAt: t.ClosedAt.Time(),
		Symbol:   t.Symbol,
		PnL:      toDecimal128(t.RealizedPnL),
		Currency: t.RealizedPnL.Currency(),
	}
}

func (d tradeDoc) trade() (tradestats.Trade, error) {
	pnl, err := fromDecimal128(d.PnL, d.Currency)
	if err != nil {
		return tradestats.Trade{}, fmt.Errorf("trade %s: %w", d.Symbol, err)
	}
	return tradestats.NewTrade(date.FromTime(d.ClosedAt.UTC()), d.Symbol, pnl), nil
}

func optionalTime(d date.Date) *time.Time {
	if d.IsZero() {
		return nil
	}
	t := d.Time()
	return &t
}

func optionalDate(t *time.Time) date.Date {
	if t == nil {
		return date.Date{}
	}
	return date.FromTime(t.UTC())
}

func toStateDoc(s tradestats.PortfolioState) stateDoc {
	return stateDoc{
		ID:                 stateID,
		Kind:               kindState,
		Currency:           s.Currency(),
		StartingCapital:    toDecimal128(s.StartingCapital),
		TotalCharges:       toDecimal128(s.TotalCharges),
		OtherCreditsDebits: toDecimal128(s.OtherCreditsDebits),
		UnrealizedPnL:      toDecimal128(s.UnrealizedPnL),
		CurrentValue:       toDecimal128(s.CurrentValue),
		PeriodFrom:         optionalTime(s.Period.From),
		PeriodTo:           optionalTime(s.Period.To),
	}
}

func (d stateDoc) state() (tradestats.PortfolioState, error) {
	var s tradestats.PortfolioState
	fields := []struct {
		dst *tradestats.Money
		src primitive.Decimal128
	}{
		{&s.StartingCapital, d.StartingCapital},
		{&s.TotalCharges, d.TotalCharges},
		{&s.OtherCreditsDebits, d.OtherCreditsDebits},
		{&s.UnrealizedPnL, d.UnrealizedPnL},
		{&s.CurrentValue, d.CurrentValue},
	}
	for _, f := range fields {
		m, err := fromDecimal128(f.src, d.Currency)
		if err != nil {
			return tradestats.PortfolioState{}, fmt.Errorf("state: %w", err)
		}
		*f.dst = m
	}
	s.Period = date.NewRange(optionalDate(d.PeriodFrom), optionalDate(d.PeriodTo))
	return s, nil
}

// windowFilter selects the trades closed within w.
func windowFilter(w date.Range) bson.M {
	filter := bson.M{"kind": kindTrade}
	closedAt := bson.M{}
	if !w.From.IsZero() {
		closedAt["$gte"] = w.From.Time()
	}
	if !w.To.IsZero() {
		closedAt["$lte"] = w.To.Time()
	}
	if len(closedAt) > 0 {
		filter["closed_at"] = closedAt
	}
	return filter
}

// SaveTrades inserts trades.
func (r *Repository) SaveTrades(ctx context.Context, trades []tradestats.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	documents := make([]any, len(trades))
	for i, t := range trades {
		documents[i] = toTradeDoc(t)
	}
	if _, err := r.collection.InsertMany(ctx, documents); err != nil {
		return fmt.Errorf("failed to insert trades: %w", err)
	}
	return nil
}

// Trades returns the trades closed within w in chronological order.
// Trades closed the same day are in insertion order.
func (r *Repository) Trades(ctx context.Context, w date.Range) ([]tradestats.Trade, error) {
	opts := options.Find().SetSort(bson.D{{Key: "closed_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, windowFilter(w), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []tradeDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode trades: %w", err)
	}
	trades := make([]tradestats.Trade, 0, len(docs))
	for _, d := range docs {
		t, err := d.trade()
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, nil
}

// SaveState replaces the stored account figures.
func (r *Repository) SaveState(ctx context.Context, s tradestats.PortfolioState) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": stateID}, toStateDoc(s), opts); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// State returns the stored account figures, a zero state when none is stored.
func (r *Repository) State(ctx context.Context) (tradestats.PortfolioState, error) {
	var doc stateDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": stateID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return tradestats.PortfolioState{}, nil
	}
	if err != nil {
		return tradestats.PortfolioState{}, fmt.Errorf("failed to load state: %w", err)
	}
	return doc.state()
}

// Snapshot returns the trades closed within w and the account figures.
// Stored documents that do not validate are reported as an error.
func (r *Repository) Snapshot(ctx context.Context, w date.Range) ([]tradestats.Trade, tradestats.PortfolioState, error) {
	trades, err := r.Trades(ctx, w)
	if err != nil {
		return nil, tradestats.PortfolioState{}, err
	}
	state, err := r.State(ctx)
	if err != nil {
		return nil, tradestats.PortfolioState{}, err
	}
	if err := tradestats.Validate(trades, state); err != nil {
		return nil, tradestats.PortfolioState{}, fmt.Errorf("stored ledger is invalid: %w", err)
	}
	return trades, state, nil
}

// foreignCurrency returns the currency of a stored trade that is not in
// currency, "" when there is none.
func (r *Repository) foreignCurrency(ctx context.Context, currency string) (string, error) {
	var doc tradeDoc
	filter := bson.M{"kind": kindTrade, "currency": bson.M{"$nin": bson.A{"", currency}}}
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to check stored trades currency: %w", err)
	}
	return doc.Currency, nil
}

// Import validates entries and stores them: close entries as trades, the
// others folded into the stored account figures.
func (r *Repository) Import(ctx context.Context, entries []tradestats.Entry) (int, error) {
	stored, err := r.State(ctx)
	if err != nil {
		return 0, err
	}
	ledger := tradestats.NewLedger()
	if err := ledger.Append(entries...); err != nil {
		return 0, err
	}
	if c := stored.Currency(); c != "" && ledger.Currency() != "" && c != ledger.Currency() {
		return 0, fmt.Errorf("%w: stored ledger is in %s, imported entries in %s", tradestats.ErrInvalidState, c, ledger.Currency())
	}
	if ledger.Currency() != "" {
		c, err := r.foreignCurrency(ctx, ledger.Currency())
		if err != nil {
			return 0, err
		}
		if c != "" {
			return 0, fmt.Errorf("%w: stored trades are in %s, imported entries in %s", tradestats.ErrInvalidTrade, c, ledger.Currency())
		}
	}
	trades := ledger.Trades()
	if err := r.SaveTrades(ctx, trades); err != nil {
		return 0, err
	}
	if ledger.Len() > len(trades) {
		if err := r.SaveState(ctx, merge(stored, ledger.State())); err != nil {
			return len(trades), err
		}
	}
	return len(trades), nil
}

// merge adds the figures of s to base. Valuation and period of s replace
// those of base when set.
func merge(base, s tradestats.PortfolioState) tradestats.PortfolioState {
	merged := tradestats.PortfolioState{
		StartingCapital:    base.StartingCapital.Add(s.StartingCapital),
		TotalCharges:       base.TotalCharges.Add(s.TotalCharges),
		OtherCreditsDebits: base.OtherCreditsDebits.Add(s.OtherCreditsDebits),
		UnrealizedPnL:      base.UnrealizedPnL.Add(s.UnrealizedPnL),
		CurrentValue:       base.CurrentValue,
		Period:             base.Period,
	}
	if !s.CurrentValue.IsZero() {
		merged.CurrentValue = s.CurrentValue
	}
	if !s.Period.IsOpen() {
		merged.Period = s.Period
	}
	return merged
}
