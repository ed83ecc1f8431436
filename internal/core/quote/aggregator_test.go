// Package quote 报价聚合测试
package quote

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"

	"cross-venue-arbitrage-scanner/internal/core/model"
	"cross-venue-arbitrage-scanner/internal/exchange"
)

type fakeVenue struct {
	id    model.VenueID
	bid   string
	ask   string
	err   error
	mu    sync.Mutex
	calls int
}

func (f *fakeVenue) ID() model.VenueID { return f.id }

func (f *fakeVenue) ListSymbols(ctx context.Context) (model.SymbolSet, error) {
	return model.NewSymbolSet(), nil
}

func (f *fakeVenue) BestBidAsk(ctx context.Context, asset model.AssetID) (model.Quote, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return model.Quote{}, f.err
	}
	return model.Quote{
		Venue: f.id,
		Bid:   decimal.RequireFromString(f.bid),
		Ask:   decimal.RequireFromString(f.ask),
	}, nil
}

func (f *fakeVenue) Close() error { return nil }

func TestBestAcross_Scenario(t *testing.T) {
	venues := []exchange.Venue{
		&fakeVenue{id: model.VenueBinance, bid: "100", ask: "101"},
		&fakeVenue{id: model.VenueOKX, bid: "102", ask: "99"},
	}
	agg := NewAggregator(4)

	best, err := agg.BestAcross(context.Background(), "BTC", venues)
	if err != nil {
		t.Fatalf("BestAcross: %v", err)
	}
	if best.BestBidVenue != model.VenueOKX || !best.BestBid.Equal(decimal.NewFromInt(102)) {
		t.Errorf("best bid=%s@%s", best.BestBid, best.BestBidVenue)
	}
	if best.BestAskVenue != model.VenueOKX || !best.BestAsk.Equal(decimal.NewFromInt(99)) {
		t.Errorf("best ask=%s@%s", best.BestAsk, best.BestAskVenue)
	}
	want := decimal.RequireFromString("3.0303")
	if !best.ProfitPct().Round(4).Equal(want) {
		t.Errorf("profit=%s, want ≈%s", best.ProfitPct(), want)
	}
}

func TestBestAcross_AllOrNothing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "报价不可用", err: exchange.ErrQuoteUnavailable, want: exchange.ErrQuoteUnavailable},
		{name: "交易所不可用", err: exchange.ErrVenueUnavailable, want: exchange.ErrVenueUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			venues := []exchange.Venue{
				&fakeVenue{id: model.VenueBinance, bid: "2000", ask: "2001"},
				&fakeVenue{id: model.VenueOKX, err: tt.err},
			}
			_, err := NewAggregator(4).BestAcross(context.Background(), "ETH", venues)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err=%v, want %v", err, tt.want)
			}
		})
	}
}

func TestBestAcross_InvalidQuoteRejected(t *testing.T) {
	venues := []exchange.Venue{
		&fakeVenue{id: model.VenueBinance, bid: "1", ask: "0"},
		&fakeVenue{id: model.VenueOKX, bid: "1", ask: "2"},
	}
	_, err := NewAggregator(4).BestAcross(context.Background(), "BTC", venues)
	if !errors.Is(err, exchange.ErrInvalidQuoteData) || !errors.Is(err, exchange.ErrQuoteUnavailable) {
		t.Fatalf("err=%v, want ErrInvalidQuoteData", err)
	}
}

func TestBestAcross_NoVenues(t *testing.T) {
	_, err := NewAggregator(1).BestAcross(context.Background(), "BTC", nil)
	if !errors.Is(err, ErrNoQuotes) {
		t.Fatalf("err=%v, want ErrNoQuotes", err)
	}
}

func TestReduce_TieKeepsFirstVenue(t *testing.T) {
	quotes := []model.Quote{
		{Venue: model.VenueKucoin, Bid: decimal.NewFromInt(10), Ask: decimal.NewFromInt(11)},
		{Venue: model.VenueBinance, Bid: decimal.NewFromInt(10), Ask: decimal.NewFromInt(11)},
		{Venue: model.VenueOKX, Bid: decimal.RequireFromString("10.00"), Ask: decimal.RequireFromString("11.0")},
	}
	best, err := Reduce("BTC", quotes)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if best.BestBidVenue != model.VenueKucoin || best.BestAskVenue != model.VenueKucoin {
		t.Fatalf("并列时应保留顺序在前的交易所: bid@%s ask@%s", best.BestBidVenue, best.BestAskVenue)
	}
}

// TestReduce_Extremes 测试归约结果
// 属性: BestBid 为所有买价最大值，BestAsk 为所有卖价最小值，且来源交易所报出该价格
func TestReduce_Extremes(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	ids := model.AllVenues()

	properties.Property("买价取最大、卖价取最小", prop.ForAll(
		func(bids []int64, asks []int64) bool {
			quotes := make([]model.Quote, len(ids))
			for i, id := range ids {
				quotes[i] = model.Quote{
					Venue: id,
					Bid:   decimal.New(bids[i], -2),
					Ask:   decimal.New(asks[i], -2),
				}
			}

			best, err := Reduce("BTC", quotes)
			if err != nil {
				return false
			}

			for _, q := range quotes {
				if q.Bid.GreaterThan(best.BestBid) || q.Ask.LessThan(best.BestAsk) {
					return false
				}
			}

			var bidOK, askOK bool
			for _, q := range quotes {
				if q.Venue == best.BestBidVenue && q.Bid.Equal(best.BestBid) {
					bidOK = true
				}
				if q.Venue == best.BestAskVenue && q.Ask.Equal(best.BestAsk) {
					askOK = true
				}
			}
			return bidOK && askOK
		},
		gen.SliceOfN(len(ids), gen.Int64Range(0, 1_000_000)),
		gen.SliceOfN(len(ids), gen.Int64Range(1, 1_000_000)),
	))

	properties.TestingRun(t)
}
