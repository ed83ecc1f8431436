package exchange

import (
	"cross-venue-arbitrage-scanner/internal/core/model"
	"cross-venue-arbitrage-scanner/internal/util/fastparse"
)

// QuoteFromLevels 从订单簿两侧读取第一档价格构造报价
// 参数 bids/asks: [[价格, 数量, ...], ...]，只消费第一档价格
// 返回: 报价；任一侧为空返回 ErrQuoteUnavailable，正值约束不满足返回 ErrInvalidQuoteData
func QuoteFromLevels(venue model.VenueID, bids, asks [][]string) (model.Quote, error) {
	bid, err := fastparse.FirstLevelPrice(bids)
	if err != nil {
		return model.Quote{}, &VenueError{Venue: venue, Op: OpBestBidAsk, Kind: ErrQuoteUnavailable, Err: err}
	}
	ask, err := fastparse.FirstLevelPrice(asks)
	if err != nil {
		return model.Quote{}, &VenueError{Venue: venue, Op: OpBestBidAsk, Kind: ErrQuoteUnavailable, Err: err}
	}

	q := model.Quote{Venue: venue, Bid: bid, Ask: ask}
	if err := q.Validate(); err != nil {
		return model.Quote{}, &VenueError{Venue: venue, Op: OpBestBidAsk, Kind: ErrInvalidQuoteData, Err: err}
	}
	return q, nil
}
