package types

// PriceQuote is a single oracle price observation: raw price and exponent
// as published, plus confidence and publish time. Quotes are ephemeral
// inputs; nothing in the engine retains them across calls.
type PriceQuote struct {
	ID          string // feed id without the 0x prefix
	Price       int64
	Expo        int32
	Conf        uint64
	PublishTime int64
}
