package enums

import "fmt"

// PriceSource selects where a sale line's unit price comes from.
type PriceSource string

const (
	// PriceSourceRequest trusts the price sent by the point of sale.
	PriceSourceRequest PriceSource = "request"
	// PriceSourceLookup uses the catalog price of the service.
	PriceSourceLookup PriceSource = "lookup"
)

func (p PriceSource) String() string {
	return string(p)
}

func (p PriceSource) IsValid() bool {
	return p == PriceSourceRequest || p == PriceSourceLookup
}

func ParsePriceSource(value string) (PriceSource, error) {
	p := PriceSource(value)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid price source %q", value)
	}
	return p, nil
}
