package model

// Invoice is the ephemeral descriptor of a payment-to-be-initiated. It is
// assembled by the invoice builder and handed to a gateway's Request phase;
// once built it is never mutated and never persisted by this package.
type Invoice struct {
	Amount         Money
	TrackingNumber int64
	CallbackURL    string
	GatewayName    string
	AdditionalData map[string]string
}

// Data returns an additional-data value, tolerating a nil map.
func (i *Invoice) Data(key string) string {
	if i.AdditionalData == nil {
		return ""
	}
	return i.AdditionalData[key]
}
