package events

import (
	"fmt"

	"github.com/shopspring/decimal"

	"simvenue/pkg/money"
)

// Event is implemented by every event the core emits. ToDict/EventFromDict
// provide the lossless round-trip serialization spec.md §6 and §8 require,
// keyed by stable string field names with numeric values in their
// canonical decimal string form.
type Event interface {
	EventType() string
	ToDict() map[string]any
}

func putDecimal(d map[string]any, key string, v decimal.Decimal) {
	d[key] = v.String()
}

func getDecimal(d map[string]any, key string) (decimal.Decimal, error) {
	s := getString(d, key)
	if s == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("events: bad decimal %q for %s: %w", s, key, err)
	}
	return v, nil
}

func putMoney(d map[string]any, key string, m money.Money) {
	d[key] = map[string]any{
		"amount":   m.StringFixed(),
		"currency": string(m.Currency()),
	}
}

func getMoney(d map[string]any, key string) (money.Money, error) {
	raw, ok := d[key]
	if !ok || raw == nil {
		return money.Money{}, nil
	}
	nested, ok := raw.(map[string]any)
	if !ok {
		return money.Money{}, fmt.Errorf("events: %s is not a nested money object", key)
	}
	currency := money.Currency(getString(nested, "currency"))
	amountStr := getString(nested, "amount")
	if amountStr == "" {
		return money.ZeroMoney(currency), nil
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return money.Money{}, fmt.Errorf("events: bad money amount %q for %s: %w", amountStr, key, err)
	}
	return money.NewMoney(amount, currency), nil
}

// EventFromDict reconstructs an Event from a ToDict-produced map, dispatching
// on the "type" field. Returns an error for an unknown or malformed type.
func EventFromDict(d map[string]any) (Event, error) {
	t := getString(d, "type")
	build, ok := decoders[t]
	if !ok {
		return nil, fmt.Errorf("events: unknown event type %q", t)
	}
	return build(d)
}

var decoders = map[string]func(map[string]any) (Event, error){
	"OrderInitialized":    orderInitializedFromDict,
	"OrderSubmitted":      orderSubmittedFromDict,
	"OrderAccepted":       orderAcceptedFromDict,
	"OrderRejected":       orderRejectedFromDict,
	"OrderDenied":         orderDeniedFromDict,
	"OrderCancelled":      orderCancelledFromDict,
	"OrderCancelRejected": orderCancelRejectedFromDict,
	"OrderExpired":        orderExpiredFromDict,
	"OrderTriggered":      orderTriggeredFromDict,
	"OrderModifyRejected": orderModifyRejectedFromDict,
	"OrderUpdated":        orderUpdatedFromDict,
	"OrderFilled":         orderFilledFromDict,
	"AccountState":        accountStateFromDict,
	"PositionOpened":      positionOpenedFromDict,
	"PositionChanged":     positionChangedFromDict,
	"PositionClosed":      positionClosedFromDict,
}
