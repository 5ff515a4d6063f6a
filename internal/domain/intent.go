package domain

// Intent is the closed set of webhook intents. Dispatch switches on it
// exhaustively, so adding an intent is a compile-time visible change.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentOrderAdd
	IntentOrderRemove
	IntentOrderComplete
	IntentTrackOrder
)

// Display names exactly as configured on the dialog platform.
const (
	displayOrderAdd      = "order.add - context:ongoing - order"
	displayOrderRemove   = "order.remove - context : ongoing - order"
	displayOrderComplete = "order.complete - context : ongoing - order"
	displayTrackOrder    = "track.order - context : ongoing - tracking"
)

func ParseIntent(displayName string) Intent {
	switch displayName {
	case displayOrderAdd:
		return IntentOrderAdd
	case displayOrderRemove:
		return IntentOrderRemove
	case displayOrderComplete:
		return IntentOrderComplete
	case displayTrackOrder:
		return IntentTrackOrder
	default:
		return IntentUnknown
	}
}

func (i Intent) String() string {
	switch i {
	case IntentOrderAdd:
		return "order.add"
	case IntentOrderRemove:
		return "order.remove"
	case IntentOrderComplete:
		return "order.complete"
	case IntentTrackOrder:
		return "track.order"
	default:
		return "unknown"
	}
}
