package protocol

// Event is a loosely typed simulation event; "type" and "t" are always set.
type Event map[string]interface{}

const (
	EventSelectedCounterChanged = "SELECTED_COUNTER_CHANGED"
	EventIngredientAdded        = "INGREDIENT_ADDED"
	EventProgressChanged        = "PROGRESS_CHANGED"
	EventObjectSpawned          = "OBJECT_SPAWNED"
	EventObjectDestroyed        = "OBJECT_DESTROYED"
	EventObjectMoved            = "OBJECT_MOVED"
	EventDeliverySuccess        = "DELIVERY_SUCCESS"
	EventDeliveryFailed         = "DELIVERY_FAILED"
	EventInteractRejected       = "INTERACT_REJECTED"
	EventPlayerJoined           = "PLAYER_JOINED"
	EventPlayerLeft             = "PLAYER_LEFT"
)

// Type returns the event type or "".
func (e Event) Type() string {
	s, _ := e["type"].(string)
	return s
}
