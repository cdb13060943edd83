package world

import (
	"kitchencraft.ai/internal/protocol"
	"kitchencraft.ai/internal/sim/catalogs"
	"kitchencraft.ai/internal/sim/world/feature/entities/objects"
)

// addEvent stamps e with the current tick and buffers it for this tick's frames.
// Events with a "to" key are only delivered to that player.
func (w *World) addEvent(e protocol.Event) {
	if w.quiet {
		return
	}
	e["t"] = w.tick.Load()
	w.events = append(w.events, e)
}

func (w *World) audit(e AuditEntry) {
	if w.quiet {
		return
	}
	e.Tick = w.tick.Load()
	w.audits = append(w.audits, e)
	if w.auditLogger != nil {
		_ = w.auditLogger.WriteAudit(e)
	}
}

func (w *World) Reject(actorID, counterID, code, message string) {
	w.addEvent(protocol.Event{
		"type":    protocol.EventInteractRejected,
		"to":      actorID,
		"counter": counterID,
		"code":    code,
		"message": message,
	})
	w.audit(AuditEntry{Actor: actorID, Action: "REJECT", Counter: counterID, Code: code, Reason: message})
}

func (w *World) Delivered(actorID, counterID string, recipe catalogs.MenuRecipe, matched bool, ingredients []catalogs.IngredientKind) {
	held := make([]string, 0, len(ingredients))
	for _, k := range ingredients {
		held = append(held, string(k))
	}
	if matched {
		w.delivered++
		w.addEvent(protocol.Event{
			"type":        protocol.EventDeliverySuccess,
			"player":      actorID,
			"counter":     counterID,
			"recipe":      recipe.ID,
			"ingredients": held,
		})
		w.audit(AuditEntry{Actor: actorID, Action: "DELIVER", Counter: counterID, Item: recipe.ID})
		return
	}
	w.failed++
	w.addEvent(protocol.Event{
		"type":        protocol.EventDeliveryFailed,
		"player":      actorID,
		"counter":     counterID,
		"ingredients": held,
	})
	w.audit(AuditEntry{Actor: actorID, Action: "DELIVER", Counter: counterID, Code: protocol.ErrInvalidTarget, Reason: "no matching recipe"})
}

func (w *World) onObjectChange(c objects.Change) {
	e := protocol.Event{"object": c.Object.ID, "item": c.Object.Item}
	if c.ParentID != "" {
		e["parent"] = c.ParentID
	}
	switch c.Kind {
	case objects.Spawned:
		e["type"] = protocol.EventObjectSpawned
	case objects.Destroyed:
		e["type"] = protocol.EventObjectDestroyed
	case objects.Moved:
		e["type"] = protocol.EventObjectMoved
	case objects.IngredientAdded:
		e["type"] = protocol.EventIngredientAdded
		e["ingredient"] = string(c.Ingredient)
	default:
		return
	}
	w.addEvent(e)
}
