package message

import (
	"encoding/json"
	"fmt"
)

// Marshal encodes an event for transport on the bus, returning the payload
// and the kind tag to carry alongside it.
func Marshal(ev Event) ([]byte, Kind, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, "", fmt.Errorf("marshal %s event: %w", ev.EventKind(), err)
	}
	return data, ev.EventKind(), nil
}

// Unmarshal decodes a transported payload back into its concrete variant.
// Unknown kinds are an error so a misframed message can never flow onward
// as a half-decoded value.
func Unmarshal(kind Kind, data []byte) (Event, error) {
	var ev Event
	switch kind {
	case KindText:
		ev = &TextEvent{}
	case KindCommand:
		ev = &CommandEvent{}
	case KindSystem:
		ev = &SystemEvent{}
	case KindRemoveByIDs:
		ev = &RemoveByIDs{}
	case KindRemoveByUsers:
		ev = &RemoveByUsers{}
	default:
		return nil, fmt.Errorf("unknown event kind %q", kind)
	}
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, fmt.Errorf("unmarshal %s event: %w", kind, err)
	}
	return ev, nil
}
