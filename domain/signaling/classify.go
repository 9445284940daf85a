package signaling

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"presence-lab/errors"
)

var validate = validator.New()

// Classify discriminates a raw payload into one of the three shapes by
// field presence. Exactly one shape matches any valid payload:
//   - roomId present            -> internal snapshot entry
//   - sessionid present         -> standalone join
//   - sessionId, no roomId      -> standalone update
//
// Classify is pure and never mutates or retains raw.
func Classify(raw json.RawMessage) (Kind, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return 0, fmt.Errorf("%w: %v", errors.ErrUnknownPayloadShape, err)
	}
	switch {
	case hasField(fields, "roomId"):
		return KindInternal, nil
	case hasField(fields, "sessionid"):
		return KindStandaloneJoin, nil
	case hasField(fields, "sessionId"):
		return KindStandaloneUpdate, nil
	default:
		return 0, errors.ErrMissingSessionID
	}
}

func hasField(fields map[string]json.RawMessage, name string) bool {
	_, ok := fields[name]
	return ok
}

// Decode classifies a raw payload and unmarshals it into its variant.
// The decoded struct is validated; a payload whose required identifier
// field is empty is rejected with ErrInvalidPayload.
func Decode(raw json.RawMessage) (Payload, error) {
	kind, err := Classify(raw)
	if err != nil {
		return nil, err
	}

	var payload Payload
	switch kind {
	case KindInternal:
		var p InternalSession
		if err = json.Unmarshal(raw, &p); err == nil {
			payload = p
		}
	case KindStandaloneJoin:
		var p StandaloneJoin
		if err = json.Unmarshal(raw, &p); err == nil {
			payload = p
		}
	case KindStandaloneUpdate:
		var p StandaloneUpdate
		if err = json.Unmarshal(raw, &p); err == nil {
			payload = p
		}
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", kind, err)
	}
	if err = validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}
	return payload, nil
}

// DecodeBatch decodes every entry of a signaling batch. Batches are
// homogeneous in practice, but each entry is classified independently so a
// malformed entry is reported with its position.
func DecodeBatch(raws []json.RawMessage) ([]Payload, error) {
	payloads := make([]Payload, 0, len(raws))
	for i, raw := range raws {
		p, err := Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		payloads = append(payloads, p)
	}
	return payloads, nil
}

// IsInternalBatch reports whether a decoded batch came from the internal
// signaling backend, checked on the first entry since batches are
// homogeneous. Only internal batches are authoritative-and-complete.
func IsInternalBatch(payloads []Payload) bool {
	first, ok := lo.First(payloads)
	return ok && first.Kind() == KindInternal
}
