package main

import (
	"time"

	"github.com/zachfi/icysnap/pkg/icy"
)

// timestampField is the synthetic key injected by --with-timestamp.
const timestampField = "_timestamp"

// selectOutput applies field selection and timestamp injection to one
// extracted mapping. Selection preserves the order of the requested list and
// skips requested fields the mapping does not have. The timestamp, when
// enabled, survives any selection that omits it; naming it in the selection
// places it at the requested position instead.
func selectOutput(fields icy.Fields, requested []string, withTimestamp bool, now time.Time) icy.Fields {
	timestamp := icy.Field{Key: timestampField, Value: now.Format(time.RFC3339)}

	if len(requested) == 0 {
		out := append(icy.Fields(nil), fields...)
		if withTimestamp {
			out = append(out, timestamp)
		}
		return out
	}

	out := make(icy.Fields, 0, len(requested)+1)
	seen := make(map[string]bool, len(requested))
	timestampPlaced := false

	for _, name := range requested {
		if seen[name] {
			continue
		}
		seen[name] = true

		if name == timestampField && withTimestamp {
			out = append(out, timestamp)
			timestampPlaced = true
			continue
		}

		if value, ok := fields.Get(name); ok {
			out = append(out, icy.Field{Key: name, Value: value})
		}
	}

	if withTimestamp && !timestampPlaced {
		out = append(out, timestamp)
	}

	return out
}
