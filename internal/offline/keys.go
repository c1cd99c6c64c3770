package offline

import (
	"context"
	"encoding/json"
	"log"
	"slices"
)

const (
	sessionKey   = "session"
	readStateKey = "notifications.read"
)

// SaveSession stores the session token; "" signs out
func SaveSession(ctx context.Context, m Mirror, token string) error {
	return m.Put(ctx, sessionKey, []byte(token))
}

// LoadSession returns the stored session token, if any
func LoadSession(ctx context.Context, m Mirror) (string, bool) {
	raw, ok, err := m.Get(ctx, sessionKey)
	if err != nil {
		log.Printf("Failed to read session: %v", err)
		return "", false
	}
	if !ok || len(raw) == 0 {
		return "", false
	}
	return string(raw), true
}

// ReadState tracks which notifications have been read on this device.
// It is never synced.
type ReadState struct {
	Mirror Mirror
}

// IDs returns the read notification ids, sorted
func (r *ReadState) IDs(ctx context.Context) []string {
	raw, ok, err := r.Mirror.Get(ctx, readStateKey)
	if err != nil {
		log.Printf("Failed to read notification state: %v", err)
		return []string{}
	}
	if !ok {
		return []string{}
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		log.Printf("Discarding undecodable notification state: %v", err)
		return []string{}
	}
	return ids
}

// IsRead reports whether id has been marked read
func (r *ReadState) IsRead(ctx context.Context, id string) bool {
	return slices.Contains(r.IDs(ctx), id)
}

// MarkRead adds ids to the read set
func (r *ReadState) MarkRead(ctx context.Context, ids ...string) error {
	set := r.IDs(ctx)
	for _, id := range ids {
		if !slices.Contains(set, id) {
			set = append(set, id)
		}
	}
	slices.Sort(set)

	raw, err := json.Marshal(set)
	if err != nil {
		return err
	}
	return r.Mirror.Put(ctx, readStateKey, raw)
}

// Unread counts the ids in all that are not marked read
func (r *ReadState) Unread(ctx context.Context, all []string) int {
	read := r.IDs(ctx)
	n := 0
	for _, id := range all {
		if !slices.Contains(read, id) {
			n++
		}
	}
	return n
}
