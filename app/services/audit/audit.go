package audit

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/Shekhar17ACS/IETE/app/models"
)

// Store persists audit rows.
type Store interface {
	CreateAuditLog(ctx context.Context, entry *models.AuditLog) error
}

// Recorder writes structured audit entries for mutating operations.
// Failures are logged and swallowed; auditing never fails the operation.
type Recorder struct {
	store Store
	log   zerolog.Logger
}

func NewRecorder(store Store, log zerolog.Logger) *Recorder {
	return &Recorder{store: store, log: log}
}

// Record writes one audit entry. changes may be nil for deletes.
func (r *Recorder) Record(ctx context.Context, actorID *string, action models.AuditAction, modelName, objectID string, changes []byte, ip *string) {
	entry := &models.AuditLog{
		UserID:    actorID,
		Action:    action,
		ModelName: modelName,
		ObjectID:  objectID,
		Changes:   changes,
		IPAddress: ip,
	}
	if err := r.store.CreateAuditLog(ctx, entry); err != nil {
		r.log.Error().Err(err).Str("model", modelName).Str("object", objectID).Msg("Failed to write audit log")
	}
}

// Snapshot serializes a model's current state for a create entry.
func Snapshot(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

// Diff returns a field-level change set between two serializable values,
// shaped as {"field": {"old": ..., "new": ...}}. Unchanged fields are
// omitted; nil means no detectable change.
func Diff(before, after interface{}) []byte {
	var a, b map[string]interface{}
	raw, err := json.Marshal(before)
	if err != nil || json.Unmarshal(raw, &a) != nil {
		return nil
	}
	raw, err = json.Marshal(after)
	if err != nil || json.Unmarshal(raw, &b) != nil {
		return nil
	}

	changes := make(map[string]map[string]interface{})
	for field, newVal := range b {
		oldVal, ok := a[field]
		if ok && reflect.DeepEqual(oldVal, newVal) {
			continue
		}
		changes[field] = map[string]interface{}{"old": oldVal, "new": newVal}
	}
	for field, oldVal := range a {
		if _, ok := b[field]; !ok {
			changes[field] = map[string]interface{}{"old": oldVal, "new": nil}
		}
	}
	if len(changes) == 0 {
		return nil
	}
	data, err := json.Marshal(changes)
	if err != nil {
		return nil
	}
	return data
}
