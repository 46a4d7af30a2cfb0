package auditlog

import (
	"reflect"

	"github.com/magabrotheeeer/boost-admin/internal/models"
)

// computeChanges возвращает поля, значения которых различаются между old и new.
// Поле, присутствующее только с одной стороны, тоже считается изменённым.
func computeChanges(oldValues, newValues map[string]any) map[string]models.FieldChange {
	if oldValues == nil || newValues == nil {
		return nil
	}

	changes := make(map[string]models.FieldChange)
	for k, ov := range oldValues {
		nv, ok := newValues[k]
		if !ok || !reflect.DeepEqual(ov, nv) {
			changes[k] = models.FieldChange{Old: ov, New: nv}
		}
	}
	for k, nv := range newValues {
		if _, ok := oldValues[k]; !ok {
			changes[k] = models.FieldChange{New: nv}
		}
	}

	if len(changes) == 0 {
		return nil
	}
	return changes
}
