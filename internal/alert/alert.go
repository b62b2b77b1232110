// Package alert delivers notifications for alert-worthy incidents.
package alert

import (
	"context"
	"errors"

	"github.com/crimson-sun/airs/internal/model"
)

// Notifier delivers a batch of alert-worthy incidents.
type Notifier interface {
	Notify(ctx context.Context, alerts []model.Incident) error
}

// Select returns the alert-worthy incidents in input order.
func Select(incidents []model.Incident) []model.Incident {
	var out []model.Incident
	for _, inc := range incidents {
		if inc.AlertWorthy() {
			out = append(out, inc)
		}
	}
	return out
}

// Multi fans alerts out to several notifiers. A failing notifier does not
// stop delivery to the rest.
type Multi struct {
	notifiers []Notifier
}

// NewMulti creates a Multi over the given notifiers.
func NewMulti(notifiers ...Notifier) *Multi {
	return &Multi{notifiers: notifiers}
}

// Notify calls every notifier and joins their errors.
func (m *Multi) Notify(ctx context.Context, alerts []model.Incident) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, alerts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
