// Package wizard implements the multi-step mandal registration flow.
// Each step holds a disjoint slice of one cumulative record; nothing
// is persisted until the final submit, which is a single atomic write.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Nota0515/bhakti/internal/model"
)

// TotalSteps is the number of form steps.
const TotalSteps = 4

// ErrValidation is returned when required fields of the current step
// (or of the whole record on submit) are empty. Wrapped errors name
// the offending fields.
var ErrValidation = errors.New("missing required fields")

// ErrNotFinalStep is returned when Submit is called before the wizard
// reached the last step.
var ErrNotFinalStep = errors.New("wizard has remaining steps")

// Store persists the accumulated record. *repository.MandalRepo is the
// production implementation.
type Store interface {
	Create(ctx context.Context, m *model.Mandal) (uint64, error)
}

// Notifier delivers the post-registration notification. Failures are
// the notifier's own problem: the wizard logs them and moves on.
type Notifier interface {
	MandalRegistered(ctx context.Context, m model.Mandal) error
}

// Wizard is the step machine. It is not safe for concurrent use; each
// registration session owns one instance.
type Wizard struct {
	store    Store
	notifier Notifier

	// NotifyTimeout bounds the fire-and-forget notification attempt.
	NotifyTimeout time.Duration

	step int
	data model.Mandal
}

func New(store Store, notifier Notifier) *Wizard {
	return &Wizard{
		store:         store,
		notifier:      notifier,
		NotifyTimeout: 10 * time.Second,
		step:          1,
	}
}

// Step reports the current step, 1..TotalSteps.
func (w *Wizard) Step() int { return w.step }

// Data returns a copy of the record accumulated so far.
func (w *Wizard) Data() model.Mandal { return w.data }

// SetBasics fills step 1: what the mandal is and where it stands.
func (w *Wizard) SetBasics(name, establishedYear, location, address string) {
	w.data.Name = strings.TrimSpace(name)
	w.data.EstablishedYear = strings.TrimSpace(establishedYear)
	w.data.Location = strings.TrimSpace(location)
	w.data.Address = strings.TrimSpace(address)
}

// SetContact fills step 2: who to reach.
func (w *Wizard) SetContact(contactName, contactPhone string) {
	w.data.ContactName = strings.TrimSpace(contactName)
	w.data.ContactPhone = strings.TrimSpace(contactPhone)
}

// SetOfferings fills step 3: prasad payment and delivery details.
func (w *Wizard) SetOfferings(upiID, specialties string, deliveryAvailable bool) {
	w.data.UpiID = strings.TrimSpace(upiID)
	w.data.Specialties = strings.TrimSpace(specialties)
	w.data.DeliveryAvailable = deliveryAvailable
}

// SetExtras fills step 4: optional color for the directory page.
func (w *Wizard) SetExtras(description, pandalTheme, culturalPrograms, previousAwards string) {
	w.data.Description = strings.TrimSpace(description)
	w.data.PandalTheme = strings.TrimSpace(pandalTheme)
	w.data.CulturalPrograms = strings.TrimSpace(culturalPrograms)
	w.data.PreviousAwards = strings.TrimSpace(previousAwards)
}

// Next advances to the following step. It refuses while required
// fields of the current step are still empty.
func (w *Wizard) Next() error {
	if missing := w.missingForStep(w.step); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(missing, ", "))
	}
	if w.step < TotalSteps {
		w.step++
	}
	return nil
}

// Back moves one step back. On step 1 it reports that the wizard was
// exited instead of decrementing; the accumulated record is discarded
// by the caller, so an abandoned registration leaves no trace.
func (w *Wizard) Back() (exited bool) {
	if w.step == 1 {
		return true
	}
	w.step--
	return false
}

// Submit validates the whole record and persists it in one write,
// then fires the registration notification without letting its
// outcome touch the result. A failed submit leaves no partial record
// and may simply be retried with the same data.
func (w *Wizard) Submit(ctx context.Context, registeredBy uint64) (uint64, error) {
	if w.step != TotalSteps {
		return 0, ErrNotFinalStep
	}
	var missing []string
	for s := 1; s <= TotalSteps; s++ {
		missing = append(missing, w.missingForStep(s)...)
	}
	if len(missing) > 0 {
		return 0, fmt.Errorf("%w: %s", ErrValidation, strings.Join(missing, ", "))
	}

	rec := w.data
	rec.RegisteredBy = registeredBy
	id, err := w.store.Create(ctx, &rec)
	if err != nil {
		return 0, err
	}
	rec.ID = id

	if w.notifier != nil {
		// Registration success must not be hostage to the notifier:
		// bounded attempt, failure logged, never retried.
		go func(m model.Mandal) {
			nctx, cancel := context.WithTimeout(context.Background(), w.NotifyTimeout)
			defer cancel()
			if err := w.notifier.MandalRegistered(nctx, m); err != nil {
				log.Printf("wizard: registration notification failed for %q: %v", m.Name, err)
			}
		}(rec)
	}
	return id, nil
}

// missingForStep names the empty required fields of a step.
func (w *Wizard) missingForStep(step int) []string {
	var missing []string
	req := func(v, name string) {
		if v == "" {
			missing = append(missing, name)
		}
	}
	switch step {
	case 1:
		req(w.data.Name, "name")
		req(w.data.Location, "location")
	case 2:
		req(w.data.ContactName, "contactName")
		req(w.data.ContactPhone, "contactPhone")
	case 3:
		req(w.data.UpiID, "upiId")
	}
	// Step 4 fields are optional.
	return missing
}
