package application

import (
	"context"
	"strings"
	"sync"

	"github.com/bnema/care-cli/internal/domain"
	"github.com/bnema/care-cli/internal/ports"
)

type PharmacistWorkspace struct {
	mount Mount
	api   ports.PortalAPI

	Prescriptions *Panel[domain.Prescription]
	Search        *domain.SearchFilter[domain.Prescription]

	mu       sync.Mutex
	selected string
}

func NewPharmacistWorkspace(mount Mount, api ports.PortalAPI) *PharmacistWorkspace {
	return &PharmacistWorkspace{
		mount:         mount,
		api:           api,
		Prescriptions: NewPanel[domain.Prescription](prescriptionSource(api), domain.MsgLoadPrescriptions),
		Search:        domain.NewSearchFilter(domain.PrescriptionSearchFields...),
	}
}

func (w *PharmacistWorkspace) Role() domain.Role         { return domain.RolePharmacist }
func (w *PharmacistWorkspace) Identity() domain.Identity { return w.mount.Identity }

func (w *PharmacistWorkspace) Logout(ctx context.Context) domain.SessionState {
	w.Close()
	return w.mount.Logout(ctx)
}

func (w *PharmacistWorkspace) Load(ctx context.Context) {
	w.Prescriptions.Fetch(ctx)
}

func (w *PharmacistWorkspace) Reload(ctx context.Context, token uint64) {
	w.Prescriptions.Reload(ctx, token)
}

func (w *PharmacistWorkspace) VisiblePrescriptions() []domain.Prescription {
	return w.Search.Apply(w.Prescriptions.Snapshot().Items)
}

// Select marks a listed prescription for collection. An empty id clears the
// selection.
func (w *PharmacistWorkspace) Select(id string) error {
	id = strings.TrimSpace(id)
	if id != "" && !containsPrescription(w.Prescriptions.Snapshot().Items, id) {
		return domain.ErrPrescriptionNotFound
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selected = id
	return nil
}

func (w *PharmacistWorkspace) Selected() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selected
}

// Collect hands the selected prescription over against its collection code.
// Nothing is sent unless the code is six digits and a prescription is selected.
func (w *PharmacistWorkspace) Collect(ctx context.Context, code string) (PanelSnapshot[domain.Prescription], error) {
	code = strings.TrimSpace(code)
	if err := domain.ValidateCollectionCode(code); err != nil {
		return w.Prescriptions.Snapshot(), err
	}
	id := w.Selected()
	if id == "" {
		return w.Prescriptions.Snapshot(), domain.NewValidationError(domain.MsgSelectPrescription)
	}

	snapshot, err := w.Prescriptions.Mutate(ctx, func(ctx context.Context) error {
		return w.api.CollectPrescription(ctx, id, code)
	}, domain.MsgCollectPrescription)
	if err != nil {
		return snapshot, err
	}

	w.mu.Lock()
	if w.selected == id {
		w.selected = ""
	}
	w.mu.Unlock()
	return snapshot, nil
}

func (w *PharmacistWorkspace) Close() {
	w.Prescriptions.Close()
}

func containsPrescription(items []domain.Prescription, id string) bool {
	for _, item := range items {
		if item.ID == id {
			return true
		}
	}
	return false
}
