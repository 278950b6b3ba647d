package queue

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/gerardosocias29/cms-station/internal/api"
	"github.com/gerardosocias29/cms-station/internal/models"
)

var (
	// ErrBusy means a command is already in flight; the triggering
	// control stays disabled until it settles.
	ErrBusy = errors.New("another action is still in progress")

	// ErrSessionActive blocks starting a session while the serving
	// slot is taken. The backend is the real enforcer; this is only
	// the local fast path.
	ErrSessionActive = errors.New("a session is already in progress")

	ErrNoSession      = errors.New("no session is in progress")
	ErrNoDestination  = errors.New("select a destination first")
	ErrNotWaiting     = errors.New("patient is not in the waiting list")
	ErrUnknownStation = errors.New("unknown destination department")
)

// Controller owns one department's view of the queue: the ordered
// waiting list and the single current patient. It issues commands to
// the backend and reconciles by full replace, never by merging deltas.
type Controller struct {
	api *api.Client
	log *zap.Logger

	mu            sync.Mutex
	busy          bool
	waiting       []models.Patient
	current       *models.Patient
	departments   []models.Department
	destinationID string
	totals        models.CardTotals

	onChange func()
}

func NewController(client *api.Client, log *zap.Logger) *Controller {
	return &Controller{api: client, log: log}
}

// SetOnChange registers the render trigger. Call before the controller
// is shared with other goroutines.
func (c *Controller) SetOnChange(fn func()) {
	c.onChange = fn
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}

// Snapshot is what renderers consume: plain copies, safe to read while
// the controller keeps moving.
type Snapshot struct {
	Waiting       []models.Patient
	Current       *models.Patient
	Departments   []models.Department
	DestinationID string
	Totals        models.CardTotals
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Waiting:       make([]models.Patient, len(c.waiting)),
		Departments:   make([]models.Department, len(c.departments)),
		DestinationID: c.destinationID,
		Totals:        c.totals,
	}
	copy(snap.Waiting, c.waiting)
	copy(snap.Departments, c.departments)
	if c.current != nil {
		current := *c.current
		snap.Current = &current
	}
	return snap
}

// Refresh replaces the local queue view with the backend's. Called on
// mount, on every push event naming this department, and after broker
// reconnect gaps. A fetched in-progress entry becomes the current
// patient even if no local action caused it, so reloads and second
// consoles converge to server truth.
func (c *Controller) Refresh(ctx context.Context) error {
	patients, err := c.api.Queue(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.waiting = c.waiting[:0]
	c.current = nil
	for _, p := range patients {
		switch p.Status {
		case models.StatusWaiting:
			c.waiting = append(c.waiting, p)
		case models.StatusInProgress:
			entry := p
			c.current = &entry
		}
	}
	c.mu.Unlock()

	c.notify()
	return nil
}

// RefreshDepartments reloads the destination list for transfers.
func (c *Controller) RefreshDepartments(ctx context.Context) error {
	departments, err := c.api.Departments(ctx, false)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.departments = departments
	c.mu.Unlock()
	c.notify()
	return nil
}

// RefreshTotals reloads the console header counters. Failures are not
// fatal to the queue view.
func (c *Controller) RefreshTotals(ctx context.Context) error {
	totals, err := c.api.CardTotals(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.totals = totals
	c.mu.Unlock()
	c.notify()
	return nil
}

// command is the one transition path: precondition check under the
// lock, busy guard for the duration of the HTTP call, state mutation
// only on acknowledgement. A failed call leaves local state exactly as
// it was; the next refresh corrects anything the backend did anyway.
func (c *Controller) command(ctx context.Context, check func() error, do func(context.Context) error, apply func()) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	if check != nil {
		if err := check(); err != nil {
			c.mu.Unlock()
			return err
		}
	}
	c.busy = true
	c.mu.Unlock()

	err := do(ctx)

	c.mu.Lock()
	c.busy = false
	if err == nil && apply != nil {
		apply()
	}
	c.mu.Unlock()

	if err != nil {
		return err
	}
	c.notify()
	return nil
}

// Start moves a waiting entry into the serving slot.
func (c *Controller) Start(ctx context.Context, patientID string) error {
	var started models.Patient
	return c.command(ctx,
		func() error {
			if c.current != nil {
				return ErrSessionActive
			}
			for _, p := range c.waiting {
				if p.ID == patientID {
					return nil
				}
			}
			return ErrNotWaiting
		},
		func(ctx context.Context) error {
			patient, err := c.api.StartSession(ctx, patientID)
			if err != nil {
				return err
			}
			started = patient
			return nil
		},
		func() {
			started.Status = models.StatusInProgress
			c.current = &started
			for i := range c.waiting {
				if c.waiting[i].ID == started.ID {
					c.waiting[i].Status = models.StatusInProgress
				}
			}
		},
	)
}

// End completes the current session.
func (c *Controller) End(ctx context.Context) error {
	var patientID string
	return c.command(ctx,
		func() error {
			if c.current == nil {
				return ErrNoSession
			}
			patientID = c.current.ID
			return nil
		},
		func(ctx context.Context) error {
			return c.api.EndSession(ctx, patientID)
		},
		func() {
			c.dropLocked(patientID)
			c.current = nil
			c.destinationID = ""
		},
	)
}

// SelectDestination stages the next-step department for a transfer.
// Selection is modal: nothing is committed until Transfer.
func (c *Controller) SelectDestination(departmentID string) error {
	c.mu.Lock()
	found := false
	for _, d := range c.departments {
		if d.ID == departmentID {
			found = true
			break
		}
	}
	if found {
		c.destinationID = departmentID
	}
	c.mu.Unlock()

	if !found {
		return ErrUnknownStation
	}
	c.notify()
	return nil
}

func (c *Controller) ClearDestination() {
	c.mu.Lock()
	c.destinationID = ""
	c.mu.Unlock()
	c.notify()
}

// Transfer routes the current patient to the staged destination. With
// no destination selected it is a no-op error; the UI keeps the
// control disabled for the same reason.
func (c *Controller) Transfer(ctx context.Context) error {
	var patientID, destination string
	return c.command(ctx,
		func() error {
			if c.current == nil {
				return ErrNoSession
			}
			if c.destinationID == "" {
				return ErrNoDestination
			}
			patientID = c.current.ID
			destination = c.destinationID
			return nil
		},
		func(ctx context.Context) error {
			return c.api.Transfer(ctx, patientID, destination)
		},
		func() {
			c.dropLocked(patientID)
			c.current = nil
			c.destinationID = ""
		},
	)
}

func (c *Controller) dropLocked(patientID string) {
	kept := c.waiting[:0]
	for _, p := range c.waiting {
		if p.ID != patientID {
			kept = append(kept, p)
		}
	}
	c.waiting = kept
}
