package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gerardosocias29/cms-station/internal/api"
	"github.com/gerardosocias29/cms-station/internal/models"
)

// fakeBackend simulates the queue endpoints including the backend-side
// enforcement of the single-serving-slot invariant.
type fakeBackend struct {
	mu       sync.Mutex
	patients []models.Patient
	requests map[string]int
	nextSeq  map[string]int
}

func newFakeBackend(patients ...models.Patient) *fakeBackend {
	return &fakeBackend{
		patients: patients,
		requests: make(map[string]int),
		nextSeq:  map[string]int{"P": 1, "SC": 1, "R": 1},
	}
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/patients/queue", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.requests["queue"]++
		json.NewEncoder(w).Encode(b.patients)
	})
	mux.HandleFunc("/queue/start/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.requests["start"]++
		id := strings.TrimPrefix(r.URL.Path, "/queue/start/")
		for _, p := range b.patients {
			if p.Status == models.StatusInProgress {
				w.WriteHeader(http.StatusConflict)
				w.Write([]byte(`{"error":{"code":"already_serving","message":"another patient is in progress"}}`))
				return
			}
		}
		for i := range b.patients {
			if b.patients[i].ID == id {
				b.patients[i].Status = models.StatusInProgress
				json.NewEncoder(w).Encode(map[string]models.Patient{"patient": b.patients[i]})
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"not_found","message":"no such patient"}}`))
	})
	mux.HandleFunc("/queue/end/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.requests["end"]++
		id := strings.TrimPrefix(r.URL.Path, "/queue/end/")
		b.remove(id)
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/queue/next/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.requests["next"]++
		id := strings.TrimPrefix(r.URL.Path, "/queue/next/")
		b.remove(id)
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/departments", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]models.Department{
			{ID: "d1", Name: "Radiology"},
			{ID: "d2", Name: "Billing"},
			{ID: "d3", Name: "Therapy Center"},
		})
	})
	mux.HandleFunc("/patients", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		var in map[string]interface{}
		json.NewDecoder(r.Body).Decode(&in)
		priority, _ := in["priority"].(string)
		seq := b.nextSeq[priority]
		b.nextSeq[priority] = seq + 1
		patient := models.Patient{
			ID:             fmt.Sprintf("new-%s-%d", priority, seq),
			Priority:       priority,
			PriorityNumber: seq,
			Status:         models.StatusWaiting,
		}
		if name, ok := in["name"].(string); ok {
			patient.Name = name
		}
		b.patients = append(b.patients, patient)
		json.NewEncoder(w).Encode(patient)
	})
	return mux
}

func (b *fakeBackend) remove(id string) {
	kept := b.patients[:0]
	for _, p := range b.patients {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	b.patients = kept
}

func (b *fakeBackend) count(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[key]
}

func waitingEntry(id, priority string, number int) models.Patient {
	return models.Patient{ID: id, Priority: priority, PriorityNumber: number, Status: models.StatusWaiting}
}

func newTestController(t *testing.T, backend *fakeBackend) (*Controller, func()) {
	t.Helper()
	server := httptest.NewServer(backend.handler())
	controller := NewController(api.NewClient(server.URL, ""), zap.NewNop())
	return controller, server.Close
}

func TestRefreshAdoptsInProgressAsCurrent(t *testing.T) {
	backend := newFakeBackend(
		waitingEntry("p1", "P", 1),
		models.Patient{ID: "p2", Priority: "R", PriorityNumber: 3, Status: models.StatusInProgress},
		waitingEntry("p3", "R", 4),
	)
	controller, teardown := newTestController(t, backend)
	defer teardown()

	require.NoError(t, controller.Refresh(context.Background()))

	snap := controller.Snapshot()
	require.NotNil(t, snap.Current)
	assert.Equal(t, "R03", snap.Current.Ticket())
	require.Len(t, snap.Waiting, 2)
	assert.Equal(t, "p1", snap.Waiting[0].ID)
	assert.Equal(t, "p3", snap.Waiting[1].ID)
}

func TestStartSecondTimeRejectedByBackend(t *testing.T) {
	backend := newFakeBackend(waitingEntry("p1", "R", 1), waitingEntry("p2", "R", 2))

	consoleA, teardownA := newTestController(t, backend)
	defer teardownA()
	consoleB, teardownB := newTestController(t, backend)
	defer teardownB()

	require.NoError(t, consoleA.Refresh(context.Background()))
	require.NoError(t, consoleB.Refresh(context.Background()))

	require.NoError(t, consoleA.Start(context.Background(), "p1"))

	err := consoleB.Start(context.Background(), "p2")
	require.Error(t, err)
	assert.True(t, api.IsConflict(err))

	// The rejected console's state is unchanged until its next refresh.
	snap := consoleB.Snapshot()
	assert.Nil(t, snap.Current)
	assert.Len(t, snap.Waiting, 2)

	// A refresh converges it to server truth.
	require.NoError(t, consoleB.Refresh(context.Background()))
	snap = consoleB.Snapshot()
	require.NotNil(t, snap.Current)
	assert.Equal(t, "p1", snap.Current.ID)
}

func TestStartRejectedLocallyWhileServing(t *testing.T) {
	backend := newFakeBackend(waitingEntry("p1", "R", 1), waitingEntry("p2", "R", 2))
	controller, teardown := newTestController(t, backend)
	defer teardown()

	require.NoError(t, controller.Refresh(context.Background()))
	require.NoError(t, controller.Start(context.Background(), "p1"))

	starts := backend.count("start")
	err := controller.Start(context.Background(), "p2")
	assert.ErrorIs(t, err, ErrSessionActive)
	assert.Equal(t, starts, backend.count("start"), "local rejection must not hit the backend")
}

func TestEndClearsCurrentAndList(t *testing.T) {
	backend := newFakeBackend(waitingEntry("p1", "R", 1), waitingEntry("p2", "R", 2))
	controller, teardown := newTestController(t, backend)
	defer teardown()

	require.NoError(t, controller.Refresh(context.Background()))
	require.NoError(t, controller.Start(context.Background(), "p1"))
	require.NoError(t, controller.End(context.Background()))

	snap := controller.Snapshot()
	assert.Nil(t, snap.Current)
	for _, p := range snap.Waiting {
		assert.NotEqual(t, "p1", p.ID)
	}
}

func TestEndWithoutSession(t *testing.T) {
	backend := newFakeBackend()
	controller, teardown := newTestController(t, backend)
	defer teardown()

	assert.ErrorIs(t, controller.End(context.Background()), ErrNoSession)
	assert.Equal(t, 0, backend.count("end"))
}

func TestTransferRequiresDestination(t *testing.T) {
	backend := newFakeBackend(waitingEntry("p1", "R", 1))
	controller, teardown := newTestController(t, backend)
	defer teardown()

	require.NoError(t, controller.Refresh(context.Background()))
	require.NoError(t, controller.RefreshDepartments(context.Background()))
	require.NoError(t, controller.Start(context.Background(), "p1"))

	err := controller.Transfer(context.Background())
	assert.ErrorIs(t, err, ErrNoDestination)
	assert.Equal(t, 0, backend.count("next"), "no-op transfer must not hit the backend")

	assert.ErrorIs(t, controller.SelectDestination("bogus"), ErrUnknownStation)

	require.NoError(t, controller.SelectDestination("d2"))
	require.NoError(t, controller.Transfer(context.Background()))

	snap := controller.Snapshot()
	assert.Nil(t, snap.Current)
	assert.Empty(t, snap.DestinationID)
	for _, p := range snap.Waiting {
		assert.NotEqual(t, "p1", p.ID)
	}
}

func TestBusyFlagBlocksDoubleInvocation(t *testing.T) {
	backend := newFakeBackend(waitingEntry("p1", "R", 1), waitingEntry("p2", "R", 2))

	entered := make(chan struct{})
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/queue/start/") {
			close(entered)
			<-release
		}
		backend.handler().ServeHTTP(w, r)
	}))
	defer slow.Close()

	controller := NewController(api.NewClient(slow.URL, ""), zap.NewNop())
	require.NoError(t, controller.Refresh(context.Background()))

	done := make(chan error, 1)
	go func() { done <- controller.Start(context.Background(), "p1") }()
	<-entered

	assert.ErrorIs(t, controller.Start(context.Background(), "p2"), ErrBusy)

	close(release)
	require.NoError(t, <-done)
}

func TestIntakeEndToEnd(t *testing.T) {
	backend := newFakeBackend(waitingEntry("p1", "R", 1), waitingEntry("p2", "R", 2))
	backend.nextSeq["R"] = 3
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	client := api.NewClient(server.URL, "")
	controller := NewController(client, zap.NewNop())
	require.NoError(t, controller.Refresh(context.Background()))

	created, err := client.CreatePatient(context.Background(), api.Intake{
		Name: "Jan Reyes", Symptoms: "sprain", Priority: "R",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, created.Status)
	assert.Equal(t, "R03", created.Ticket())

	require.NoError(t, controller.Refresh(context.Background()))
	snap := controller.Snapshot()
	assert.Nil(t, snap.Current, "intake must not touch the serving slot")
	require.Len(t, snap.Waiting, 3)
	assert.Equal(t, created.ID, snap.Waiting[2].ID)
}
