package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueDecodesEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/patients/queue", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"p1","priority":"P","priority_number":1,"status":"waiting","created_at":"2025-06-01T08:00:00Z"},
			{"id":"p2","priority":"R","priority_number":3,"status":"in-progress","created_at":"2025-06-01T08:05:00Z"}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	patients, err := client.Queue(context.Background())
	require.NoError(t, err)
	require.Len(t, patients, 2)
	assert.Equal(t, "P01", patients[0].Ticket())
	assert.Equal(t, "R03", patients[1].Ticket())
}

func TestQueueRejectsMalformedPayload(t *testing.T) {
	cases := []string{
		`{"not":"an array"}`,
		`[{"id":"","priority":"R","priority_number":1,"status":"waiting"}]`,
		`[{"id":"p1","priority":"X","priority_number":1,"status":"waiting"}]`,
		`[{"id":"p1","priority":"R","priority_number":1,"status":"serving"}]`,
	}

	for _, payload := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(payload))
		}))
		client := NewClient(server.URL, "")
		_, err := client.Queue(context.Background())
		server.Close()

		var decodeErr *DecodeError
		require.ErrorAs(t, err, &decodeErr, "payload %s should fail decode", payload)
	}
}

func TestStartSessionConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":{"code":"already_serving","message":"another patient is in progress"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.StartSession(context.Background(), "p1")
	require.Error(t, err)
	assert.True(t, IsConflict(err))
	assert.Equal(t, "another patient is in progress", err.Error())
}

func TestMutationsCarryRequestID(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	require.NoError(t, client.EndSession(context.Background(), "p1"))
	assert.NotEmpty(t, body["request_id"])

	require.NoError(t, client.Transfer(context.Background(), "p1", "d2"))
	assert.Equal(t, "d2", body["next_step_id"])
	assert.NotEmpty(t, body["request_id"])
}

func TestDepartmentsFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("has_patient"))
		w.Write([]byte(`[{"id":"d1","name":"Radiology","now_serving_priority":"SC","now_serving_number":1}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	departments, err := client.Departments(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, departments, 1)
	assert.Equal(t, "SC01", departments[0].NowServing())
}

func TestIntakeValidate(t *testing.T) {
	missing := Intake{}.Validate()
	assert.ElementsMatch(t, []string{"name", "symptoms", "priority"}, missing)

	ok := Intake{Name: "Jan", Symptoms: "cough", Priority: "R"}.Validate()
	assert.Empty(t, ok)
}

func TestAPIErrorFallbackMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.Queue(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.False(t, IsConflict(err))
}
