package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
	"github.com/sehat-ai/sehat-backend/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&config.TriageConfig{APIKey: "test-key", Model: "gemini-2.0-flash"})
	require.NoError(t, err)
	client.baseURL = server.URL
	return client
}

func candidateResponse(text string) []byte {
	payload := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	}
	data, _ := json.Marshal(payload)
	return data
}

func TestClassify_ParsesStructuredReply(t *testing.T) {
	reply := `{"specialist":"Cardiologist","department":"Cardiology","urgency":"emergency","facility_type":"hospital","search_keywords":["cardiology","emergency room"],"emergency_required":true}`
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write(candidateResponse(reply))
	})

	result, err := client.Classify(context.Background(), "crushing chest pain")
	require.NoError(t, err)
	assert.Equal(t, "Cardiologist", result.Specialist)
	assert.Equal(t, entities.UrgencyEmergency, result.Urgency)
	assert.True(t, result.EmergencyRequired)
	assert.Equal(t, []string{"cardiology", "emergency room"}, result.SearchKeywords)
}

func TestClassify_StripsMarkdownFences(t *testing.T) {
	reply := "```json\n{\"specialist\":\"Dermatologist\",\"urgency\":\"normal\"}\n```"
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(candidateResponse(reply))
	})

	result, err := client.Classify(context.Background(), "itchy rash")
	require.NoError(t, err)
	assert.Equal(t, "Dermatologist", result.Specialist)
	assert.Equal(t, entities.UrgencyNormal, result.Urgency)
}

func TestClassify_DefaultsMissingFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(candidateResponse(`{}`))
	})

	result, err := client.Classify(context.Background(), "mild headache")
	require.NoError(t, err)
	assert.Equal(t, "General Practitioner", result.Specialist)
	assert.Equal(t, "General Medicine", result.Department)
	assert.Equal(t, entities.UrgencyNormal, result.Urgency)
	assert.Equal(t, "hospital", result.FacilityType)
	assert.NotNil(t, result.SearchKeywords)
	assert.Empty(t, result.SearchKeywords)
	assert.False(t, result.EmergencyRequired)
}

func TestClassify_CoercesUnrecognizedUrgency(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(candidateResponse(`{"urgency":"IMMEDIATELY"}`))
	})

	result, err := client.Classify(context.Background(), "sore throat")
	require.NoError(t, err)
	assert.Equal(t, entities.UrgencyNormal, result.Urgency)
}

func TestClassify_ServerErrorSurfaces(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Classify(context.Background(), "fever")
	assert.Error(t, err)
}

func TestClassify_MalformedJSONIsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(candidateResponse("I think you should see a doctor."))
	})

	_, err := client.Classify(context.Background(), "fever")
	assert.Error(t, err)
}

func TestClassify_EmptyCandidatesIsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := client.Classify(context.Background(), "fever")
	assert.Error(t, err)
}

func TestClassify_RespectsContextTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write(candidateResponse(`{}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Classify(ctx, "fever")
	assert.Error(t, err)
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences(`{"a":1}`))
}
