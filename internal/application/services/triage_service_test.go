package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sehat-ai/sehat-backend/internal/domain/entities"
	apperrors "github.com/sehat-ai/sehat-backend/pkg/errors"
)

type fakeClassifier struct {
	result *entities.TriageResult
	err    error
}

func (f *fakeClassifier) Classify(ctx context.Context, symptoms string) (*entities.TriageResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := *f.result
	return &out, nil
}

type fakeEventBus struct {
	mu     sync.Mutex
	events []*entities.SearchEvent
	ch     chan *entities.SearchEvent
	pubErr error
	subErr error
}

func (f *fakeEventBus) Publish(ctx context.Context, channel string, event *entities.SearchEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pubErr != nil {
		return f.pubErr
	}
	f.events = append(f.events, event)
	if f.ch != nil {
		f.ch <- event
	}
	return nil
}

func (f *fakeEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.SearchEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subErr != nil {
		return nil, f.subErr
	}
	if f.ch == nil {
		f.ch = make(chan *entities.SearchEvent, 16)
	}
	return f.ch, nil
}

func (f *fakeEventBus) Unsubscribe(ctx context.Context, channel string) error { return nil }

func (f *fakeEventBus) Close() error { return nil }

func TestClassify_ReturnsResultAndRecords(t *testing.T) {
	classifier := &fakeClassifier{result: &entities.TriageResult{
		Specialist: "Cardiologist",
		Department: "Cardiology",
		Urgency:    entities.UrgencyUrgent,
	}}
	history := &fakeHistoryRepo{}
	events := &fakeEventBus{}

	svc := NewTriageService(classifier, history, events)
	loc := &entities.Location{Latitude: 28.6139, Longitude: 77.2090}

	result, err := svc.Classify(context.Background(), "user-1", "chest pain and shortness of breath", loc)
	require.NoError(t, err)
	assert.Equal(t, "Cardiologist", result.Specialist)
	assert.Equal(t, entities.UrgencyUrgent, result.Urgency)

	require.Len(t, history.records, 1)
	assert.Equal(t, "user-1", history.records[0].UserID)
	assert.Equal(t, "chest pain and shortness of breath", history.records[0].Symptoms)
	assert.NotEmpty(t, history.records[0].ID)

	require.Len(t, events.events, 1)
	assert.Equal(t, entities.UrgencyUrgent, events.events[0].Urgency)
	require.NotNil(t, events.events[0].Latitude)
	assert.Equal(t, 28.6139, *events.events[0].Latitude)
}

func TestClassify_CoercesUnknownUrgency(t *testing.T) {
	classifier := &fakeClassifier{result: &entities.TriageResult{Urgency: entities.Urgency("critical!!")}}

	svc := NewTriageService(classifier, nil, nil)

	result, err := svc.Classify(context.Background(), "", "headache", nil)
	require.NoError(t, err)
	assert.Equal(t, entities.UrgencyNormal, result.Urgency)
}

func TestClassify_EmptySymptomsIsValidation(t *testing.T) {
	svc := NewTriageService(&fakeClassifier{}, nil, nil)

	_, err := svc.Classify(context.Background(), "user-1", "   ", nil)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
}

func TestClassify_ClassifierErrorSurfaces(t *testing.T) {
	wantErr := errors.New("model unavailable")
	svc := NewTriageService(&fakeClassifier{err: wantErr}, nil, nil)

	_, err := svc.Classify(context.Background(), "user-1", "fever", nil)
	assert.ErrorIs(t, err, wantErr)
}

func TestClassify_HistoryFailureIsNotFatal(t *testing.T) {
	classifier := &fakeClassifier{result: &entities.TriageResult{Urgency: entities.UrgencyNormal}}
	history := &fakeHistoryRepo{saveErr: errors.New("connection refused")}

	svc := NewTriageService(classifier, history, nil)

	result, err := svc.Classify(context.Background(), "user-1", "fever", nil)
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestClassify_EventFailureIsNotFatal(t *testing.T) {
	classifier := &fakeClassifier{result: &entities.TriageResult{Urgency: entities.UrgencyNormal}}
	events := &fakeEventBus{pubErr: errors.New("broker down")}

	svc := NewTriageService(classifier, nil, events)

	_, err := svc.Classify(context.Background(), "user-1", "fever", nil)
	assert.NoError(t, err)
}

func TestClassify_AnonymousUserSkipsHistory(t *testing.T) {
	classifier := &fakeClassifier{result: &entities.TriageResult{Urgency: entities.UrgencyNormal}}
	history := &fakeHistoryRepo{}

	svc := NewTriageService(classifier, history, nil)

	_, err := svc.Classify(context.Background(), "", "fever", nil)
	require.NoError(t, err)
	assert.Empty(t, history.records)
}

func TestHistory_NewestFirstWithLimit(t *testing.T) {
	classifier := &fakeClassifier{result: &entities.TriageResult{Urgency: entities.UrgencyNormal}}
	history := &fakeHistoryRepo{}
	svc := NewTriageService(classifier, history, nil)

	for _, symptoms := range []string{"fever", "cough", "rash"} {
		_, err := svc.Classify(context.Background(), "user-1", symptoms, nil)
		require.NoError(t, err)
	}

	records, err := svc.History(context.Background(), "user-1", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "rash", records[0].Symptoms)
	assert.Equal(t, "cough", records[1].Symptoms)
}

func TestHistory_RequiresUser(t *testing.T) {
	svc := NewTriageService(&fakeClassifier{}, &fakeHistoryRepo{}, nil)

	_, err := svc.History(context.Background(), "", 5)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrorTypeUnauthorized, appErr.Type)
}

func TestHistory_UnavailableWithoutStore(t *testing.T) {
	svc := NewTriageService(&fakeClassifier{}, nil, nil)

	_, err := svc.History(context.Background(), "user-1", 5)
	assert.True(t, apperrors.IsNotFound(err))
}
