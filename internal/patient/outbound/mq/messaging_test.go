package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/gopatient/internal/patient/usecase"
	"github.com/shandysiswandi/gopatient/internal/pkg/instrument"
	"github.com/shandysiswandi/gopatient/internal/pkg/messaging"
	"github.com/shandysiswandi/gopatient/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	destination string
	msg         messaging.OutgoingMessage
	err         error
}

func (p *recordingPublisher) Publish(_ context.Context, destination string, msg messaging.OutgoingMessage) (messaging.PublishResult, error) {
	p.destination = destination
	p.msg = msg
	return messaging.PublishResult{Topic: destination}, p.err
}

func (p *recordingPublisher) Close() error { return nil }

func TestMessaging_PublishPatientRegistered(t *testing.T) {
	at := time.Date(2024, time.May, 10, 9, 0, 0, 0, time.UTC)
	ev := usecase.PatientRegisteredEvent{
		PatientID:           42,
		MedicalRecordNumber: "MRN-42",
		FullName:            "Jane Doe",
		RegisteredAt:        at,
	}

	t.Run("Success", func(t *testing.T) {
		pub := &recordingPublisher{}
		m := NewMessaging(pub, instrument.NewNoop())

		require.NoError(t, m.PublishPatientRegistered(context.Background(), ev))
		assert.Equal(t, event.PatientRegisteredDestination, pub.destination)
		assert.Equal(t, []byte("42"), pub.msg.Key)
		require.Len(t, pub.msg.Headers, 1)
		assert.Equal(t, keyOfCorrelationID, pub.msg.Headers[0].Key)

		var got event.PatientRegisteredMessage
		require.NoError(t, json.Unmarshal(pub.msg.Body, &got))
		assert.Equal(t, int64(42), got.PatientID)
		assert.Equal(t, "MRN-42", got.MedicalRecordNumber)
		assert.True(t, at.Equal(got.RegisteredAt))
		assert.Contains(t, string(pub.msg.Body), `"patient_id":"42"`)
	})

	t.Run("PublishError", func(t *testing.T) {
		boom := errors.New("broker down")
		m := NewMessaging(&recordingPublisher{err: boom}, instrument.NewNoop())
		assert.ErrorIs(t, m.PublishPatientRegistered(context.Background(), ev), boom)
	})

	t.Run("Discard", func(t *testing.T) {
		pub := messaging.NewDiscard()
		m := NewMessaging(pub, instrument.NewNoop())
		require.NoError(t, m.PublishPatientRegistered(context.Background(), ev))

		require.NoError(t, pub.Close())
		assert.ErrorIs(t, m.PublishPatientRegistered(context.Background(), ev), messaging.ErrClosed)
	})
}
