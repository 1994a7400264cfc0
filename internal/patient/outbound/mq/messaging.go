package mq

import (
	"context"
	"encoding/json"
	"maps"
	"slices"
	"strconv"

	"github.com/shandysiswandi/gopatient/internal/patient/usecase"
	"github.com/shandysiswandi/gopatient/internal/pkg/instrument"
	"github.com/shandysiswandi/gopatient/internal/pkg/messaging"
	"github.com/shandysiswandi/gopatient/internal/shared/event"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishPatientRegistered(ctx context.Context, msg usecase.PatientRegisteredEvent) error {
	ctx, span := m.ins.Tracer("patient.outbound.mq").Start(ctx, "PublishPatientRegistered")
	defer span.End()

	body, err := json.Marshal(event.PatientRegisteredMessage{
		PatientID:           msg.PatientID,
		MedicalRecordNumber: msg.MedicalRecordNumber,
		FullName:            msg.FullName,
		RegisteredAt:        msg.RegisteredAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if _, err := m.client.Publish(ctx, event.PatientRegisteredDestination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(strconv.FormatInt(msg.PatientID, 10)),
		Headers: headers(ctx),
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

// headers carries the correlation ID and the W3C trace context to consumers.
func headers(ctx context.Context) []messaging.Header {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	out := make([]messaging.Header, 0, len(carrier)+1)
	out = append(out, messaging.Header{Key: keyOfCorrelationID, Value: []byte(instrument.GetCorrelationID(ctx))})
	for _, k := range slices.Sorted(maps.Keys(carrier)) {
		out = append(out, messaging.Header{Key: k, Value: []byte(carrier[k])})
	}
	return out
}
