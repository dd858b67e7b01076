package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"reflect"
	"strconv"
	"strings"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	"github.com/debdevops/servicehub/pkg"
	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// ExportDlqMessages renders a namespace's tracked messages as JSON or CSV for
// offline triage.
func (uc *UseCase) ExportDlqMessages(ctx context.Context, namespaceID uuid.UUID, filter mmodel.DlqFilter, format string) ([]byte, error) {
	_, tracer, reqId, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.export_dlq_messages")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqId),
		attribute.String("app.request.namespace_id", namespaceID.String()),
		attribute.String("app.request.format", format),
	)

	messages, err := uc.DlqRepo.FindByNamespace(ctx, namespaceID, filter, mmodel.Pagination{})
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get tracked messages", err)

		return nil, err
	}

	switch strings.ToLower(format) {
	case "json":
		return json.MarshalIndent(messages, "", "  ")
	case "csv":
		return renderCSV(messages)
	default:
		return nil, pkg.ValidateBusinessError(constant.ErrInvalidExportFormat, reflect.TypeOf(mmodel.DlqMessage{}).Name(), format)
	}
}

func renderCSV(messages []*mmodel.DlqMessage) ([]byte, error) {
	var buf bytes.Buffer

	writer := csv.NewWriter(&buf)

	header := []string{
		"id", "entity_name", "entity_type", "sequence_number", "enqueued_time",
		"dead_letter_reason", "failure_category", "delivery_count", "status",
		"first_seen_at", "last_seen_at",
	}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, message := range messages {
		record := []string{
			message.ID.String(),
			message.EntityName,
			string(message.EntityType),
			strconv.FormatInt(message.SequenceNumber, 10),
			message.EnqueuedTime.UTC().Format("2006-01-02T15:04:05Z"),
			message.DeadLetterReason,
			string(message.FailureCategory),
			strconv.FormatUint(uint64(message.DeliveryCount), 10),
			string(message.Status),
			message.FirstSeenAt.UTC().Format("2006-01-02T15:04:05Z"),
			message.LastSeenAt.UTC().Format("2006-01-02T15:04:05Z"),
		}

		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
