package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/argrp/rpbot/internal/logger"
	"github.com/argrp/rpbot/internal/model"
)

// HistoryLimit is the number of records a history lists.
const HistoryLimit = 25

// Argentina has no daylight saving time.
var argentina = time.FixedZone("ART", -3*60*60)

const (
	recordDateLayout = "02/01/2006"
	logDateLayout    = "2/1/2006, 15:04:05"
)

// Records keeps arrest and fine records.
type Records struct {
	records      model.RecordStore
	audit        model.AuditStore
	identity     model.IdentityResolver
	capabilities model.CapabilityChecker
	evidence     *Evidence
	logger       *logger.Logger
	now          func() time.Time
}

func NewRecords(
	records model.RecordStore,
	audit model.AuditStore,
	identity model.IdentityResolver,
	capabilities model.CapabilityChecker,
	evidence *Evidence,
	logger *logger.Logger,
) *Records {
	return &Records{
		records:      records,
		audit:        audit,
		identity:     identity,
		capabilities: capabilities,
		evidence:     evidence,
		logger:       logger,
		now:          time.Now,
	}
}

// LogTimestamp formats t the way the records log shows it.
func LogTimestamp(t time.Time) string {
	return t.In(argentina).Format(logDateLayout)
}

// Record stores an arrest or fine. The identity is resolved from the target's
// nickname when possible and is nil otherwise.
func (s *Records) Record(ctx context.Context, params model.CreateRecordParams) (model.Record, *model.Identity, error) {
	if !params.Kind.Valid() {
		return model.Record{}, nil, model.NewValidationError("Tipo de registro desconocido: %s", params.Kind)
	}
	if !s.capabilities.HasCapability(params.Officer, model.CapabilityPolice) {
		return model.Record{}, nil, model.ErrUnauthorized
	}
	charges := strings.TrimSpace(params.Charges)
	if charges == "" {
		return model.Record{}, nil, model.NewValidationError("Indicá los cargos.")
	}
	if utf8.RuneCountInString(charges) > maxTextLength {
		return model.Record{}, nil, model.NewValidationError("Los cargos no pueden superar los %d caracteres.", maxTextLength)
	}
	if params.Evidence.URL == "" {
		return model.Record{}, nil, model.NewValidationError("Adjuntá la foto como prueba.")
	}

	record := model.Record{
		Kind:       params.Kind,
		UserID:     params.Target.ID,
		UserTag:    params.Target.DisplayTag(),
		RobloxName: params.Target.Username,
		Charges:    charges,
		OfficerID:  params.Officer.ID,
		OfficerTag: params.Officer.DisplayTag(),
		PhotoURL:   params.Evidence.URL,
		Date:       s.now().In(argentina).Format(recordDateLayout),
	}

	identity := s.lookup(ctx, params.Target)
	if identity != nil {
		record.RobloxName = identity.Name
		record.RobloxURL = identity.ProfileURL()
	}

	record.EvidenceKey = s.evidence.Archive(ctx, string(params.Kind), params.Target.ID, params.Evidence)

	id, err := s.records.Create(ctx, record)
	if err != nil {
		s.evidence.Discard(ctx, record.EvidenceKey)
		s.logger.Error("Records service: failed to store record", "kind", params.Kind, "user", params.Target.ID, "error", err.Error())
		return model.Record{}, nil, model.NewExternalError(fmt.Sprintf("registrar el %s", params.Kind), err)
	}
	record.ID = id

	s.logger.Info("Records service: record stored", "kind", params.Kind, "id", id, "user", params.Target.ID, "officer", params.Officer.ID)

	return record, identity, nil
}

// History returns the total and the latest records of target.
func (s *Records) History(ctx context.Context, kind model.RecordKind, target model.Member) (model.RecordHistory, error) {
	if !kind.Valid() {
		return model.RecordHistory{}, model.NewValidationError("Tipo de registro desconocido: %s", kind)
	}

	total, err := s.records.CountByUser(ctx, kind, target.ID)
	if err != nil {
		return model.RecordHistory{}, model.NewExternalError("consultar el historial", err)
	}
	records, err := s.records.ListByUser(ctx, kind, target.ID, HistoryLimit)
	if err != nil {
		return model.RecordHistory{}, model.NewExternalError("consultar el historial", err)
	}

	return model.RecordHistory{
		Target:   target,
		Identity: s.lookup(ctx, target),
		Total:    total,
		Records:  records,
	}, nil
}

// Purge deletes every record of a kind for the target and writes the deletion log.
func (s *Records) Purge(ctx context.Context, params model.PurgeRecordsParams) (model.PurgeResult, error) {
	if !params.Kind.Valid() {
		return model.PurgeResult{}, model.NewValidationError("Tipo de registro desconocido: %s", params.Kind)
	}
	if !s.capabilities.HasCapability(params.Executor, model.CapabilityPolice) {
		return model.PurgeResult{}, model.ErrUnauthorized
	}
	reason := strings.TrimSpace(params.Reason)
	if reason == "" {
		return model.PurgeResult{}, model.NewValidationError("Indicá el motivo de la eliminación.")
	}
	if utf8.RuneCountInString(reason) > maxTextLength {
		return model.PurgeResult{}, model.NewValidationError("El motivo no puede superar los %d caracteres.", maxTextLength)
	}

	keys, err := s.records.DeleteByUser(ctx, params.Kind, params.Target.ID)
	if err != nil {
		return model.PurgeResult{}, model.NewExternalError("eliminar los registros", err)
	}

	entry := model.DeletionLog{
		Kind:       params.Kind,
		UserID:     params.Target.ID,
		UserTag:    params.Target.DisplayTag(),
		Count:      int64(len(keys)),
		Reason:     reason,
		ExecutedBy: fmt.Sprintf("%s (%s)", params.Executor.DisplayTag(), params.Executor.ID),
		Date:       LogTimestamp(s.now()),
	}
	result := model.PurgeResult{Deleted: entry.Count, Entry: entry}

	if err := s.audit.Insert(ctx, entry); err != nil {
		s.logger.Error("Records service: failed to write deletion log", "kind", params.Kind, "user", params.Target.ID, "deleted", entry.Count, "error", err.Error())
		return result, model.NewExternalError("registrar la eliminación", err)
	}
	s.evidence.Discard(ctx, keys...)

	s.logger.Info("Records service: records purged", "kind", params.Kind, "user", params.Target.ID, "deleted", entry.Count, "executor", params.Executor.ID)

	return result, nil
}

// lookup resolves the identity hinted by the member's nickname, then username.
func (s *Records) lookup(ctx context.Context, m model.Member) *model.Identity {
	hint := m.IdentityHint()
	if hint == "" {
		return nil
	}
	identity, err := s.identity.Resolve(ctx, hint)
	if err != nil {
		return nil
	}
	return &identity
}
