package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/argrp/rpbot/internal/model"
)

// MockVerificationService mocks the VerificationService interface
type MockVerificationService struct {
	mock.Mock
}

func (m *MockVerificationService) Start(ctx context.Context, params model.StartVerificationParams) (string, model.VerificationSession, error) {
	args := m.Called(ctx, params)
	return args.String(0), args.Get(1).(model.VerificationSession), args.Error(2)
}

func (m *MockVerificationService) Confirm(ctx context.Context, key, actorID string) (model.VerificationSession, error) {
	args := m.Called(ctx, key, actorID)
	return args.Get(0).(model.VerificationSession), args.Error(1)
}

func (m *MockVerificationService) Cancel(ctx context.Context, key, actorID string) error {
	args := m.Called(ctx, key, actorID)
	return args.Error(0)
}

func (m *MockVerificationService) Greet(targetID, greeterID string) error {
	args := m.Called(targetID, greeterID)
	return args.Error(0)
}

// MockRoleRequestService mocks the RoleRequestService interface
type MockRoleRequestService struct {
	mock.Mock
}

func (m *MockRoleRequestService) Submit(ctx context.Context, params model.SubmitRoleRequestParams) (model.RoleRequestReceipt, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.RoleRequestReceipt), args.Error(1)
}

func (m *MockRoleRequestService) AttachPrompt(key string, ref model.MessageRef) bool {
	args := m.Called(key, ref)
	return args.Bool(0)
}

func (m *MockRoleRequestService) Accept(ctx context.Context, key string, actor model.Member) (model.RoleRequestDecision, error) {
	args := m.Called(ctx, key, actor)
	return args.Get(0).(model.RoleRequestDecision), args.Error(1)
}

func (m *MockRoleRequestService) BeginReject(ctx context.Context, key string, actor model.Member) (model.RoleRequestSession, error) {
	args := m.Called(ctx, key, actor)
	return args.Get(0).(model.RoleRequestSession), args.Error(1)
}

func (m *MockRoleRequestService) CompleteReject(ctx context.Context, key string, actor model.Member, reason string) (model.RoleRequestDecision, error) {
	args := m.Called(ctx, key, actor, reason)
	return args.Get(0).(model.RoleRequestDecision), args.Error(1)
}

// MockRecordService mocks the RecordService interface
type MockRecordService struct {
	mock.Mock
}

func (m *MockRecordService) Record(ctx context.Context, params model.CreateRecordParams) (model.Record, *model.Identity, error) {
	args := m.Called(ctx, params)
	identity, _ := args.Get(1).(*model.Identity)
	return args.Get(0).(model.Record), identity, args.Error(2)
}

func (m *MockRecordService) History(ctx context.Context, kind model.RecordKind, target model.Member) (model.RecordHistory, error) {
	args := m.Called(ctx, kind, target)
	return args.Get(0).(model.RecordHistory), args.Error(1)
}

func (m *MockRecordService) Purge(ctx context.Context, params model.PurgeRecordsParams) (model.PurgeResult, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.PurgeResult), args.Error(1)
}

// MockRatingService mocks the RatingService interface
type MockRatingService struct {
	mock.Mock
}

func (m *MockRatingService) Rate(ctx context.Context, params model.RateStaffParams) (model.Rating, model.RatingStats, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Rating), args.Get(1).(model.RatingStats), args.Error(2)
}

// MockModerationService mocks the ModerationService interface
type MockModerationService struct {
	mock.Mock
}

func (m *MockModerationService) Mute(ctx context.Context, params model.MuteParams) (model.MuteResult, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.MuteResult), args.Error(1)
}

func (m *MockModerationService) AddRole(ctx context.Context, params model.RoleChangeParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *MockModerationService) RemoveRole(ctx context.Context, params model.RoleChangeParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *MockModerationService) StaffList(ctx context.Context, group model.StaffGroup) ([]model.Member, error) {
	args := m.Called(ctx, group)
	return args.Get(0).([]model.Member), args.Error(1)
}

// MockProfileService mocks the ProfileService interface
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Details(ctx context.Context, caller model.Member, name string) (model.IdentityDetails, error) {
	args := m.Called(ctx, caller, name)
	return args.Get(0).(model.IdentityDetails), args.Error(1)
}

func (m *MockProfileService) Environment(ctx context.Context, params model.EnvironmentParams) (model.Identity, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Identity), args.Error(1)
}

func (m *MockProfileService) Suggest(ctx context.Context, query string) []model.IdentityMatch {
	args := m.Called(ctx, query)
	return args.Get(0).([]model.IdentityMatch)
}

// MockTechnicalRoleService mocks the TechnicalRoleService interface
type MockTechnicalRoleService struct {
	mock.Mock
}

func (m *MockTechnicalRoleService) CanPublishTechnicalMenu(actor model.Member) bool {
	args := m.Called(actor)
	return args.Bool(0)
}

func (m *MockTechnicalRoleService) AssignTechnicalRoles(ctx context.Context, member model.Member, values []string) ([]string, error) {
	args := m.Called(ctx, member, values)
	return args.Get(0).([]string), args.Error(1)
}
