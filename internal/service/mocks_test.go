package service

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/argrp/rpbot/internal/model"
)

// MockMemberManager mocks the MemberManager interface
type MockMemberManager struct {
	mock.Mock
}

func (m *MockMemberManager) Member(ctx context.Context, userID string) (model.Member, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Member), args.Error(1)
}

func (m *MockMemberManager) MembersWithRole(ctx context.Context, roleID string) ([]model.Member, error) {
	args := m.Called(ctx, roleID)
	return args.Get(0).([]model.Member), args.Error(1)
}

func (m *MockMemberManager) AddRole(ctx context.Context, userID, roleID string) error {
	args := m.Called(ctx, userID, roleID)
	return args.Error(0)
}

func (m *MockMemberManager) RemoveRole(ctx context.Context, userID, roleID string) error {
	args := m.Called(ctx, userID, roleID)
	return args.Error(0)
}

func (m *MockMemberManager) SetNickname(ctx context.Context, userID, nickname string) error {
	args := m.Called(ctx, userID, nickname)
	return args.Error(0)
}

func (m *MockMemberManager) Timeout(ctx context.Context, userID string, until time.Time, reason string) error {
	args := m.Called(ctx, userID, until, reason)
	return args.Error(0)
}

func (m *MockMemberManager) RoleIDByName(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

// MockIdentityResolver mocks the IdentityResolver interface
type MockIdentityResolver struct {
	mock.Mock
}

func (m *MockIdentityResolver) Resolve(ctx context.Context, name string) (model.Identity, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(model.Identity), args.Error(1)
}

func (m *MockIdentityResolver) Details(ctx context.Context, id int64) (model.IdentityDetails, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.IdentityDetails), args.Error(1)
}

func (m *MockIdentityResolver) Search(ctx context.Context, query string) ([]model.IdentityMatch, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]model.IdentityMatch), args.Error(1)
}

// MockRecordStore mocks the RecordStore interface
type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) Create(ctx context.Context, record model.Record) (int64, error) {
	args := m.Called(ctx, record)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecordStore) ListByUser(ctx context.Context, kind model.RecordKind, userID string, limit int) ([]model.Record, error) {
	args := m.Called(ctx, kind, userID, limit)
	return args.Get(0).([]model.Record), args.Error(1)
}

func (m *MockRecordStore) CountByUser(ctx context.Context, kind model.RecordKind, userID string) (int, error) {
	args := m.Called(ctx, kind, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockRecordStore) DeleteByUser(ctx context.Context, kind model.RecordKind, userID string) ([]string, error) {
	args := m.Called(ctx, kind, userID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRecordStore) DeleteByID(ctx context.Context, kind model.RecordKind, id int64) (bool, error) {
	args := m.Called(ctx, kind, id)
	return args.Bool(0), args.Error(1)
}

// MockAuditStore mocks the AuditStore interface
type MockAuditStore struct {
	mock.Mock
}

func (m *MockAuditStore) Insert(ctx context.Context, entry model.DeletionLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockRatingStore mocks the RatingStore interface
type MockRatingStore struct {
	mock.Mock
}

func (m *MockRatingStore) Create(ctx context.Context, rating model.Rating) (model.Rating, error) {
	args := m.Called(ctx, rating)
	return args.Get(0).(model.Rating), args.Error(1)
}

func (m *MockRatingStore) CountByStaff(ctx context.Context, staffID string) (int, error) {
	args := m.Called(ctx, staffID)
	return args.Int(0), args.Error(1)
}

func (m *MockRatingStore) AverageByStaff(ctx context.Context, staffID string) (float64, error) {
	args := m.Called(ctx, staffID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockRatingStore) Exists(ctx context.Context, rating model.Rating) (bool, error) {
	args := m.Called(ctx, rating)
	return args.Bool(0), args.Error(1)
}

func (m *MockRatingStore) ResyncSequence(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockStorage mocks the Storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, reader, size, contentType)
	return args.Error(0)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockTokenManager mocks the TokenManager interface
type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) GenerateOperatorToken(operator string) (string, error) {
	args := m.Called(operator)
	return args.String(0), args.Error(1)
}

func (m *MockTokenManager) ParseOperatorToken(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

const (
	roleModerator    = "R-MOD"
	roleMute         = "R-MUTE"
	rolePolice       = "R-POL"
	roleStaff        = "R-STAFF"
	roleCitizen      = "R-CIT"
	roleUnverified   = "R-UNV"
	roleApplicant    = "R-APP"
	channelVerify    = "C-VERIFY"
	channelRateStaff = "C-RATE"
)

func testCapabilities() *RoleCapabilities {
	return NewRoleCapabilities(map[model.Capability][]string{
		model.CapabilityModerator:        {roleModerator},
		model.CapabilityMuteModerator:    {roleMute},
		model.CapabilityPolice:           {rolePolice, "R-POL2"},
		model.CapabilityRoleRequestStaff: {roleStaff},
	})
}

func member(id string, roles ...string) model.Member {
	return model.Member{ID: id, Username: "user" + id, Tag: "user" + id + "#0001", Roles: roles}
}
