package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/argrp/rpbot/internal/model"
	"github.com/argrp/rpbot/internal/testutil"
)

func TestRatings_Rate(t *testing.T) {
	valid := model.RateStaffParams{
		ChannelID: channelRateStaff,
		Rater:     member("U1"),
		StaffID:   "S1",
		Stars:     4,
		Note:      " Muy atento ",
	}

	tests := []struct {
		name      string
		params    func(p model.RateStaffParams) model.RateStaffParams
		mockSetup func(*MockRatingStore, *MockMemberManager)
		wantErr   error
		wantStats model.RatingStats
	}{
		{
			name:   "success",
			params: func(p model.RateStaffParams) model.RateStaffParams { return p },
			mockSetup: func(rs *MockRatingStore, mm *MockMemberManager) {
				mm.On("Member", mock.Anything, "S1").Return(member("S1", roleModerator), nil)
				rs.On("Create", mock.Anything, model.Rating{StaffID: "S1", RaterID: "U1", Stars: 4, Note: "Muy atento"}).
					Return(model.Rating{ID: 10, StaffID: "S1", RaterID: "U1", Stars: 4, Note: "Muy atento"}, nil)
				rs.On("CountByStaff", mock.Anything, "S1").Return(3, nil)
				rs.On("AverageByStaff", mock.Anything, "S1").Return(4.3, nil)
			},
			wantStats: model.RatingStats{Count: 3, Average: 4.3},
		},
		{
			name:    "wrong channel",
			params:  func(p model.RateStaffParams) model.RateStaffParams { p.ChannelID = "C-X"; return p },
			wantErr: model.ErrValidation,
		},
		{
			name:    "stars out of range",
			params:  func(p model.RateStaffParams) model.RateStaffParams { p.Stars = 6; return p },
			wantErr: model.ErrValidation,
		},
		{
			name:    "empty note",
			params:  func(p model.RateStaffParams) model.RateStaffParams { p.Note = ""; return p },
			wantErr: model.ErrValidation,
		},
		{
			name:   "target is not a moderator",
			params: func(p model.RateStaffParams) model.RateStaffParams { return p },
			mockSetup: func(rs *MockRatingStore, mm *MockMemberManager) {
				mm.On("Member", mock.Anything, "S1").Return(member("S1"), nil)
			},
			wantErr: model.ErrValidation,
		},
		{
			name:   "target left the guild",
			params: func(p model.RateStaffParams) model.RateStaffParams { return p },
			mockSetup: func(rs *MockRatingStore, mm *MockMemberManager) {
				mm.On("Member", mock.Anything, "S1").Return(model.Member{}, model.ErrNotFound)
			},
			wantErr: model.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, members := &MockRatingStore{}, &MockMemberManager{}
			if tt.mockSetup != nil {
				tt.mockSetup(store, members)
			}
			s := NewRatings(store, members, testCapabilities(), channelRateStaff, testutil.MakeNoopLogger())

			rating, stats, err := s.Rate(context.Background(), tt.params(valid))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(10), rating.ID)
			assert.Equal(t, tt.wantStats, stats)
			store.AssertExpectations(t)
		})
	}
}

func TestRatings_RateStoreFailure(t *testing.T) {
	store, members := &MockRatingStore{}, &MockMemberManager{}
	members.On("Member", mock.Anything, "S1").Return(member("S1", roleModerator), nil)
	store.On("Create", mock.Anything, mock.Anything).Return(model.Rating{}, errors.New("db down"))

	s := NewRatings(store, members, testCapabilities(), channelRateStaff, testutil.MakeNoopLogger())
	_, _, err := s.Rate(context.Background(), model.RateStaffParams{
		ChannelID: channelRateStaff, Rater: member("U1"), StaffID: "S1", Stars: 5, Note: "ok",
	})

	var extErr *model.ExternalError
	assert.ErrorAs(t, err, &extErr)
}

func TestRatings_Import(t *testing.T) {
	store := &MockRatingStore{}
	dup := model.Rating{StaffID: "S1", RaterID: "U1", Stars: 5, Note: "a"}
	fresh := model.Rating{ID: 12, StaffID: "S1", RaterID: "U2", Stars: 3, Note: "b"}

	store.On("Exists", mock.Anything, dup).Return(true, nil)
	store.On("Exists", mock.Anything, fresh).Return(false, nil)
	store.On("Create", mock.Anything, fresh).Return(fresh, nil).Once()
	store.On("ResyncSequence", mock.Anything).Return(nil).Once()

	s := NewRatings(store, &MockMemberManager{}, testCapabilities(), channelRateStaff, testutil.MakeNoopLogger())
	result, err := s.Import(context.Background(), []model.Rating{dup, fresh})
	require.NoError(t, err)

	assert.Equal(t, model.ImportResult{Imported: 1, Skipped: 1}, result)
	store.AssertExpectations(t)
}

func TestRatings_ImportRejectsInvalidRow(t *testing.T) {
	store := &MockRatingStore{}
	s := NewRatings(store, &MockMemberManager{}, testCapabilities(), channelRateStaff, testutil.MakeNoopLogger())

	_, err := s.Import(context.Background(), []model.Rating{{StaffID: "S1", RaterID: "U1", Stars: 0}})
	assert.ErrorIs(t, err, model.ErrValidation)
	store.AssertNotCalled(t, "ResyncSequence", mock.Anything)
}
