package model

import "time"

// MuteParams contains the inputs of the mute command.
type MuteParams struct {
	Moderator Member
	TargetID  string
	Duration  string
	Reason    string
}

// MuteResult describes an applied timeout.
type MuteResult struct {
	Duration time.Duration
	Until    time.Time
}

// StaffGroup selects which staff listing to show.
type StaffGroup string

const (
	StaffGroupModerators StaffGroup = "moderadores"
	StaffGroupApplicants StaffGroup = "postulantes"
)

// RoleChangeParams contains the inputs of the add-role and remove-role commands.
type RoleChangeParams struct {
	Moderator Member
	TargetID  string
	RoleID    string
}

// ImportResult reports the outcome of a ratings import.
type ImportResult struct {
	Imported int
	Skipped  int
}
