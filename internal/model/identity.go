package model

import (
	"context"
	"fmt"
	"time"
)

// IdentityResolver looks up accounts of the external game-identity provider.
// Every failure is reported as ErrNotFound.
type IdentityResolver interface {
	Resolve(ctx context.Context, name string) (Identity, error)
	Details(ctx context.Context, id int64) (IdentityDetails, error)
	Search(ctx context.Context, query string) ([]IdentityMatch, error)
}

// Identity is a resolved external account.
type Identity struct {
	ID          int64
	Name        string
	AvatarURL   string
	FullBodyURL string
}

// ProfileURL returns the public profile page of the account.
func (i Identity) ProfileURL() string {
	return ProfileURL(i.ID)
}

// IdentityMatch is a search hit.
type IdentityMatch struct {
	ID   int64
	Name string
}

// IdentityDetails is the extended profile of an external account.
type IdentityDetails struct {
	ID             int64
	Name           string
	DisplayName    string
	Description    string
	Created        time.Time
	IsBanned       bool
	FullBodyURL    string
	ProfileURL     string
	FriendCount    int
	FollowerCount  int
	FollowingCount int
}

// ProfileURL returns the public profile page for an account id.
func ProfileURL(id int64) string {
	return fmt.Sprintf("https://www.roblox.com/users/%d/profile", id)
}

// EnvironmentParams contains the inputs of the environment command.
type EnvironmentParams struct {
	Reporter     Member
	Place        string
	Description  string
	ExternalName string
}
