// Package roblox resolves Roblox accounts through the public web APIs.
package roblox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/argrp/rpbot/internal/logger"
	"github.com/argrp/rpbot/internal/model"
)

const (
	searchLimit    = 10
	minQueryLength = 2
	thumbnailSize  = "420x420"
)

var _ model.IdentityResolver = (*Client)(nil)

// Options contains API endpoints and client limits.
type Options struct {
	UsersURL          string
	ThumbnailsURL     string
	FriendsURL        string
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}

// Client looks accounts up. Every failure, including network errors and
// malformed responses, is reported as model.ErrNotFound.
type Client struct {
	http          *http.Client
	limiter       *rate.Limiter
	usersURL      string
	thumbnailsURL string
	friendsURL    string
	logger        *logger.Logger
}

func NewClient(opts Options, logger *logger.Logger) *Client {
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		http:          &http.Client{Timeout: opts.Timeout},
		limiter:       rate.NewLimiter(limit, burst),
		usersURL:      strings.TrimRight(opts.UsersURL, "/"),
		thumbnailsURL: strings.TrimRight(opts.ThumbnailsURL, "/"),
		friendsURL:    strings.TrimRight(opts.FriendsURL, "/"),
		logger:        logger,
	}
}

type usernamesRequest struct {
	Usernames          []string `json:"usernames"`
	ExcludeBannedUsers bool     `json:"excludeBannedUsers"`
}

type userSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type usersResponse struct {
	Data []userSummary `json:"data"`
}

type thumbnailResponse struct {
	Data []struct {
		ImageURL string `json:"imageUrl"`
	} `json:"data"`
}

type userResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	Description string    `json:"description"`
	Created     time.Time `json:"created"`
	IsBanned    bool      `json:"isBanned"`
}

type countResponse struct {
	Count int `json:"count"`
}

// Resolve finds the account with the exact username, skipping banned accounts.
func (c *Client) Resolve(ctx context.Context, name string) (model.Identity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Identity{}, model.ErrNotFound
	}

	users, err := c.lookupUsernames(ctx, name, true)
	if err != nil {
		return model.Identity{}, c.notFound("resolve", name, err)
	}
	if len(users) == 0 {
		return model.Identity{}, model.ErrNotFound
	}
	user := users[0]

	var bust, body string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bust, err = c.thumbnail(gctx, "avatar-bust", user.ID)
		return err
	})
	g.Go(func() error {
		var err error
		body, err = c.thumbnail(gctx, "avatar", user.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Identity{}, c.notFound("resolve", name, err)
	}
	if body == "" {
		body = bust
	}

	return model.Identity{
		ID:          user.ID,
		Name:        user.Name,
		AvatarURL:   bust,
		FullBodyURL: body,
	}, nil
}

// Details fetches the extended profile of an account.
func (c *Client) Details(ctx context.Context, id int64) (model.IdentityDetails, error) {
	var (
		user                          userResponse
		body                          string
		friends, followers, following countResponse
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.getJSON(gctx, fmt.Sprintf("%s/v1/users/%d", c.usersURL, id), &user)
	})
	g.Go(func() error {
		var err error
		body, err = c.thumbnail(gctx, "avatar", id)
		return err
	})
	g.Go(func() error {
		return c.getJSON(gctx, fmt.Sprintf("%s/v1/users/%d/friends/count", c.friendsURL, id), &friends)
	})
	g.Go(func() error {
		return c.getJSON(gctx, fmt.Sprintf("%s/v1/users/%d/followers/count", c.friendsURL, id), &followers)
	})
	g.Go(func() error {
		return c.getJSON(gctx, fmt.Sprintf("%s/v1/users/%d/followings/count", c.friendsURL, id), &following)
	})
	if err := g.Wait(); err != nil {
		return model.IdentityDetails{}, c.notFound("details", fmt.Sprint(id), err)
	}
	if user.ID == 0 {
		return model.IdentityDetails{}, model.ErrNotFound
	}

	displayName := user.DisplayName
	if displayName == "" {
		displayName = user.Name
	}

	return model.IdentityDetails{
		ID:             user.ID,
		Name:           user.Name,
		DisplayName:    displayName,
		Description:    strings.TrimSpace(user.Description),
		Created:        user.Created,
		IsBanned:       user.IsBanned,
		FullBodyURL:    body,
		ProfileURL:     model.ProfileURL(user.ID),
		FriendCount:    friends.Count,
		FollowerCount:  followers.Count,
		FollowingCount: following.Count,
	}, nil
}

// Search returns up to ten accounts matching query, the exact username first.
// Queries shorter than two characters match nothing.
func (c *Client) Search(ctx context.Context, query string) ([]model.IdentityMatch, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minQueryLength {
		return nil, nil
	}

	var exact []userSummary
	var keyword usersResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		exact, err = c.lookupUsernames(gctx, query, false)
		return err
	})
	g.Go(func() error {
		u := fmt.Sprintf("%s/v1/users/search?keyword=%s&limit=%d", c.usersURL, url.QueryEscape(query), searchLimit)
		return c.getJSON(gctx, u, &keyword)
	})
	if err := g.Wait(); err != nil {
		return nil, c.notFound("search", query, err)
	}

	seen := make(map[int64]struct{})
	matches := make([]model.IdentityMatch, 0, searchLimit)
	for _, u := range append(exact, keyword.Data...) {
		if _, dup := seen[u.ID]; dup {
			continue
		}
		seen[u.ID] = struct{}{}
		matches = append(matches, model.IdentityMatch{ID: u.ID, Name: u.Name})
		if len(matches) == searchLimit {
			break
		}
	}

	return matches, nil
}

func (c *Client) lookupUsernames(ctx context.Context, name string, excludeBanned bool) ([]userSummary, error) {
	payload, err := json.Marshal(usernamesRequest{Usernames: []string{name}, ExcludeBannedUsers: excludeBanned})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.usersURL+"/v1/usernames/users", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp usersResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) thumbnail(ctx context.Context, kind string, id int64) (string, error) {
	u := fmt.Sprintf("%s/v1/users/%s?userIds=%d&size=%s&format=Png&isCircular=false", c.thumbnailsURL, kind, id, thumbnailSize)
	var resp thumbnailResponse
	if err := c.getJSON(ctx, u, &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 {
		return "", nil
	}
	return resp.Data[0].ImageURL, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request %s: unexpected status %d", req.URL.Path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", req.URL.Path, err)
	}
	return nil
}

func (c *Client) notFound(op, subject string, err error) error {
	c.logger.Debug("Roblox client: lookup failed", "op", op, "subject", subject, "error", err.Error())
	return model.ErrNotFound
}
