package service

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/argrp/rpbot/internal/logger"
	"github.com/argrp/rpbot/internal/model"
)

// Evidence copies uploaded attachments into object storage so records outlive
// the platform's CDN links. A nil storage disables archiving.
type Evidence struct {
	storage model.Storage
	client  *http.Client
	logger  *logger.Logger
}

func NewEvidence(storage model.Storage, client *http.Client, logger *logger.Logger) *Evidence {
	if client == nil {
		client = http.DefaultClient
	}
	return &Evidence{
		storage: storage,
		client:  client,
		logger:  logger,
	}
}

// Archive stores the attachment under <scope>/<ownerID>/<uuid><ext> and returns
// the key. Failures are logged and yield an empty key.
func (e *Evidence) Archive(ctx context.Context, scope, ownerID string, a model.Attachment) string {
	if e == nil || e.storage == nil || a.URL == "" {
		return ""
	}

	key, err := e.archive(ctx, scope, ownerID, a)
	if err != nil {
		e.logger.Warn("Evidence: failed to archive attachment", "scope", scope, "owner", ownerID, "error", err.Error())
		return ""
	}
	return key
}

func (e *Evidence) archive(ctx context.Context, scope, ownerID string, a model.Attachment) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download attachment: status %d", resp.StatusCode)
	}

	contentType := a.ContentType
	if contentType == "" {
		contentType = resp.Header.Get("Content-Type")
	}

	key := fmt.Sprintf("%s/%s/%s%s", scope, ownerID, uuid.NewString(), strings.ToLower(path.Ext(a.Filename)))
	if err := e.storage.Upload(ctx, key, resp.Body, resp.ContentLength, contentType); err != nil {
		return "", fmt.Errorf("failed to upload evidence: %w", err)
	}

	return key, nil
}

// Discard deletes archived objects, skipping empty keys. Failures are logged.
func (e *Evidence) Discard(ctx context.Context, keys ...string) {
	if e == nil || e.storage == nil {
		return
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := e.storage.Delete(ctx, key); err != nil {
			e.logger.Warn("Evidence: failed to delete archived object", "key", key, "error", err.Error())
		}
	}
}
