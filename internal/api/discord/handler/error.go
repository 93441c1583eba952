package handler

import (
	"errors"
	"fmt"

	"github.com/argrp/rpbot/internal/model"
	"github.com/argrp/rpbot/internal/pending"
	"github.com/argrp/rpbot/internal/service"
)

// handleError translates a service error into the message shown to the actor.
func handleError(err error) string {
	var (
		validationErr *model.ValidationError
		lockedErr     *service.LockedError
		externalErr   *model.ExternalError
	)

	switch {
	case errors.As(err, &validationErr):
		return emojiWarn + " | " + validationErr.Message
	case errors.As(err, &lockedErr):
		return fmt.Sprintf("%s | Esta solicitud está siendo rechazada por %s.", emojiWarn, mention(lockedErr.HolderID))
	case errors.Is(err, pending.ErrSessionNotFound):
		return "Esta solicitud ya fue procesada o expiró."
	case errors.Is(err, model.ErrUnauthorized):
		return emojiDeny + " | No tenés los permisos necesarios para usar este comando."
	case errors.Is(err, model.ErrAlreadyGreeted):
		return emojiRejected + " | Ya le has dado la bienvenida a este usuario, no intentes spamear el saludo."
	case errors.Is(err, model.ErrNotFound):
		return emojiDeny + " | No se encontró lo que buscabas."
	case errors.As(err, &externalErr):
		return fmt.Sprintf("%s | No se pudo %s. Ejecutá el comando nuevamente.", emojiDeny, externalErr.Op)
	default:
		return emojiDeny + " | Ocurrió un error inesperado. Intentá nuevamente."
	}
}
