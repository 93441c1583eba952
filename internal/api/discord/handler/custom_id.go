package handler

import "github.com/argrp/rpbot/internal/model"

// Component and modal custom ids. Prefixed ids carry a session key or user id.
const (
	PrefixVerifyConfirm = "verificar_si_"
	PrefixVerifyCancel  = "verificar_no_"
	PrefixGreet         = "saludar_"
	PrefixRequestAccept = "solicitud_aceptar_"
	PrefixRequestReject = "solicitud_rechazar_"
	PrefixRejectModal   = "rechazar_modal_"
	PrefixStaffList     = "lista_staff_"
	PrefixArrestCharges = "arrestos_cargos_"

	CustomIDFAQ       = "faq_select"
	CustomIDTechnical = "tecnicatura_select"

	FieldRejectReason = "motivo_rechazo"
)

// Option names shared by several commands.
const (
	OptionUser        = "usuario"
	OptionRobloxUser  = "usuario_roblox"
	OptionReason      = "motivo"
	OptionCharges     = "cargos"
	OptionRole        = "rol"
	OptionStaff       = "staff"
	OptionStars       = "estrellas"
	OptionNote        = "opinion_personal"
	OptionDuration    = "tiempo"
	OptionPlace       = "lugar"
	OptionEnvironment = "entorno"
	OptionRequestRole = "nombre-rol"
	OptionEvidence    = "pruebas"
	OptionArrestPhoto = "foto-arresto"
	OptionFinePhoto   = "foto-multa"
)

func staffListID(group model.StaffGroup) string {
	return PrefixStaffList + string(group)
}
