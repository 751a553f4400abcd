package service

import "github.com/AdamBeresnev/bracket-engine/internal/apperr"

var (
	ErrInvalidTournament  = apperr.New(apperr.KindValidation, "INVALID_TOURNAMENT", "invalid tournament settings")
	ErrInvalidParticipant = apperr.New(apperr.KindValidation, "INVALID_PARTICIPANT", "invalid participant")
	ErrTournamentFull     = apperr.New(apperr.KindValidation, "TOURNAMENT_FULL", "tournament is full")
	ErrAlreadyRegistered  = apperr.New(apperr.KindValidation, "ALREADY_REGISTERED", "participant is already registered")
	ErrNotRegistered      = apperr.New(apperr.KindNotFound, "NOT_REGISTERED", "participant is not registered")
	ErrNotInRegistration  = apperr.New(apperr.KindState, "NOT_IN_REGISTRATION", "tournament is no longer in registration")
	ErrNotOrganizer       = apperr.New(apperr.KindForbidden, "NOT_ORGANIZER", "only the organizer can do this")
	ErrQuorumNotMet       = apperr.New(apperr.KindState, "QUORUM_NOT_MET", "not enough participants to start")
)
