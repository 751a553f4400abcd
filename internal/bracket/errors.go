package bracket

import "github.com/AdamBeresnev/bracket-engine/internal/apperr"

var (
	ErrInvalidParticipantCount = apperr.New(apperr.KindValidation, "INVALID_PARTICIPANT_COUNT",
		"participant count must be a power of two and at least 4")
	ErrInvalidFormat       = apperr.New(apperr.KindValidation, "INVALID_FORMAT", "unknown tournament format")
	ErrUnknownSeeding      = apperr.New(apperr.KindValidation, "UNKNOWN_SEEDING", "unknown seeding policy")
	ErrTiedScore           = apperr.New(apperr.KindValidation, "TIED_SCORE", "an elimination match needs a winner")
	ErrInvalidScore        = apperr.New(apperr.KindValidation, "INVALID_SCORE", "scores must not be negative")
	ErrMatchNotFound       = apperr.New(apperr.KindNotFound, "MATCH_NOT_FOUND", "match not found")
	ErrInvalidMatchState   = apperr.New(apperr.KindState, "INVALID_MATCH_STATE", "match is not active")
	ErrTournamentNotActive = apperr.New(apperr.KindState, "TOURNAMENT_NOT_ACTIVE", "tournament is not active")
	ErrNotCompleted        = apperr.New(apperr.KindState, "TOURNAMENT_NOT_COMPLETED", "tournament has not finished yet")

	// ErrInvariantViolation means the engine is about to corrupt the bracket.
	// It is a bug signal, never a user error.
	ErrInvariantViolation = apperr.New(apperr.KindInternal, "INTERNAL_INVARIANT_VIOLATION",
		"bracket invariant violated")
)
