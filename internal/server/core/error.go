package core

// Error codes
const (
	ErrInvalidSkillLevel = "INVALID_SKILL_LEVEL"
	ErrInvalidFEN        = "INVALID_FEN"
	ErrGameOver          = "GAME_OVER"
	ErrNoLegalMoves      = "NO_LEGAL_MOVES"
	ErrEngineFailure     = "ENGINE_FAILURE"
	ErrRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrInvalidContent    = "INVALID_CONTENT_TYPE"
	ErrInvalidRequest    = "INVALID_REQUEST"
	ErrNotFound          = "NOT_FOUND"
	ErrInternalError     = "INTERNAL_ERROR"
)
