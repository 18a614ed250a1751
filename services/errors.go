package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ошибки валидации и бизнес-правил
	ErrValidationFailed        = errors.New("validation failed")
	ErrRatingNameRequired      = errors.New("rating name is required")
	ErrRatingInvalidDateRange  = errors.New("rating end date must be after start date")
	ErrGameInvalidType         = errors.New("invalid game type provided")
	ErrGameInvalidOutcome      = errors.New("invalid game outcome provided")
	ErrGameNoSeats             = errors.New("game must have at least one seat")
	ErrGameInvalidRole         = errors.New("invalid seat role provided")
	ErrGameInvalidSlot         = errors.New("seat slot number must be positive")
	ErrGameNegativeFouls       = errors.New("seat fouls must not be negative")
	ErrGameDuplicateSlot       = errors.New("duplicate slot number in game")
	ErrGameDuplicatePlayer     = errors.New("player occupies more than one seat in game")
	ErrClubTitleRequired       = errors.New("club title is required")
	ErrFederationTitleRequired = errors.New("federation title is required")
	ErrNicknameRequired        = errors.New("nickname is required")
	ErrUnsupportedFileType     = errors.New("unsupported file content type")

	// Ошибки авторизации
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей
	ErrRatingNotFound     = errors.New("rating not found")
	ErrGameNotFound       = errors.New("game not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrClubNotFound       = errors.New("club not found")
	ErrFederationNotFound = errors.New("federation not found")

	// Ошибки конфликтов
	ErrRatingNameConflict      = errors.New("rating name is already in use by this owner")
	ErrFederationInUse         = errors.New("federation is referenced by existing clubs or games")
	ErrClubTitleConflict       = errors.New("club title is already in use")
	ErrFederationTitleConflict = errors.New("federation title is already in use")
	ErrNicknameConflict        = errors.New("nickname is already in use")
)
