// Package errors provides structured domain errors for the DM screen.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Player errors
	CodePlayerEmptyName        Code = "PLAYER_EMPTY_NAME"
	CodePlayerNotFound         Code = "PLAYER_NOT_FOUND"
	CodePlayerInvalidXPAmount  Code = "PLAYER_INVALID_XP_AMOUNT"
	CodePlayerXPBelowZero      Code = "PLAYER_XP_BELOW_ZERO"
	CodeCounterEmptyName       Code = "COUNTER_EMPTY_NAME"
	CodeCounterNotFound        Code = "COUNTER_NOT_FOUND"
	CodeCounterInvalidStep     Code = "COUNTER_INVALID_STEP"
	CodePlayerInvalidTopAmount Code = "PLAYER_INVALID_TOP_AMOUNT"

	// Attack errors
	CodeAttackEmptyName        Code = "ATTACK_EMPTY_NAME"
	CodeAttackNotFound         Code = "ATTACK_NOT_FOUND"
	CodeAttackPositionOutRange Code = "ATTACK_POSITION_OUT_OF_RANGE"
	CodeAttackInvalidRoll      Code = "ATTACK_INVALID_DAMAGE_ROLL"

	// Character errors
	CodeCharacterEmptyName     Code = "CHARACTER_EMPTY_NAME"
	CodeCharacterNotFound      Code = "CHARACTER_NOT_FOUND"
	CodeCharacterInvalidHP     Code = "CHARACTER_INVALID_HP"
	CodeCharacterInvalidAmount Code = "CHARACTER_INVALID_AMOUNT"
	CodeEncounterInvalidImport Code = "ENCOUNTER_INVALID_IMPORT"
	CodeTurnNotActive          Code = "TURN_NOT_ACTIVE"

	// Passive damage errors
	CodePassiveEmptyName Code = "PASSIVE_DAMAGE_EMPTY_NAME"
	CodePassiveNotFound  Code = "PASSIVE_DAMAGE_NOT_FOUND"

	// Dice errors
	CodeDiceMissing     Code = "DICE_MISSING"
	CodeDiceInvalidSpec Code = "DICE_INVALID_SPEC"

	// Session errors
	CodeSessionNotReady          Code = "SESSION_NOT_READY"
	CodeSessionInvalidTransition Code = "SESSION_INVALID_TRANSITION"

	// Storage errors
	CodeStorageLoad    Code = "STORAGE_LOAD_FAILED"
	CodeStorageSave    Code = "STORAGE_SAVE_FAILED"
	CodeStorageCorrupt Code = "STORAGE_SNAPSHOT_CORRUPT"
)

// Kind groups codes by how callers are expected to react to them.
type Kind int

const (
	// KindInternal is an unexpected failure.
	KindInternal Kind = iota
	// KindValidation is bad input, rejected before any mutation.
	KindValidation
	// KindNotFound references an id that does not exist.
	KindNotFound
	// KindFailedPrecondition means the current state does not allow the operation.
	KindFailedPrecondition
	// KindStorage is a persistence medium failure.
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindFailedPrecondition:
		return "failed_precondition"
	case KindStorage:
		return "storage"
	default:
		return "internal"
	}
}

// Kind maps domain codes to their error kind.
func (c Code) Kind() Kind {
	switch c {
	// Validation - bad input
	case CodePlayerEmptyName,
		CodePlayerInvalidXPAmount,
		CodePlayerXPBelowZero,
		CodeCounterEmptyName,
		CodeCounterInvalidStep,
		CodePlayerInvalidTopAmount,
		CodeAttackEmptyName,
		CodeAttackInvalidRoll,
		CodeCharacterEmptyName,
		CodeCharacterInvalidHP,
		CodeCharacterInvalidAmount,
		CodeEncounterInvalidImport,
		CodePassiveEmptyName,
		CodeDiceMissing,
		CodeDiceInvalidSpec:
		return KindValidation

	// NotFound - referenced record or position doesn't exist
	case CodePlayerNotFound,
		CodeCounterNotFound,
		CodeAttackNotFound,
		CodeAttackPositionOutRange,
		CodeCharacterNotFound,
		CodePassiveNotFound:
		return KindNotFound

	// FailedPrecondition - session state doesn't allow operation
	case CodeSessionNotReady,
		CodeSessionInvalidTransition,
		CodeTurnNotActive:
		return KindFailedPrecondition

	// Storage - persistence medium
	case CodeStorageLoad,
		CodeStorageSave,
		CodeStorageCorrupt:
		return KindStorage

	default:
		return KindInternal
	}
}
