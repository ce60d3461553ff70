package store

import "errors"

// Sentinel errors returned by store methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrUnknownEntity is returned when an entity tag does not belong to the
	// closed synchronized kind set.
	ErrUnknownEntity = errors.New("unknown entity kind")

	// ErrUnknownMutationType is returned when a mutation-type tag is neither
	// upsert nor delete.
	ErrUnknownMutationType = errors.New("unknown mutation type")

	// ErrMalformedID is returned when an entity or operation identifier is
	// not a canonical UUID string.
	ErrMalformedID = errors.New("malformed uuid identifier")

	// ErrMalformedPayload is returned when a stored payload or an incoming
	// document cannot be decoded as a JSON object.
	ErrMalformedPayload = errors.New("malformed payload json")

	// ErrMutationNotFound is returned when a queue lookup by operation id
	// matches no row.
	ErrMutationNotFound = errors.New("pending mutation not found")

	// ErrDocumentNotFound is returned when a local document lookup matches
	// no row.
	ErrDocumentNotFound = errors.New("local document not found")
)

// Low-level database operation errors, wrapped around driver failures so
// call sites can classify them without depending on driver error types.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommittingTransaction is returned when committing an open
	// transaction fails. The transaction is considered rolled back.
	ErrCommittingTransaction = errors.New("failed to commit transaction")
)
