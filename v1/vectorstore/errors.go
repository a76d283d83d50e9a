package vectorstore

import "errors"

// Configuration and usage errors. Backend execution errors (constraint
// violations, connectivity failures) propagate unwrapped from the driver;
// nothing is retried or swallowed by this package.
var (
	// ErrMalformedFilter is wrapped by every filter compilation failure:
	// invalid field names, unknown operators, wrong operator arity, or
	// operator/field syntax mixed at one level.
	ErrMalformedFilter = errors.New("vectorstore: malformed filter")

	// ErrConflictingMetadataOptions is returned when both MetadataColumns
	// and IgnoreMetadataColumns are configured.
	ErrConflictingMetadataOptions = errors.New("vectorstore: metadata columns and ignore metadata columns can not be used together")

	// ErrMissingColumn is returned at construction when a configured
	// column does not exist in the table.
	ErrMissingColumn = errors.New("vectorstore: column does not exist")

	// ErrColumnTypeMismatch is returned at construction when a configured
	// column has an incompatible type.
	ErrColumnTypeMismatch = errors.New("vectorstore: column type mismatch")

	// ErrUnsupportedDistanceStrategy is returned at construction for an
	// unknown distance strategy value.
	ErrUnsupportedDistanceStrategy = errors.New("vectorstore: unsupported distance strategy")

	// ErrImageEmbeddingUnsupported is returned by image operations when
	// the configured embedding service does not implement
	// ImageEmbeddingService.
	ErrImageEmbeddingUnsupported = errors.New("vectorstore: embedding service does not support image embedding")

	// ErrLengthMismatch is returned when the parallel input sequences of
	// an add operation differ in length.
	ErrLengthMismatch = errors.New("vectorstore: ids, contents, embeddings and metadatas must have the same length")
)

// IsMalformedFilterError checks if the error is a filter compilation error.
func IsMalformedFilterError(err error) bool {
	return errors.Is(err, ErrMalformedFilter)
}
