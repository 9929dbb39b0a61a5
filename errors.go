package coauthornet

import "errors"

var (
	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("coauthornet: invalid configuration")

	// ErrNoProfiles is returned when an analysis has no usable profile.
	ErrNoProfiles = errors.New("coauthornet: no profiles")

	// ErrProfileNotFound is returned when a scholar ID is not stored.
	ErrProfileNotFound = errors.New("coauthornet: profile not found")

	// ErrStoreClosed is returned when operating on a closed engine.
	ErrStoreClosed = errors.New("coauthornet: store is closed")

	// ErrInvalidInput is returned for records that cannot be analyzed,
	// such as a profile without a name.
	ErrInvalidInput = errors.New("coauthornet: invalid input")

	// ErrFetchFailed is returned when every requested profile failed to fetch.
	ErrFetchFailed = errors.New("coauthornet: fetching profiles failed")
)
