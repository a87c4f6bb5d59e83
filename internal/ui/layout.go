package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutExtraWideWidth is the threshold for extra-wide layouts.
	LayoutExtraWideWidth = 160
)

// Timing constants.
const (
	// DefaultUIInterval is how often the UI drains the inbox and redraws.
	DefaultUIInterval = 250 * time.Millisecond

	// FlashDuration is how long an action result stays in the header.
	FlashDuration = 4 * time.Second

	// UploadTimeout bounds a publish or ownership request.
	UploadTimeout = 5 * time.Second
)
