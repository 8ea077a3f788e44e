package service

import "errors"

var (
	ErrEmptyRoute         = errors.New("route has no destinations")
	ErrUnknownFacility    = errors.New("unknown facility")
	ErrNoSession          = errors.New("no navigation session")
	ErrSessionFinished    = errors.New("navigation session already finished")
	ErrNotArrived         = errors.New("not arrived at a destination")
	ErrNothingRecommended = errors.New("no destination is recommended")
	ErrInvalidChoice      = errors.New("invalid arrival choice")
	ErrNoEvent            = errors.New("facility has no event")
	ErrActiveNavigation   = errors.New("navigation already in progress")
	ErrNothingToResume    = errors.New("no remaining destinations to resume")
	ErrAlreadySelected    = errors.New("destination already selected")
	ErrSelectionFull      = errors.New("destination limit reached")
)
