package interview

import (
	"time"

	"github.com/google/uuid"
)

// Package-level for testability.
var (
	timeNow      = time.Now
	newSessionID = uuid.NewString
)
