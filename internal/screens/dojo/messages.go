package dojo

import (
	"time"

	"github.com/abhisek/termdojo/internal/dojo"
)

// tagsLoadedMsg carries the tags offered on the setup screen.
type tagsLoadedMsg struct {
	Tags []string
	Err  error
}

// startedMsg is sent once the engine accepted a new session.
type startedMsg struct {
	State dojo.State
	Err   error
}

// stepMsg is the result of a draw or of feedback with its implicit draw.
type stepMsg struct {
	Step dojo.Step
	Err  error
}

// spinnerTickMsg animates the generation spinner.
type spinnerTickMsg time.Time
