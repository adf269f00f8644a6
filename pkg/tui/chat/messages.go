package chat

import (
	"github.com/killallgit/realty/pkg/chat"
)

// TurnUpdatedMsg is sent for every store mutation so each delta re-renders
type TurnUpdatedMsg struct {
	Turn chat.Turn
}

// ProfilesChangedMsg is sent after the agent profiles were reloaded
type ProfilesChangedMsg struct{}

type submitDoneMsg struct {
	err error
}

type attachDoneMsg struct {
	image *chat.Image
	err   error
}

type resetDoneMsg struct {
	err error
}
