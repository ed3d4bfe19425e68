package client

import log "github.com/sirupsen/logrus"

// genericJoinError stands in when the server rejects a join without
// saying why.
const genericJoinError = "failed to join game, please try again"

// LoginNotifier is the boundary to the login collaborator. It shows
// join/connection failures to the user and hands input focus to the
// game once the join succeeds; afterwards it is inert.
type LoginNotifier interface {
	JoinFailed(reason string)
	ConnectionFailed(err error)
	JoinSucceeded(playerID string)
}

// consoleLogin is the default notifier for the flag-driven client:
// it reports through the log instead of a form.
type consoleLogin struct{}

func (consoleLogin) JoinFailed(reason string) {
	log.Errorf("join rejected: %s", reason)
}

func (consoleLogin) ConnectionFailed(err error) {
	log.Errorf("connection failed: %v", err)
}

func (consoleLogin) JoinSucceeded(playerID string) {
	log.Infof("joined as %s", playerID)
}
