package client

import (
	log "github.com/sirupsen/logrus"

	"github.com/julian-ornelas/ai-open-source-prework/pkg/shared"
)

// Reconciler applies inbound protocol messages to the world under
// fixed merge rules per message kind. Its only side effects are
// world mutation, sprite cache population, viewport recomputation
// (inside the world), a render signal, and a login notification on
// join failure. Unknown message kinds are logged and dropped, never
// fatal.
type Reconciler struct {
	world    *World
	sprites  *SpriteCache
	login    LoginNotifier
	onRender func()
	joined   bool
}

func NewReconciler(world *World, sprites *SpriteCache, login LoginNotifier, onRender func()) *Reconciler {
	if login == nil {
		login = consoleLogin{}
	}
	if onRender == nil {
		onRender = func() {}
	}
	return &Reconciler{
		world:    world,
		sprites:  sprites,
		login:    login,
		onRender: onRender,
	}
}

// Joined reports whether a join_game success has been applied.
func (r *Reconciler) Joined() bool { return r.joined }

// Apply dispatches one decoded inbound message.
func (r *Reconciler) Apply(msg *shared.Message) {
	if msg == nil {
		return
	}
	switch msg.Action {
	case shared.ActionJoinGame:
		r.applyJoin(msg)
	case shared.ActionPlayerJoined:
		r.applyPlayerJoined(msg)
	case shared.ActionPlayersMoved:
		r.applyPlayersMoved(msg)
	case shared.ActionPlayerLeft:
		r.applyPlayerLeft(msg)
	default:
		log.Warnf("ignoring unknown message action %q", msg.Action)
	}
}

func (r *Reconciler) applyJoin(msg *shared.Message) {
	if !msg.Success {
		reason := msg.Error
		if reason == "" {
			reason = genericJoinError
		}
		r.login.JoinFailed(reason)
		return
	}
	r.world.Reset(msg.PlayerID, msg.Players, msg.Avatars)
	for _, avatar := range msg.Avatars {
		if err := r.sprites.Populate(avatar); err != nil {
			log.Errorf("caching avatar: %v", err)
		}
	}
	r.joined = true
	r.login.JoinSucceeded(msg.PlayerID)
	r.onRender()
}

func (r *Reconciler) applyPlayerJoined(msg *shared.Message) {
	if msg.Player == nil {
		log.Warn("player_joined without player payload")
		return
	}
	r.world.UpsertPlayer(msg.Player, msg.Avatar)
	if msg.Avatar != nil && !r.sprites.Has(msg.Avatar.Name) {
		if err := r.sprites.Populate(msg.Avatar); err != nil {
			log.Errorf("caching avatar: %v", err)
		}
	}
	r.onRender()
}

func (r *Reconciler) applyPlayersMoved(msg *shared.Message) {
	r.world.MergeMoved(msg.Players)
	r.onRender()
}

func (r *Reconciler) applyPlayerLeft(msg *shared.Message) {
	r.world.RemovePlayer(msg.PlayerID)
	r.onRender()
}
