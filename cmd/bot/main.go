package main

import (
	"flag"
	"fmt"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/julian-ornelas/ai-open-source-prework/pkg/shared"
)

// A headless client: joins the world and wanders, exercising the
// protocol without a window. Useful for soaking a server and for
// eyeballing traffic with -d.

var wanderDirections = []shared.Direction{
	shared.UP, shared.DOWN, shared.LEFT, shared.RIGHT,
	shared.UPLEFT, shared.UPRIGHT, shared.DOWNLEFT, shared.DOWNRIGHT,
}

func main() {
	addr := flag.String("addr", "localhost:8080", "address of server")
	protocol := flag.String("protocol", shared.ProtocolWS, fmt.Sprintf("network protocol to use. available %s | %s | %s",
		shared.ProtocolWS, shared.ProtocolTCP, shared.ProtocolKCP))
	username := flag.String("username", "bot", "name to join the world with")
	debug := flag.Bool("d", false, "enable debug logging")
	flag.Parse()
	if *debug {
		log.SetLevel(log.DebugLevel)
	}
	log.Fatal(wander(*protocol, *addr, *username))
}

func wander(protocol, addr, username string) error {
	log.Infof("dialing %s over %s", addr, protocol)
	conn, err := shared.Dial(protocol, addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.SendMessage(shared.JoinMessage(username)); err != nil {
		return err
	}

	go func() {
		for {
			msg, err := conn.ReadMessage()
			if err != nil {
				log.Fatalf("read: %v", err)
			}
			switch msg.Action {
			case shared.ActionJoinGame:
				if !msg.Success {
					log.Fatalf("join rejected: %s", msg.Error)
				}
				log.Infof("joined as %s among %d players", msg.PlayerID, len(msg.Players))
			default:
				log.Debugf("recv %s", msg)
			}
		}
	}()

	ping := time.Tick(10 * time.Second)
	rate := time.Tick(50 * time.Millisecond)
	moving := false
	heading := wanderDirections[rand.Intn(len(wanderDirections))]

	for {
		select {
		case <-ping:
			if err := conn.SendMessage(shared.PingMessage(time.Now())); err != nil {
				return err
			}
		case <-rate:
			// mostly keep doing what we were doing; occasionally
			// turn or stop, like a bored player
			switch rand.Intn(20) {
			case 0:
				if moving {
					moving = false
					if err := conn.SendMessage(shared.StopMessage()); err != nil {
						return err
					}
					continue
				}
				fallthrough
			case 1, 2:
				moving = true
				heading = wanderDirections[rand.Intn(len(wanderDirections))]
				if err := conn.SendMessage(shared.MoveMessage(heading)); err != nil {
					return err
				}
			default:
				if moving {
					// sustain the current heading at the client cadence
					if err := conn.SendMessage(shared.MoveMessage(heading)); err != nil {
						return err
					}
				}
			}
		}
	}
}
