package client

import (
	"fmt"
	"image"
	_ "image/png"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/faiface/pixel"
	"github.com/faiface/pixel/pixelgl"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/julian-ornelas/ai-open-source-prework/pkg/shared"
)

const (
	maxBufferedUpdates  = 30
	maxBufferedRequests = 30
)

// movementKeys maps recognized movement keys to cardinal directions.
// Every other key is ignored entirely.
var movementKeys = map[pixelgl.Button]shared.Direction{
	pixelgl.KeyUp:    shared.UP,
	pixelgl.KeyW:     shared.UP,
	pixelgl.KeyDown:  shared.DOWN,
	pixelgl.KeyS:     shared.DOWN,
	pixelgl.KeyLeft:  shared.LEFT,
	pixelgl.KeyA:     shared.LEFT,
	pixelgl.KeyRight: shared.RIGHT,
	pixelgl.KeyD:     shared.RIGHT,
}

// Client wires the connection, the reconciler, the input state
// machine and the renderer together and owns the window loop. One
// reader goroutine feeds updates, one writer goroutine drains
// requests; everything that mutates the world runs on the loop, so
// every mutation completes before the next render observes it.
type Client struct {
	cfg *Config
	win *pixelgl.Window

	connMu sync.Mutex
	conn   shared.Conn

	world    *World
	sprites  *SpriteCache
	rec      *Reconciler
	input    *inputTracker
	renderer *Renderer
	ping     *keepalive
	login    LoginNotifier

	requests  chan *shared.Message
	updates   chan *shared.Message
	errc      chan error
	reconns   chan shared.Conn
	worldPics chan pixel.Picture
	rejected  chan string

	dirty     atomic.Bool
	latencyNs atomic.Int64
}

func NewClient(cfg *Config, win *pixelgl.Window, conn shared.Conn, login LoginNotifier) *Client {
	if login == nil {
		login = consoleLogin{}
	}
	c := &Client{
		cfg:       cfg,
		win:       win,
		conn:      conn,
		login:     login,
		world:     NewWorld(cfg.WorldWidth, cfg.WorldHeight),
		sprites:   NewSpriteCache(),
		requests:  make(chan *shared.Message, maxBufferedRequests),
		updates:   make(chan *shared.Message, maxBufferedUpdates),
		errc:      make(chan error, 16),
		reconns:   make(chan shared.Conn, 1),
		worldPics: make(chan pixel.Picture, 1),
		rejected:  make(chan string, 1),
	}
	markDirty := func() { c.dirty.Store(true) }
	c.rec = NewReconciler(c.world, c.sprites, joinWatcher{inner: login, rejected: c.rejected}, markDirty)
	c.input = newInputTracker(cfg.SendPeriod, c.requests, markDirty)
	c.renderer = NewRenderer(win, c.world, c.sprites, cfg.SpriteSize)
	c.ping = newKeepalive(cfg.PingPeriod, c.requests)
	return c
}

// Run drives the window loop until the window closes or the session
// fails before a successful join. Must be called under pixelgl.Run.
func (c *Client) Run() error {
	defer c.shutdown()

	c.world.SetCanvasSize(c.win.Bounds().W(), c.win.Bounds().H())

	go c.writeLoop()
	go c.readLoop(c.conn)
	go c.loadWorldImage()
	c.ping.start()

	c.requests <- shared.JoinMessage(c.cfg.Username)

	var (
		lastBounds    = c.win.Bounds()
		focused       = true
		reconnecting  = false
		redrawsNeeded = 0
		fps           = 0
		second        = time.NewTicker(time.Second)
	)
	defer second.Stop()

	for !c.win.Closed() {
		// swap in a reconnected session
		select {
		case conn := <-c.reconns:
			c.setConn(conn)
			reconnecting = false
			go c.readLoop(conn)
			c.requests <- shared.JoinMessage(c.cfg.Username)
			if focused {
				c.ping.start()
			}
		default:
		}

		if reason := c.drainRejected(); reason != "" {
			return fmt.Errorf("join rejected: %s", reason)
		}

		if err := c.drainErrors(&reconnecting); err != nil {
			return err
		}

		// apply server updates before anything reads the world
		c.drainUpdates()

		select {
		case pic := <-c.worldPics:
			c.renderer.SetWorldPicture(pic)
			c.dirty.Store(true)
		default:
		}

		if f := c.win.Focused(); f != focused {
			focused = f
			if focused {
				c.input.Focus()
				c.ping.start()
			} else {
				c.input.Blur()
				c.ping.stop()
			}
		}

		for btn, dir := range movementKeys {
			if c.win.JustPressed(btn) {
				c.input.KeyDown(dir)
			}
			if c.win.JustReleased(btn) {
				c.input.KeyUp(dir)
			}
		}

		if scroll := c.win.MouseScroll(); scroll.Y != 0 {
			c.world.AdjustZoom(scroll.Y)
			c.dirty.Store(true)
		}

		if b := c.win.Bounds(); b != lastBounds {
			lastBounds = b
			c.world.SetCanvasSize(b.W(), b.H())
			c.dirty.Store(true)
		}

		// render only after state-affecting events; both swap
		// buffers need the refreshed frame
		if c.dirty.Swap(false) {
			redrawsNeeded = 2
		}
		if redrawsNeeded > 0 {
			c.renderer.Frame()
			redrawsNeeded--
			fps++
		}

		select {
		case <-second.C:
			c.win.SetTitle(c.title(fps))
			fps = 0
		default:
		}

		c.win.Update()
	}
	return nil
}

func (c *Client) drainUpdates() {
	for {
		select {
		case msg := <-c.updates:
			c.rec.Apply(msg)
		default:
			return
		}
	}
}

func (c *Client) drainRejected() string {
	select {
	case reason := <-c.rejected:
		return reason
	default:
		return ""
	}
}

// drainErrors logs non-fatal errors and turns fatal ones into either
// a silent reconnect (after login) or a surfaced failure (before).
func (c *Client) drainErrors(reconnecting *bool) error {
	for {
		select {
		case err := <-c.errc:
			if !shared.IsFatal(err) {
				log.Errorf("error: %v", err)
				continue
			}
			if !c.rec.Joined() {
				c.login.ConnectionFailed(err)
				return err
			}
			if *reconnecting {
				continue
			}
			log.Warnf("connection lost, retrying every %s: %v", c.cfg.ReconnectDelay, err)
			*reconnecting = true
			c.ping.stop()
			c.input.Focus() // clears held keys without emitting to a dead conn
			go c.reconnectLoop()
		default:
			return nil
		}
	}
}

func (c *Client) readLoop(conn shared.Conn) {
	for {
		msg, err := conn.ReadMessage()
		if err != nil {
			c.errc <- shared.FatalErr(err)
			return
		}
		log.Debugf("recv %s", msg)
		if msg.Action == shared.ActionPong {
			c.latencyNs.Store(time.Now().UnixNano() - msg.SentAt)
			continue
		}
		c.updates <- msg
	}
}

func (c *Client) writeLoop() {
	for msg := range c.requests {
		conn := c.currentConn()
		if conn == nil {
			continue
		}
		log.Debugf("send %s", msg)
		if err := conn.SendMessage(msg); err != nil {
			c.errc <- errors.Wrapf(err, "sending %s", msg.Action)
		}
	}
}

// reconnectLoop redials forever at a fixed delay, then hands the new
// connection back to the window loop. Only reached after a
// successful login; pre-login failures surface to the login
// collaborator instead.
func (c *Client) reconnectLoop() {
	for {
		time.Sleep(c.cfg.ReconnectDelay)
		conn, err := shared.Dial(c.cfg.Protocol, c.cfg.Addr)
		if err != nil {
			log.Debugf("reconnect attempt failed: %v", err)
			continue
		}
		c.reconns <- conn
		return
	}
}

// loadWorldImage decodes the world background off the loop and
// delivers it like any other load-completion event. A missing image
// only means the background step is skipped.
func (c *Client) loadWorldImage() {
	if c.cfg.WorldImage == "" {
		return
	}
	f, err := os.Open(c.cfg.WorldImage)
	if err != nil {
		log.Warnf("world image unavailable: %v", err)
		return
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		log.Errorf("decoding world image: %v", err)
		return
	}
	c.worldPics <- pixel.PictureDataFromImage(img)
}

func (c *Client) title(fps int) string {
	status := "idle"
	if c.world.DisplayMoving(c.world.SelfID(), c.input.Moving()) {
		status = "moving"
	}
	latency := time.Duration(c.latencyNs.Load())
	return fmt.Sprintf("%s | %s (%s, %dms, %d fps)",
		c.cfg.WindowTitle, c.cfg.Username, status, latency.Milliseconds(), fps)
}

func (c *Client) setConn(conn shared.Conn) {
	c.connMu.Lock()
	old := c.conn
	c.conn = conn
	c.connMu.Unlock()
	if old != nil {
		old.Close()
	}
}

func (c *Client) currentConn() shared.Conn {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	return c.conn
}

func (c *Client) shutdown() {
	c.ping.stop()
	c.input.Focus() // stops the emitter without emitting
	if conn := c.currentConn(); conn != nil {
		conn.Close()
	}
}

// joinWatcher forwards login notifications and additionally delivers
// rejections to the window loop so a flag-driven session can exit.
type joinWatcher struct {
	inner    LoginNotifier
	rejected chan<- string
}

func (w joinWatcher) JoinFailed(reason string) {
	w.inner.JoinFailed(reason)
	select {
	case w.rejected <- reason:
	default:
	}
}

func (w joinWatcher) ConnectionFailed(err error) { w.inner.ConnectionFailed(err) }

func (w joinWatcher) JoinSucceeded(id string) { w.inner.JoinSucceeded(id) }
