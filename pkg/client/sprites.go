package client

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/png"
	"strings"
	"sync"

	"github.com/faiface/pixel"
	"github.com/pkg/errors"

	"github.com/julian-ornelas/ai-open-source-prework/pkg/shared"
)

// SpriteCache memoizes decoded avatar frames per avatar name, facing
// and frame index. Population is lazy and happens at most once per
// avatar name; re-caching a known avatar is a no-op.
type SpriteCache struct {
	mu      sync.RWMutex
	avatars map[string]map[shared.Facing][]*pixel.Sprite
}

func NewSpriteCache() *SpriteCache {
	return &SpriteCache{
		avatars: make(map[string]map[shared.Facing][]*pixel.Sprite),
	}
}

// Populate decodes every frame of the avatar definition. Frames that
// fail to decode are dropped with an error only for the whole-avatar
// case; a known avatar name returns nil immediately.
func (c *SpriteCache) Populate(a *shared.Avatar) error {
	if a == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, known := c.avatars[a.Name]; known {
		return nil
	}
	frames := make(map[shared.Facing][]*pixel.Sprite, len(a.Frames))
	for facing, sources := range a.Frames {
		decoded := make([]*pixel.Sprite, 0, len(sources))
		for i, src := range sources {
			sprite, err := decodeFrame(src)
			if err != nil {
				return errors.Wrapf(err, "avatar %q facing %s frame %d", a.Name, facing, i)
			}
			decoded = append(decoded, sprite)
		}
		frames[facing] = decoded
	}
	c.avatars[a.Name] = frames
	return nil
}

// Has reports whether the avatar name is already cached.
func (c *SpriteCache) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.avatars[name]
	return ok
}

// Lookup finds the sprite for (avatar, facing, frame). The exact
// facing is tried first, which serves intermediate labels like
// "north-east" whenever the avatar ships frames for them. A west
// facing without its own frames falls through to east, reported via
// mirrored so the caller flips it at draw time; everything else falls
// back to south with the same frame index. ok false means the caller
// skips drawing this participant.
func (c *SpriteCache) Lookup(name string, facing shared.Facing, frame int) (sprite *pixel.Sprite, mirrored, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	frames, found := c.avatars[name]
	if !found {
		return nil, false, false
	}
	if s, ok := frameAt(frames[facing], frame); ok {
		return s, false, true
	}
	if facing == shared.FaceWest {
		if s, ok := frameAt(frames[shared.FaceEast], frame); ok {
			return s, true, true
		}
	}
	s, ok := frameAt(frames[shared.FaceSouth], frame)
	return s, false, ok
}

func frameAt(seq []*pixel.Sprite, frame int) (*pixel.Sprite, bool) {
	if len(seq) == 0 {
		return nil, false
	}
	if frame < 0 {
		frame = 0
	}
	return seq[frame%len(seq)], true
}

// decodeFrame turns one frame source (base64 PNG, optionally a data
// URL) into a sprite.
func decodeFrame(src string) (*pixel.Sprite, error) {
	if i := strings.IndexByte(src, ','); i >= 0 && strings.HasPrefix(src, "data:") {
		src = src[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(src)
	if err != nil {
		return nil, errors.Wrap(err, "decoding frame base64")
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "decoding frame image")
	}
	pic := pixel.PictureDataFromImage(img)
	return pixel.NewSprite(pic, pic.Bounds()), nil
}
