// Package camera holds the perspective camera used for picking and the
// orbit controls advanced once per frame.
package camera

import (
	"sync"

	"cogentcore.org/core/math32"
)

// Config places the camera and sets its lens.
type Config struct {
	Position [3]float32  `yaml:"position"`
	Target   [3]float32  `yaml:"target"`
	FOV      float32     `yaml:"fov"` // vertical, degrees
	Aspect   float32     `yaml:"aspect"`
	Near     float32     `yaml:"near"`
	Far      float32     `yaml:"far"`
	Orbit    OrbitConfig `yaml:"orbit"`
}

func DefaultConfig() Config {
	return Config{
		Position: [3]float32{0, 0, 10},
		FOV:      45,
		Aspect:   16.0 / 9.0,
		Near:     0.1,
		Far:      1000,
		Orbit:    DefaultOrbitConfig(),
	}
}

// Perspective is a look-at perspective camera. Safe for concurrent use.
type Perspective struct {
	mu       sync.RWMutex
	position math32.Vector3
	target   math32.Vector3
	up       math32.Vector3
	fov      float32
	aspect   float32
	near     float32
	far      float32
}

// NewPerspective creates a camera looking from cfg.Position at cfg.Target.
func NewPerspective(cfg Config) *Perspective {
	c := &Perspective{
		position: math32.Vec3(cfg.Position[0], cfg.Position[1], cfg.Position[2]),
		target:   math32.Vec3(cfg.Target[0], cfg.Target[1], cfg.Target[2]),
		up:       math32.Vec3(0, 1, 0),
		fov:      cfg.FOV,
		aspect:   cfg.Aspect,
		near:     cfg.Near,
		far:      cfg.Far,
	}
	if c.fov <= 0 {
		c.fov = 45
	}
	if c.aspect <= 0 {
		c.aspect = 1
	}
	return c
}

func (c *Perspective) Position() math32.Vector3 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.position
}

func (c *Perspective) Target() math32.Vector3 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.target
}

func (c *Perspective) SetPosition(p math32.Vector3) {
	c.mu.Lock()
	c.position = p
	c.mu.Unlock()
}

func (c *Perspective) LookAt(target math32.Vector3) {
	c.mu.Lock()
	c.target = target
	c.mu.Unlock()
}

// SetAspect ignores non-positive ratios.
func (c *Perspective) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	c.aspect = aspect
	c.mu.Unlock()
}

// Far is the picking distance limit.
func (c *Perspective) Far() float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.far
}

// Ray returns the world-space ray leaving the camera through the given
// normalized device coordinates (x right, y up, both in [-1, 1]).
func (c *Perspective) Ray(ndcX, ndcY float32) math32.Ray {
	c.mu.RLock()
	defer c.mu.RUnlock()

	forward := c.target.Sub(c.position).Normal()
	right := forward.Cross(c.up).Normal()
	up := right.Cross(forward)

	h := math32.Tan(math32.DegToRad(c.fov) / 2)
	dir := forward.
		Add(right.MulScalar(ndcX * h * c.aspect)).
		Add(up.MulScalar(ndcY * h)).
		Normal()

	return math32.Ray{Origin: c.position, Dir: dir}
}

// NDC converts a pixel position inside a width x height viewport into
// normalized device coordinates.
func NDC(px, py, width, height float32) (float32, float32) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	return px/width*2 - 1, -(py/height)*2 + 1
}
