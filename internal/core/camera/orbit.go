package camera

import (
	"sync"
	"time"

	"cogentcore.org/core/math32"
)

type OrbitConfig struct {
	AutoRotate bool `yaml:"auto_rotate"`
	// AutoRotateSpeed is in degrees per second.
	AutoRotateSpeed float32 `yaml:"auto_rotate_speed"`
	EnableDamping   bool    `yaml:"enable_damping"`
	DampingFactor   float32 `yaml:"damping_factor"`
	MinDistance     float32 `yaml:"min_distance"`
	MaxDistance     float32 `yaml:"max_distance"`
}

func DefaultOrbitConfig() OrbitConfig {
	return OrbitConfig{
		AutoRotateSpeed: 12,
		EnableDamping:   true,
		DampingFactor:   0.1,
		MinDistance:     0.5,
		MaxDistance:     500,
	}
}

const polarEpsilon = 1e-4

// OrbitControls rotate and dolly a camera around its target. Input methods
// only queue velocity; Update applies it.
type OrbitControls struct {
	mu     sync.Mutex
	camera *Perspective
	cfg    OrbitConfig

	azimuthVel float32
	polarVel   float32
	zoomScale  float32
}

func NewOrbitControls(cam *Perspective, cfg OrbitConfig) *OrbitControls {
	return &OrbitControls{camera: cam, cfg: cfg, zoomScale: 1}
}

func (o *OrbitControls) SetAutoRotate(enabled bool) {
	o.mu.Lock()
	o.cfg.AutoRotate = enabled
	o.mu.Unlock()
}

// Rotate queues an azimuth/polar rotation in radians.
func (o *OrbitControls) Rotate(azimuth, polar float32) {
	o.mu.Lock()
	o.azimuthVel += azimuth
	o.polarVel += polar
	o.mu.Unlock()
}

// Zoom queues a dolly; scale < 1 moves closer.
func (o *OrbitControls) Zoom(scale float32) {
	if scale <= 0 {
		return
	}
	o.mu.Lock()
	o.zoomScale *= scale
	o.mu.Unlock()
}

// Update applies auto-rotation and pending input, then damps velocities.
// It reports whether the camera moved.
func (o *OrbitControls) Update(dt time.Duration) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	azimuth := o.azimuthVel
	if o.cfg.AutoRotate {
		azimuth += math32.DegToRad(o.cfg.AutoRotateSpeed) * float32(dt.Seconds())
	}
	polar := o.polarVel
	zoom := o.zoomScale

	if azimuth == 0 && polar == 0 && zoom == 1 {
		return false
	}

	target := o.camera.Target()
	offset := o.camera.Position().Sub(target)
	radius := offset.Length()
	if radius == 0 {
		return false
	}
	theta := math32.Atan2(offset.X, offset.Z) + azimuth
	phi := math32.Acos(clamp(offset.Y/radius, -1, 1)) + polar
	phi = clamp(phi, polarEpsilon, math32.Pi-polarEpsilon)

	radius *= zoom
	if o.cfg.MinDistance > 0 {
		radius = math32.Max(radius, o.cfg.MinDistance)
	}
	if o.cfg.MaxDistance > 0 {
		radius = math32.Min(radius, o.cfg.MaxDistance)
	}

	sinPhi := math32.Sin(phi)
	next := math32.Vec3(
		radius*sinPhi*math32.Sin(theta),
		radius*math32.Cos(phi),
		radius*sinPhi*math32.Cos(theta),
	)
	o.camera.SetPosition(target.Add(next))

	if o.cfg.EnableDamping {
		keep := 1 - o.cfg.DampingFactor
		o.azimuthVel *= keep
		o.polarVel *= keep
		if math32.Abs(o.azimuthVel) < 1e-6 {
			o.azimuthVel = 0
		}
		if math32.Abs(o.polarVel) < 1e-6 {
			o.polarVel = 0
		}
	} else {
		o.azimuthVel = 0
		o.polarVel = 0
	}
	o.zoomScale = 1
	return true
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
