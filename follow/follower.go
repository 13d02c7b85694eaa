/*
Package follow moves objects along splines.

A Follower keeps a parameter T along a path and advances it once per tick.
At the ends of the path, the loop mode decides whether the follower stops,
jumps back to the start or reverses.

# BSD License

# Copyright (c) Norbert Pillmayer

All rights reserved.

Please refer to the license file for more information.
*/
package follow

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/npillmayer/arcspline"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'arcspline.follow'
func tracer() tracing.Trace {
	return tracing.Select("arcspline.follow")
}

// ErrNoPath indicates a follower without a path.
var ErrNoPath = errors.New("follower has no path")

// Path is what a follower needs from a spline. *spline.Spline implements it.
type Path interface {
	EvaluateStateless(t float64, constantSpeed bool) (mgl64.Vec3, error)
	EvaluateStateful(t *float64, dt float64) (mgl64.Vec3, error)
	Tangent(t float64, unstretch bool) (mgl64.Vec3, error)
}

// LoopMode decides what happens when a follower reaches an end of its path.
type LoopMode uint8

const (
	// None stops the follower at the end.
	None LoopMode = iota
	// Loop continues at the opposite end.
	Loop
	// Bounce reverses the direction of travel.
	Bounce
)

func (m LoopMode) String() string {
	switch m {
	case None:
		return "none"
	case Loop:
		return "loop"
	case Bounce:
		return "bounce"
	}
	return fmt.Sprintf("loopmode(%d)", m)
}

// Pose is a position with an orientation.
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// Follower travels along a path.
type Follower struct {
	T       float64  // position along the path, [0,1]
	Speed   float64  // increment of T per second
	Forward int      // +1 to follow the path forward, -1 backwards
	Loop    LoopMode // behaviour at the ends of the path
	Auto    bool     // advance T on Update; otherwise T is set by the client
	// SpeedCorrection makes the position proportional to T (piecewise
	// stretch correction).
	SpeedCorrection bool
	// Differential uses stateful differential stretch correction while
	// advancing. T is then kept in the differential parameter space.
	Differential bool
	// Rotate aligns the follower's Axis with the path's tangent.
	Rotate bool
	Axis   mgl64.Vec3 // local forward axis, defaults to +z

	path        Path
	dir         int
	orientation mgl64.Quat
}

// New creates a follower on path, at T = 0, looping forward with speed
// correction and rotation.
func New(path Path) *Follower {
	return &Follower{
		Speed:           0.1,
		Forward:         1,
		Loop:            Loop,
		SpeedCorrection: true,
		Rotate:          true,
		Axis:            arcspline.V(0, 0, 1),
		path:            path,
		dir:             1,
		orientation:     mgl64.QuatIdent(),
	}
}

// Direction returns the current direction of travel relative to Forward:
// 1, -1, or 0 for a follower which has stopped.
func (f *Follower) Direction() int {
	return f.dir
}

// Restart puts the follower at t, travelling in Forward direction again.
func (f *Follower) Restart(t float64) {
	f.T = arcspline.Clamp01(t)
	f.dir = 1
}

// Update advances the follower by a time step of dt seconds (if Auto is set)
// and returns its new pose.
func (f *Follower) Update(dt float64) (Pose, error) {
	if f.path == nil {
		return Pose{}, ErrNoPath
	}
	pos, err := f.advance(dt)
	if err != nil {
		return Pose{}, err
	}
	if f.Rotate {
		if err = f.align(); err != nil {
			return Pose{}, err
		}
	}
	return Pose{Position: pos, Orientation: f.orientation}, nil
}

func (f *Follower) advance(dt float64) (mgl64.Vec3, error) {
	if !f.Auto {
		return f.path.EvaluateStateless(f.T, f.SpeedCorrection)
	}
	step := f.Speed * dt * float64(f.dir*f.Forward)
	if !f.Differential {
		f.T += step
		f.wrap()
		return f.path.EvaluateStateless(f.T, f.SpeedCorrection)
	}
	pos, err := f.path.EvaluateStateful(&f.T, step)
	if err != nil || step == 0 {
		return pos, err
	}
	if f.T <= 0 || f.T >= 1 {
		f.wrap()
		return f.path.EvaluateStateful(&f.T, 0)
	}
	return pos, nil
}

// wrap applies the loop mode if T has left (0,1).
func (f *Follower) wrap() {
	if f.T >= 1 {
		switch f.Loop {
		case None:
			f.T, f.dir = 1, 0
		case Bounce:
			f.T, f.dir = 1, -f.Forward
		case Loop:
			f.T, f.dir = 0, f.Forward
		}
		tracer().Debugf("follower at end of path, %s, direction now %d", f.Loop, f.dir)
	} else if f.T <= 0 {
		switch f.Loop {
		case None:
			f.T, f.dir = 0, 0
		case Bounce:
			f.T, f.dir = 0, f.Forward
		case Loop:
			f.T, f.dir = 1, -f.Forward
		}
		tracer().Debugf("follower at start of path, %s, direction now %d", f.Loop, f.dir)
	}
}

// align turns Axis into the direction of the tangent. A vanishing tangent
// keeps the previous orientation.
func (f *Follower) align() error {
	tan, err := f.path.Tangent(f.T, f.SpeedCorrection && !f.Differential)
	if err != nil {
		return err
	}
	tan = tan.Mul(float64(f.Forward))
	if arcspline.Is0(tan.Len()) || arcspline.Is0(f.Axis.Len()) {
		return nil
	}
	f.orientation = mgl64.QuatBetweenVectors(f.Axis.Normalize(), tan.Normalize())
	return nil
}
