// Package env implements task environments the trainer evaluates
// populations in.
package env

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/umlaut/components"
	"github.com/pthm-cable/umlaut/config"
)

// Score metrics accepted in env.score.
const (
	ScoreSquared   = "squared"
	ScoreEuclidean = "euclidean"
)

// FollowParams holds the follow task parameters.
type FollowParams struct {
	SpawnMin, SpawnMax   float32 // horizontal spawn radius around the origin
	HeightMin, HeightMax float32
	TargetSpread         float32 // target placed within this distance of the origin per horizontal axis
	ForceScale           float32 // outputs are multiplied by this to get acceleration
	Gravity              float32
	Drag                 float32 // velocity fraction lost per second
	BrakeFactor          float32 // velocity fraction removed per second at full brake
	Score                string
}

// ParamsFromConfig converts the env config section.
func ParamsFromConfig(c config.EnvConfig) FollowParams {
	return FollowParams{
		SpawnMin:     float32(c.SpawnMin),
		SpawnMax:     float32(c.SpawnMax),
		HeightMin:    float32(c.HeightMin),
		HeightMax:    float32(c.HeightMax),
		TargetSpread: float32(c.TargetSpread),
		ForceScale:   float32(c.ForceScale),
		Gravity:      float32(c.Gravity),
		Drag:         float32(c.Drag),
		BrakeFactor:  float32(c.BrakeFactor),
		Score:        c.Score,
	}
}

// Follow is a point-mass task: every agent tries to end the evaluation
// window as close as possible to a shared target.
//
// Each agent is an ECS entity; ids maps population IDs to entities.
type Follow struct {
	params FollowParams
	target components.Position

	world *ecs.World
	ids   []ecs.Entity

	agentMapper *ecs.Map4[
		components.Position,
		components.Velocity,
		components.Force,
		components.Agent,
	]
	motionFilter *ecs.Filter3[
		components.Position,
		components.Velocity,
		components.Force,
	]

	posMap   *ecs.Map1[components.Position]
	velMap   *ecs.Map1[components.Velocity]
	forceMap *ecs.Map1[components.Force]
}

// NewFollow creates an empty follow environment. Agents are spawned by Reset.
func NewFollow(p FollowParams) (*Follow, error) {
	switch p.Score {
	case "":
		p.Score = ScoreSquared
	case ScoreSquared, ScoreEuclidean:
	default:
		return nil, fmt.Errorf("env: unknown score metric %q", p.Score)
	}
	if p.SpawnMax < p.SpawnMin || p.HeightMax < p.HeightMin {
		return nil, fmt.Errorf("env: spawn ranges must have min <= max")
	}

	world := ecs.NewWorld()
	return &Follow{
		params: p,
		world:  world,
		agentMapper: ecs.NewMap4[
			components.Position,
			components.Velocity,
			components.Force,
			components.Agent,
		](world),
		motionFilter: ecs.NewFilter3[
			components.Position,
			components.Velocity,
			components.Force,
		](world),
		posMap:   ecs.NewMap1[components.Position](world),
		velMap:   ecs.NewMap1[components.Velocity](world),
		forceMap: ecs.NewMap1[components.Force](world),
	}, nil
}

// Len returns the number of spawned agents.
func (f *Follow) Len() int {
	return len(f.ids)
}

// Target returns the goal position.
func (f *Follow) Target() components.Position {
	return f.target
}

// Position returns agent id's position.
func (f *Follow) Position(id int) components.Position {
	return *f.posMap.Get(f.ids[id])
}

// Reset respawns n agents on a horizontal ring around the origin with zero
// velocity and places the target. Draws happen in ID order.
func (f *Follow) Reset(rng *rand.Rand, n int) {
	if len(f.ids) != n {
		f.respawn(n)
	}

	p := f.params
	for _, e := range f.ids {
		theta := rng.Float64() * 2 * math.Pi
		radius := p.SpawnMin + rng.Float32()*(p.SpawnMax-p.SpawnMin)
		height := p.HeightMin + rng.Float32()*(p.HeightMax-p.HeightMin)

		pos := f.posMap.Get(e)
		*pos = components.Position{
			X: float32(math.Cos(theta)) * radius,
			Y: height,
			Z: float32(math.Sin(theta)) * radius,
		}
		*f.velMap.Get(e) = components.Velocity{}
		*f.forceMap.Get(e) = components.Force{}
	}

	f.target = components.Position{
		X: (rng.Float32()*2 - 1) * p.TargetSpread,
		Z: (rng.Float32()*2 - 1) * p.TargetSpread,
	}
}

// respawn replaces every agent entity with n fresh ones.
func (f *Follow) respawn(n int) {
	for _, e := range f.ids {
		f.agentMapper.Remove(e)
	}
	f.ids = f.ids[:0]

	for id := 0; id < n; id++ {
		pos := components.Position{}
		vel := components.Velocity{}
		force := components.Force{}
		agent := components.Agent{ID: id}
		f.ids = append(f.ids, f.agentMapper.NewEntity(&pos, &vel, &force, &agent))
	}
}

// Observe writes [own position, target position] into dst. Inputs beyond
// six are zeroed; a shorter dst receives a prefix.
func (f *Follow) Observe(id int, dst []float32) {
	pos := f.posMap.Get(f.ids[id])
	obs := [6]float32{pos.X, pos.Y, pos.Z, f.target.X, f.target.Y, f.target.Z}
	n := copy(dst, obs[:])
	clear(dst[n:])
}

// Actuate turns the first three outputs into acceleration. A fourth
// output, when present, drives the brake. NaN outputs are ignored.
func (f *Follow) Actuate(id int, action []float32) {
	force := f.forceMap.Get(f.ids[id])
	*force = components.Force{}

	axes := [3]*float32{&force.X, &force.Y, &force.Z}
	for i := 0; i < len(axes) && i < len(action); i++ {
		*axes[i] = finite(action[i]) * f.params.ForceScale
	}
	if len(action) > 3 {
		force.Brake = clamp01(finite(action[3]))
	}
}

// Advance integrates every agent with semi-implicit Euler.
func (f *Follow) Advance(dt float32) {
	p := f.params
	damp := max(0, 1-p.Drag*dt)

	query := f.motionFilter.Query()
	for query.Next() {
		pos, vel, force := query.Get()

		vel.X += force.X * dt
		vel.Y += (force.Y - p.Gravity) * dt
		vel.Z += force.Z * dt

		k := damp * max(0, 1-force.Brake*p.BrakeFactor*dt)
		vel.X *= k
		vel.Y *= k
		vel.Z *= k

		pos.X += vel.X * dt
		pos.Y += vel.Y * dt
		pos.Z += vel.Z * dt
	}
}

// Score returns the squared or euclidean distance from agent id to the
// target. Lower is better.
func (f *Follow) Score(id int) float64 {
	pos := f.posMap.Get(f.ids[id])
	dx := float64(pos.X - f.target.X)
	dy := float64(pos.Y - f.target.Y)
	dz := float64(pos.Z - f.target.Z)
	d2 := dx*dx + dy*dy + dz*dz
	if f.params.Score == ScoreEuclidean {
		return math.Sqrt(d2)
	}
	return d2
}

func finite(x float32) float32 {
	if x != x || x > math.MaxFloat32 || x < -math.MaxFloat32 {
		return 0
	}
	return x
}

func clamp01(x float32) float32 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	return x
}
