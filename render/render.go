// Package render draws the arena in 3D with raylib: a ground plane, one
// cube per creature scaled to its size, and one sphere per food item.
// The camera is fixed at startup from configuration.
package render

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/selection/components"
	"github.com/pthm-cable/selection/config"
	"github.com/pthm-cable/selection/sim"
)

const (
	foodRadius       = 0.5
	groundY          = -0.5
	maxTicksPerFrame = 10
)

// Renderer owns the camera and the HUD state for a graphical session.
type Renderer struct {
	camera rl.Camera3D
	bounds float32

	paused        bool
	ticksPerFrame float32
}

// New builds a renderer with the camera placed per configuration. The
// camera does not move during the run.
func New(cfg *config.Config) *Renderer {
	return &Renderer{
		camera: rl.Camera3D{
			Position: rl.Vector3{
				X: float32(cfg.Camera.Position[0]),
				Y: float32(cfg.Camera.Position[1]),
				Z: float32(cfg.Camera.Position[2]),
			},
			Target: rl.Vector3{
				X: float32(cfg.Camera.Target[0]),
				Y: float32(cfg.Camera.Target[1]),
				Z: float32(cfg.Camera.Target[2]),
			},
			Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
			Fovy:       float32(cfg.Camera.FovY),
			Projection: rl.CameraPerspective,
		},
		bounds:        float32(cfg.World.Size),
		ticksPerFrame: 1,
	}
}

// Paused reports whether the user paused the simulation.
func (r *Renderer) Paused() bool {
	return r.paused
}

// TicksPerFrame returns the current simulation speed setting.
func (r *Renderer) TicksPerFrame() int {
	return int(r.ticksPerFrame)
}

// HandleInput processes keyboard shortcuts.
func (r *Renderer) HandleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		r.paused = !r.paused
	}
}

// Draw renders one frame: the 3D scene followed by the HUD.
func (r *Renderer) Draw(s *sim.Sim) {
	rl.BeginDrawing()
	rl.ClearBackground(rl.RayWhite)

	rl.BeginMode3D(r.camera)

	rl.DrawPlane(
		rl.Vector3{X: 0, Y: groundY, Z: 0},
		rl.Vector2{X: r.bounds, Y: r.bounds},
		rl.DarkGray,
	)

	s.EachCreature(func(pos components.Position, genome components.Genome) {
		size := float32(genome.Size)
		rl.DrawCube(
			rl.Vector3{X: float32(pos.X), Y: float32(pos.Y), Z: float32(pos.Z)},
			size, size, size,
			rl.Red,
		)
	})

	s.EachFood(func(pos components.Position) {
		rl.DrawSphere(
			rl.Vector3{X: float32(pos.X), Y: float32(pos.Y), Z: float32(pos.Z)},
			foodRadius,
			rl.Blue,
		)
	})

	rl.EndMode3D()

	r.drawHUD(s)

	rl.EndDrawing()
}

// drawHUD renders the status line and the pause/speed controls.
func (r *Renderer) drawHUD(s *sim.Sim) {
	status := fmt.Sprintf("tick %d  alive %d  dead %d  food %d",
		s.Tick(), s.Population(), s.DeadCount(), s.FoodCount())
	rl.DrawText(status, 10, 10, 20, rl.DarkGray)

	if s.Extinct() {
		rl.DrawText("EXTINCT", 10, 36, 20, rl.Maroon)
	}

	label := "Pause"
	if r.paused {
		label = "Resume"
	}
	if gui.Button(rl.Rectangle{X: 10, Y: 64, Width: 90, Height: 28}, label) {
		r.paused = !r.paused
	}

	rl.DrawText("speed", 10, 100, 14, rl.Gray)
	r.ticksPerFrame = gui.SliderBar(
		rl.Rectangle{X: 10, Y: 118, Width: 150, Height: 20},
		"1", fmt.Sprintf("%d", maxTicksPerFrame),
		r.ticksPerFrame, 1, maxTicksPerFrame,
	)
	rl.DrawText(fmt.Sprintf("%dx", r.TicksPerFrame()), 170, 120, 16, rl.DarkGray)

	rl.DrawFPS(10, 150)
}
