package physics

import (
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type CommandKind uint8

const (
	CommandForce CommandKind = iota
	CommandImpulse
	CommandTorque
	CommandSetVelocity
)

// Command is a request from gameplay code against one body. Linear holds
// the force, impulse or new velocity; Angular holds the torque or new
// angular velocity.
type Command struct {
	Kind    CommandKind
	Entity  uint64
	Linear  rl.Vector3
	Angular rl.Vector3
}

// CommandQueue collects commands between ticks. It has its own lock so
// scripts can push while a tick is running.
type CommandQueue struct {
	mu       sync.Mutex
	commands []Command
}

func (q *CommandQueue) Push(c Command) {
	q.mu.Lock()
	q.commands = append(q.commands, c)
	q.mu.Unlock()
}

// Drain returns every pending command in push order and empties the queue.
func (q *CommandQueue) Drain() []Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.commands
	q.commands = nil
	return out
}

// DropEntity discards pending commands for a despawned entity.
func (q *CommandQueue) DropEntity(entity uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.commands[:0]
	for _, c := range q.commands {
		if c.Entity != entity {
			kept = append(kept, c)
		}
	}
	q.commands = kept
}

func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.commands)
}

// apply folds a command into the body it targets.
func (c Command) apply(b *Body) {
	switch c.Kind {
	case CommandForce:
		b.force = rl.Vector3Add(b.force, c.Linear)
	case CommandTorque:
		b.torque = rl.Vector3Add(b.torque, c.Angular)
	case CommandImpulse:
		if b.IsDynamic() {
			b.LinearVelocity = rl.Vector3Add(b.LinearVelocity, rl.Vector3Scale(c.Linear, b.InvMass))
		}
	case CommandSetVelocity:
		b.LinearVelocity = c.Linear
		b.AngularVelocity = c.Angular
	}
}
