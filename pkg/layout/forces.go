package layout

import "math"

// tickLocked applies one simulation step: the four forces accumulate into
// velocities, velocities decay, then positions integrate. Callers hold e.mu.
func (e *Engine) tickLocked() {
	e.applyLinkForce()
	e.applyChargeForce()
	e.applyCenterForce()

	decay := 1 - e.cfg.VelocityDecay
	for _, b := range e.bodies {
		if b.pinned {
			b.X, b.Y = b.pinX, b.pinY
			b.VX, b.VY = 0, 0
			continue
		}
		b.VX *= decay
		b.VY *= decay
		b.X += b.VX
		b.Y += b.VY
	}

	// Collision resolves on positions after integration so overlaps created
	// this tick are corrected this tick.
	e.applyCollideForce()
}

// applyLinkForce pulls each connected pair toward its rest length. Stiffness
// scales with edge correlation; the displacement is split between endpoints
// in proportion to their degree so hubs move less.
func (e *Engine) applyLinkForce() {
	for _, l := range e.links {
		dx := l.b.X + l.b.VX - l.a.X - l.a.VX
		dy := l.b.Y + l.b.VY - l.a.Y - l.a.VY
		dist := math.Hypot(dx, dy)
		if dist == 0 {
			dx, dy, dist = jiggle(), jiggle(), 1e-6
		}
		f := (dist - l.distance) / dist * e.alpha * l.strength
		fx, fy := dx*f, dy*f

		wa := float64(l.b.linkDeg+1) / float64(l.a.linkDeg+l.b.linkDeg+2)
		wb := 1 - wa
		if !l.b.pinned {
			l.b.VX -= fx * wb
			l.b.VY -= fy * wb
		}
		if !l.a.pinned {
			l.a.VX += fx * wa
			l.a.VY += fy * wa
		}
	}
}

// applyChargeForce repels every pair within the interaction radius with an
// inverse-distance falloff. The radius cutoff bounds the cost of the naive
// pair loop for the graph sizes we cap at.
func (e *Engine) applyChargeForce() {
	maxDist := e.cfg.ChargeRadius
	strength := -e.cfg.ChargeStrength
	for i := 0; i < len(e.bodies); i++ {
		a := e.bodies[i]
		for j := i + 1; j < len(e.bodies); j++ {
			b := e.bodies[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			dist2 := dx*dx + dy*dy
			if dist2 >= maxDist*maxDist {
				continue
			}
			if dist2 == 0 {
				dx, dy = jiggle(), jiggle()
				dist2 = dx*dx + dy*dy
			}
			f := strength * e.alpha / dist2
			fx, fy := dx*f, dy*f
			if !a.pinned {
				a.VX += fx
				a.VY += fy
			}
			if !b.pinned {
				b.VX -= fx
				b.VY -= fy
			}
		}
	}
}

// applyCenterForce nudges every body toward the viewport center. The target
// is the only thing Resize changes, so a resize never discards momentum.
func (e *Engine) applyCenterForce() {
	k := e.cfg.CenterStrength * e.alpha
	for _, b := range e.bodies {
		if b.pinned {
			continue
		}
		b.VX += (e.centerX - b.X) * k
		b.VY += (e.centerY - b.Y) * k
	}
}

// applyCollideForce separates overlapping pairs by their summed radii plus
// padding, moving positions directly. Pinned bodies push but are not pushed.
func (e *Engine) applyCollideForce() {
	pad := e.cfg.CollidePadding
	for i := 0; i < len(e.bodies); i++ {
		a := e.bodies[i]
		for j := i + 1; j < len(e.bodies); j++ {
			b := e.bodies[j]
			minDist := a.Radius + b.Radius + pad
			dx := b.X - a.X
			dy := b.Y - a.Y
			dist := math.Hypot(dx, dy)
			if dist >= minDist {
				continue
			}
			if dist == 0 {
				dx, dy, dist = jiggle(), jiggle(), 1e-6
			}
			overlap := (minDist - dist) / dist * 0.5
			mx, my := dx*overlap, dy*overlap
			switch {
			case a.pinned && b.pinned:
			case a.pinned:
				b.X += 2 * mx
				b.Y += 2 * my
			case b.pinned:
				a.X -= 2 * mx
				a.Y -= 2 * my
			default:
				a.X -= mx
				a.Y -= my
				b.X += mx
				b.Y += my
			}
		}
	}
}

// jiggle breaks exact coincidence deterministically enough for layout
// purposes; the magnitude only needs to be non-zero.
var jiggleSeed uint64 = 0x9e3779b97f4a7c15

func jiggle() float64 {
	jiggleSeed ^= jiggleSeed << 13
	jiggleSeed ^= jiggleSeed >> 7
	jiggleSeed ^= jiggleSeed << 17
	return (float64(jiggleSeed%2000)/1000 - 1) * 1e-6
}
