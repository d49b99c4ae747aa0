package mesh

import "time"

// Clip is a contiguous range of animation frames played at FPS frames per
// second. A non-repeating clip stops on its last frame.
type Clip struct {
	First  int
	Last   int
	FPS    float32
	Repeat bool
}

// Clamp limits the clip to a mesh with frameCount frames.
func (c Clip) Clamp(frameCount int) Clip {
	last := frameCount - 1
	if last < 0 {
		last = 0
	}
	if c.Last > last {
		c.Last = last
	}
	if c.First > c.Last {
		c.First = c.Last
	}
	if c.First < 0 {
		c.First = 0
	}
	return c
}

// Animator is the frame clock of one animated mesh.
type Animator struct {
	clip    Clip
	time    float32 // frames elapsed since the clip start
	current int     // offset of the current frame within the clip
}

// Play switches to clip without touching the clock.
func (a *Animator) Play(c Clip) {
	a.clip = c
}

// Reset restarts the clock from the first frame of the clip.
func (a *Animator) Reset() {
	a.time = 0
	a.current = 0
}

// Clip returns the clip being played.
func (a *Animator) Clip() Clip { return a.clip }

// Advance moves the clock forward by dt and reports whether the clip is
// still playing. Repeating clips always report true.
func (a *Animator) Advance(dt time.Duration) bool {
	a.time += a.clip.FPS * float32(dt.Seconds())

	span := a.clip.Last - a.clip.First
	a.current = int(a.time)

	if a.clip.Repeat {
		if a.current > span {
			a.time = 0
			a.current = 0
		}
		return true
	}

	if a.current >= span {
		a.time = float32(span)
		a.current = span
		return false
	}
	return true
}

// Frames returns the two mesh frames to blend and the blend factor.
func (a *Animator) Frames() (from, to int, t float32) {
	span := a.clip.Last - a.clip.First
	t = a.time - float32(a.current)
	if t > 1 {
		t = 1
	}
	from = a.clip.First + a.current
	to = a.clip.First + (a.current+1)%(span+1)
	return from, to, t
}
