package scene

// Recorder is a headless RenderSurface that keeps the frames it receives.
type Recorder struct {
	// Limit caps the frames kept; older ones are dropped. Zero keeps all.
	Limit  int
	frames []Frame
	total  int
}

func (r *Recorder) Render(f Frame) error {
	r.total++
	r.frames = append(r.frames, f)
	if r.Limit > 0 && len(r.frames) > r.Limit {
		r.frames = r.frames[len(r.frames)-r.Limit:]
	}
	return nil
}

// Frames returns the kept frames, oldest first.
func (r *Recorder) Frames() []Frame { return r.frames }

// Total returns how many frames were rendered.
func (r *Recorder) Total() int { return r.total }

// Last returns the most recent frame.
func (r *Recorder) Last() (Frame, bool) {
	if len(r.frames) == 0 {
		return Frame{}, false
	}
	return r.frames[len(r.frames)-1], true
}
