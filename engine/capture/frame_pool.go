package capture

// PoolDepth is the number of frames in flight between the producer and the render loop.
const PoolDepth = 2

// framePool hands frames between the producer goroutine and the render loop.
// Every frame is in exactly one place: free, ready, held by the producer or held by the consumer.
type framePool struct {
	free  chan *Frame
	ready chan *Frame
}

func newFramePool(depth, width, height int) *framePool {
	p := &framePool{
		free:  make(chan *Frame, depth),
		ready: make(chan *Frame, depth),
	}
	for range depth {
		f := &Frame{}
		f.resize(width, height)
		p.free <- f
	}
	return p
}

// acquire returns a frame for the producer to fill. When no frame is free the oldest ready frame
// is recycled, so the producer never waits on a slow consumer. Returns nil if the consumer holds
// every frame.
func (p *framePool) acquire() *Frame {
	select {
	case f := <-p.free:
		return f
	default:
	}
	select {
	case f := <-p.ready:
		return f
	default:
		return nil
	}
}

// publish queues a filled frame for the consumer.
func (p *framePool) publish(f *Frame) {
	select {
	case p.ready <- f:
	default:
		p.recycle(f)
	}
}

// latest returns the newest ready frame, recycling any older ones, or nil.
func (p *framePool) latest() *Frame {
	var newest *Frame
	for {
		select {
		case f := <-p.ready:
			if newest != nil {
				p.recycle(newest)
			}
			newest = f
		default:
			return newest
		}
	}
}

// recycle returns a frame to the free list.
func (p *framePool) recycle(f *Frame) {
	select {
	case p.free <- f:
	default:
	}
}

// drain discards every queued frame.
func (p *framePool) drain() {
	for {
		select {
		case f := <-p.ready:
			p.recycle(f)
		default:
			return
		}
	}
}
