package fins

// chunk is one bounded sub-transfer of a bulk operation.
type chunk struct {
	origin uint32 // wire word address of the first element
	offset int    // element index into the caller's buffer
	length int    // element count, 1..max
}

// chunkPlan splits a bulk element count into ordered, size-bounded chunks
// covering the whole transfer contiguously: chunk i+1 starts where chunk i
// ended. The plan is pure arithmetic; it can be walked, reset and walked
// again independently of any transaction state.
type chunkPlan struct {
	origin uint32
	total  int
	max    int
	done   int
}

func newChunkPlan(origin uint32, total, max int) *chunkPlan {
	return &chunkPlan{origin: origin, total: total, max: max}
}

// next returns the following chunk, or ok == false once the plan is
// exhausted.
func (p *chunkPlan) next() (chunk, bool) {
	if p.done >= p.total {
		return chunk{}, false
	}
	length := p.total - p.done
	if length > p.max {
		length = p.max
	}
	c := chunk{
		origin: p.origin + uint32(p.done),
		offset: p.done,
		length: length,
	}
	p.done += length
	return c, true
}

// reset rewinds the plan to its first chunk.
func (p *chunkPlan) reset() {
	p.done = 0
}
