package splatview

import "context"

// Decoder turns a raw splat buffer into a Scene. Implementations take
// ownership of buf; the caller must not touch it after the call.
type Decoder interface {
	DecodeScene(ctx context.Context, buf []byte) (*Scene, error)
	Close()
}

// NewDecoder resolves the decode strategy once at startup. With workers > 0
// decoding is offloaded to dedicated goroutines, otherwise it runs inline in
// the caller. Both variants produce identical output.
func NewDecoder(workers int) Decoder {
	if workers <= 0 {
		return inProcessDecoder{}
	}
	return newWorkerDecoder(workers)
}

type inProcessDecoder struct{}

func (inProcessDecoder) DecodeScene(_ context.Context, buf []byte) (*Scene, error) {
	return Decode(buf)
}

func (inProcessDecoder) Close() {}

type decodeJob struct {
	buf   []byte
	reply chan decodeResult
}

type decodeResult struct {
	scene *Scene
	err   error
}

// workerDecoder hands buffers to long-lived decode goroutines so a large
// decode never stalls the caller. Buffers and decoded arrays move through
// the channels by reference; ownership transfers with them, nothing is
// copied or shared.
type workerDecoder struct {
	jobs chan decodeJob
}

func newWorkerDecoder(n int) *workerDecoder {
	d := &workerDecoder{
		jobs: make(chan decodeJob),
	}
	for i := 0; i < n; i++ {
		go d.run()
	}
	return d
}

func (d *workerDecoder) run() {
	for job := range d.jobs {
		scene, err := Decode(job.buf)
		job.reply <- decodeResult{scene: scene, err: err}
	}
}

func (d *workerDecoder) DecodeScene(ctx context.Context, buf []byte) (*Scene, error) {
	reply := make(chan decodeResult, 1)

	select {
	case d.jobs <- decodeJob{buf: buf, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-reply:
		return res.scene, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *workerDecoder) Close() {
	close(d.jobs)
}
