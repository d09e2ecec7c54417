package executor

import (
	"context"
	"fmt"

	"github.com/hupe1980/histgo/accum"
	"github.com/hupe1980/histgo/blobstore"
	"github.com/hupe1980/histgo/codec"
	"github.com/hupe1980/histgo/columns"
	"github.com/hupe1980/histgo/executor/wire"
)

const defaultSpillThreshold = 1 << 20

// WorkerOptions configure a Worker.
type WorkerOptions struct {
	// Codec encodes result envelopes and accumulator payloads. Defaults
	// to codec.Default. Incoming task specs name their own codec and are
	// decoded with that, regardless of this setting.
	Codec codec.Codec

	// Compression is applied to result frames. Defaults to Zstd.
	Compression wire.Compression

	// Store receives results larger than SpillThreshold. Without a store
	// every result returns inline.
	Store blobstore.BlobStore

	// SpillThreshold is the inline size limit in bytes once a store is
	// configured. Defaults to 1 MiB.
	SpillThreshold int
}

// Worker is the remote side of a distributed run: it decodes task specs,
// runs the named processor over its own source, and returns encoded result
// envelopes. Results above the spill threshold go to the worker's store and
// return as a key.
//
// A Worker is safe for concurrent Handle calls as long as its source is.
type Worker struct {
	source columns.Source
	codec  codec.Codec
	comp   wire.Compression
	store  blobstore.BlobStore
	spill  int
}

// NewWorker creates a worker over the given source.
func NewWorker(source columns.Source, optFns ...func(*WorkerOptions)) *Worker {
	o := WorkerOptions{
		Codec:          codec.Default,
		Compression:    wire.Zstd,
		SpillThreshold: defaultSpillThreshold,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.Codec == nil {
		o.Codec = codec.Default
	}
	if o.SpillThreshold <= 0 {
		o.SpillThreshold = defaultSpillThreshold
	}

	return &Worker{
		source: source,
		codec:  o.Codec,
		comp:   o.Compression,
		store:  o.Store,
		spill:  o.SpillThreshold,
	}
}

// Handle runs one encoded task spec and returns the encoded result
// envelope.
//
// Task failures travel inside the envelope. Handle itself only fails when
// the payload cannot be decoded or the response cannot be encoded, which a
// coordinator must treat as a transport error.
func (w *Worker) Handle(ctx context.Context, payload []byte) ([]byte, error) {
	var spec wire.TaskSpec
	if err := wire.Decode(payload, &spec); err != nil {
		return nil, fmt.Errorf("decode task spec: %w", err)
	}

	env := w.run(ctx, spec)

	resp, err := wire.Encode(w.codec, w.comp, env)
	if err != nil {
		return nil, fmt.Errorf("encode result of task %d: %w", spec.Task, err)
	}
	return resp, nil
}

// run executes one spec and builds its result envelope.
func (w *Worker) run(ctx context.Context, spec wire.TaskSpec) wire.ResultEnvelope {
	env := wire.ResultEnvelope{Task: spec.Task, Codec: w.codec.Name()}

	proc, err := newProcessor(spec.Processor)
	if err != nil {
		env.Error = err.Error()
		return env
	}

	if w.source == nil {
		env.Error = "worker has no source"
		return env
	}

	batch, err := w.source.Read(ctx, spec.Chunk)
	if err != nil {
		env.Error = fmt.Sprintf("read %s: %v", spec.Chunk, err)
		return env
	}

	value, err := proc.Process(ctx, batch)
	if err != nil {
		env.Error = err.Error()
		return env
	}

	data, err := accum.Encode(w.codec, value)
	if err != nil {
		env.Error = fmt.Sprintf("encode result: %v", err)
		return env
	}

	if w.store != nil && len(data) > w.spill {
		key := spillKey(spec.Run, spec.Task)
		if err := w.store.Put(ctx, key, data); err != nil {
			env.Error = fmt.Sprintf("spill result to %s: %v", key, err)
			return env
		}

		env.StoreKey = key
		env.Size = int64(len(data))
		return env
	}

	env.Value = data
	return env
}

// spillKey names a spilled result blob within its run.
func spillKey(run string, task int) string {
	return fmt.Sprintf("%s/task-%06d.res", run, task)
}
