package executor

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/histgo/accum"
	"github.com/hupe1980/histgo/blobstore"
	"github.com/hupe1980/histgo/codec"
	"github.com/hupe1980/histgo/executor/wire"
	"github.com/hupe1980/histgo/resource"
)

// Remote submits encoded task payloads to the worker side of a run.
//
// Submit may block for backpressure. The returned Future resolves to the
// worker's encoded response.
type Remote interface {
	Submit(ctx context.Context, payload []byte) (Future, error)
}

// Future resolves to one submitted task's encoded result.
type Future interface {
	// Await blocks until the response arrives or ctx ends.
	Await(ctx context.Context) ([]byte, error)
}

// RunLog records completed tasks so an interrupted run can resume without
// re-processing them. blobstore/s3 provides a DynamoDB-backed
// implementation.
//
// Committed results live in the run's result store; resuming therefore
// requires the same store and a codec that can read the original run's
// encoding.
type RunLog interface {
	// Completed returns the result store keys of tasks committed by
	// earlier attempts of this run, by task index.
	Completed(ctx context.Context) (map[int]string, error)

	// MarkDone commits one task's result key. Marking the same task again
	// is not an error.
	MarkDone(ctx context.Context, index int, key string) error
}

// DistributedOptions configure a Distributed executor beyond the common
// Options.
type DistributedOptions struct {
	Options

	// Codec encodes task specs and decodes run-log results. Responses
	// name their own codec. Defaults to codec.Default.
	Codec codec.Codec

	// Compression is applied to task spec frames. Defaults to Zstd.
	Compression wire.Compression

	// Resources bound the run: in-flight tasks, buffered result bytes,
	// fetch bandwidth. A zero MaxInFlight defaults to GOMAXPROCS.
	Resources resource.Config

	// Store is the result store spilled results are fetched from. It is
	// required when workers spill or when a RunLog is configured.
	Store blobstore.BlobStore

	// RunLog makes the run resumable: completed tasks are committed to
	// the log and skipped by later attempts. Requires Store.
	RunLog RunLog

	// Run identifies the run in spill keys. Leave empty for a generated
	// one; set it when resuming so spill keys stay in one namespace.
	Run string
}

// Distributed ships tasks to remote workers and folds their results as they
// stream back.
//
// Task specs travel as self-describing wire frames; results return inline
// or, when a worker spilled them, as a store key fetched through the run's
// fetch limiter. In-flight task count and buffered response bytes stay
// within the configured resource limits. Merging happens on the calling
// goroutine only.
type Distributed struct {
	remote    Remote
	processor string
	codec     codec.Codec
	comp      wire.Compression
	ctrl      *resource.Controller
	store     blobstore.BlobStore
	runLog    RunLog
	run       string
	opts      Options
}

var _ Executor = (*Distributed)(nil)

// NewDistributed creates an executor that runs the named processor on the
// remote's workers.
func NewDistributed(remote Remote, processor string, optFns ...func(*DistributedOptions)) *Distributed {
	o := DistributedOptions{
		Codec:       codec.Default,
		Compression: wire.Zstd,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.Codec == nil {
		o.Codec = codec.Default
	}
	if o.Resources.MaxInFlight <= 0 {
		o.Resources.MaxInFlight = int64(runtime.GOMAXPROCS(0))
	}

	return &Distributed{
		remote:    remote,
		processor: processor,
		codec:     o.Codec,
		comp:      o.Compression,
		ctrl:      resource.NewController(o.Resources),
		store:     o.Store,
		runLog:    o.RunLog,
		run:       o.Run,
		opts:      o.Options,
	}
}

// remoteOutcome carries one task's raw response from its submit goroutine
// to the merging caller. payload bytes stay accounted against the memory
// budget until the merge loop releases them.
type remoteOutcome struct {
	task    Task
	payload []byte // encoded response frame; nil for resumed or failed tasks
	key     string // result store key of a task resumed from the run log
	err     error  // submission or transport failure
}

// Execute implements Executor. The fn argument is unused: work runs on the
// remote's workers under the processor name configured at construction.
func (d *Distributed) Execute(ctx context.Context, tasks []Task, _ Func, identity accum.Value) (*Result, error) {
	if d.runLog != nil && d.store == nil {
		return nil, errors.New("run log requires a result store")
	}

	state := newStateHolder(d.opts.OnStateChange)
	start := time.Now()

	res := &Result{Value: identity, Stats: RunStats{Tasks: len(tasks)}}

	run := d.run
	if run == "" {
		run = newRunID()
	}

	var resumed map[int]string
	if d.runLog != nil {
		var err error
		if resumed, err = d.runLog.Completed(ctx); err != nil {
			return nil, fmt.Errorf("read run log: %w", err)
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make(chan remoteOutcome)

	state.set(StateDispatching)

	var inFlight sync.WaitGroup
	go func() {
		defer func() {
			inFlight.Wait()
			close(out)
		}()

		for _, t := range tasks {
			if key, ok := resumed[t.Index]; ok {
				select {
				case out <- remoteOutcome{task: t, key: key}:
				case <-runCtx.Done():
					return
				}
				continue
			}

			if err := d.ctrl.AcquireSlot(runCtx); err != nil {
				return
			}

			t := t
			inFlight.Add(1)
			go func() {
				defer inFlight.Done()
				defer d.ctrl.ReleaseSlot()

				payload, err := d.roundTrip(runCtx, run, t)
				select {
				case out <- remoteOutcome{task: t, payload: payload, err: err}:
				case <-runCtx.Done():
					d.ctrl.ReleaseMemory(int64(len(payload)))
				}
			}()
		}

		state.advance(StateDispatching, StateReducing)
	}()

	completed := bitset.New(uint(len(tasks)))

	for {
		select {
		case <-ctx.Done():
			cancel()
			d.drain(out)
			return finishCancelled(res, state, d.opts, start, ctx.Err())

		case oc, ok := <-out:
			if !ok {
				res.Stats.Completed = int(completed.Count())
				return finishDone(res, state, start)
			}

			value, failure, err := d.resolve(ctx, run, oc, &res.Stats)
			if err != nil {
				cancel()
				d.drain(out)
				if cerr := ctx.Err(); cerr != nil {
					return finishCancelled(res, state, d.opts, start, cerr)
				}
				return finishFailed(res, state, start, err)
			}

			if failure != nil {
				if ctx.Err() != nil {
					// The remote propagated the run's cancellation.
					cancel()
					d.drain(out)
					return finishCancelled(res, state, d.opts, start, ctx.Err())
				}

				res.Stats.Failed++
				res.Failures = append(res.Failures, failure)
				if d.opts.BestEffort {
					continue
				}

				cancel()
				d.drain(out)
				return finishFailed(res, state, start, failure)
			}

			if err := res.Value.Merge(value); err != nil {
				cancel()
				d.drain(out)
				return finishFailed(res, state, start, fmt.Errorf("merge task %d: %w", oc.task.Index, err))
			}

			completed.Set(uint(oc.task.Index))
			res.Stats.Completed = int(completed.Count())
		}
	}
}

// roundTrip submits one task and waits for its response, reserving the
// response bytes against the memory budget before handing them over.
func (d *Distributed) roundTrip(ctx context.Context, run string, t Task) ([]byte, error) {
	spec := wire.TaskSpec{Run: run, Processor: d.processor, Task: t.Index, Chunk: t.Chunk}

	payload, err := wire.Encode(d.codec, d.comp, spec)
	if err != nil {
		return nil, fmt.Errorf("encode task spec: %w", err)
	}

	fut, err := d.remote.Submit(ctx, payload)
	if err != nil {
		return nil, err
	}

	resp, err := fut.Await(ctx)
	if err != nil {
		return nil, err
	}

	if err := d.ctrl.AcquireMemory(ctx, int64(len(resp))); err != nil {
		return nil, err
	}
	return resp, nil
}

// resolve turns one outcome into a merged value or a task failure. The
// third return is a run-level error that aborts regardless of best-effort.
func (d *Distributed) resolve(ctx context.Context, run string, oc remoteOutcome, stats *RunStats) (accum.Value, *TaskError, error) {
	if oc.err != nil {
		return nil, newTaskError(oc.task, oc.err), nil
	}

	// Task committed by an earlier attempt: fetch its stored result.
	if oc.key != "" {
		data, err := d.fetch(ctx, oc.key, 0)
		if err != nil {
			return nil, nil, fmt.Errorf("fetch resumed task %d from %s: %w", oc.task.Index, oc.key, err)
		}
		stats.Resumed++
		stats.BytesIn += int64(len(data))

		v, err := accum.Decode(d.codec, data)
		if err != nil {
			return nil, nil, fmt.Errorf("decode resumed task %d: %w", oc.task.Index, err)
		}
		return v, nil, nil
	}

	var env wire.ResultEnvelope
	err := wire.Decode(oc.payload, &env)
	d.ctrl.ReleaseMemory(int64(len(oc.payload)))
	if err != nil {
		return nil, nil, fmt.Errorf("decode result of task %d: %w", oc.task.Index, err)
	}

	if env.Error != "" {
		return nil, newTaskError(oc.task, errors.New(env.Error)), nil
	}

	data := env.Value
	if env.StoreKey != "" {
		if d.store == nil {
			return nil, nil, fmt.Errorf("task %d spilled to %s but no result store is configured", oc.task.Index, env.StoreKey)
		}
		if data, err = d.fetch(ctx, env.StoreKey, env.Size); err != nil {
			return nil, nil, fmt.Errorf("fetch spilled task %d from %s: %w", oc.task.Index, env.StoreKey, err)
		}
		stats.Spilled++
	}
	stats.BytesIn += int64(len(data))

	v, err := accum.Decode(d.resultCodec(env.Codec), data)
	if err != nil {
		return nil, nil, fmt.Errorf("decode result of task %d: %w", oc.task.Index, err)
	}

	if d.runLog != nil {
		key := env.StoreKey
		if key == "" {
			// Inline results must reach the store before the commit, or a
			// resumed run would find a key with nothing behind it.
			key = spillKey(run, oc.task.Index)
			if err := d.store.Put(ctx, key, data); err != nil {
				return nil, nil, fmt.Errorf("persist result of task %d: %w", oc.task.Index, err)
			}
		}
		if err := d.runLog.MarkDone(ctx, oc.task.Index, key); err != nil {
			return nil, nil, fmt.Errorf("commit task %d to run log: %w", oc.task.Index, err)
		}
	}

	return v, nil, nil
}

// resultCodec resolves the codec a result envelope declares, falling back
// to the run's codec for envelopes that do not name one.
func (d *Distributed) resultCodec(name string) codec.Codec {
	if name == "" {
		return d.codec
	}
	if c, ok := codec.ByName(name); ok {
		return c
	}
	return d.codec
}

// fetch reads one stored result, throttled by the run's fetch limiter.
// wantSize, when known, guards against truncated fetches.
func (d *Distributed) fetch(ctx context.Context, key string, wantSize int64) ([]byte, error) {
	blob, err := d.store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	rc, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(resource.NewThrottledReader(ctx, d.ctrl, rc))
	if err != nil {
		return nil, err
	}

	if wantSize > 0 && int64(len(data)) != wantSize {
		return nil, fmt.Errorf("stored result is %d bytes, envelope says %d", len(data), wantSize)
	}
	return data, nil
}

// drain discards outstanding outcomes so submit goroutines can exit,
// releasing their memory reservations.
func (d *Distributed) drain(out <-chan remoteOutcome) {
	for oc := range out {
		d.ctrl.ReleaseMemory(int64(len(oc.payload)))
	}
}

// newRunID produces the spill-key namespace of one run.
func newRunID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return "run-" + hex.EncodeToString(b[:])
}
