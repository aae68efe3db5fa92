package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/teltech/logger"

	"github.com/dkkinyua/easyetl"
	"github.com/dkkinyua/easyetl/entity"
	"github.com/dkkinyua/easyetl/extract"
	"github.com/dkkinyua/easyetl/load"
	"github.com/dkkinyua/easyetl/pkg/notify"
	"github.com/dkkinyua/easyetl/transform"
)

// Config holds the Runner options. All fields are optional.
type Config struct {
	// DB is used for db sources, and for db sinks when the spec leaves
	// connUrl empty.
	DB easyetl.DBConfig

	// NotifyChan receives an event per pipeline stage when set.
	NotifyChan notify.Chan

	// Log enables logging of the notification events.
	Log bool
}

// Runner executes pipeline specs synchronously, one call at a time. It holds
// no state between runs; each run opens and closes its own resources.
type Runner struct {
	cfg Config
	log *logger.Log
}

func New(cfg Config) *Runner {
	r := &Runner{cfg: cfg}
	if cfg.Log {
		r.log = logger.New()
	}
	return r
}

// RunResult summarizes one completed pipeline run.
type RunResult struct {
	RunId         string
	PipelineId    string
	RowsExtracted int
	RowsLoaded    int
	Duration      time.Duration
}

// Run executes the spec end to end: extract, transforms in order, sink. The
// dataset lives entirely in memory between the stages.
func (r *Runner) Run(ctx context.Context, spec *Spec) (*RunResult, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w, details: nil spec", ErrInvalidSpec)
	}

	start := time.Now()
	result := &RunResult{
		RunId:      uuid.New().String(),
		PipelineId: spec.Id(),
	}
	notifier := notify.New(r.cfg.NotifyChan, r.log, "runner", result.RunId, result.PipelineId)

	frame, err := r.runSource(ctx, spec.Source)
	if err != nil {
		notifier.Notify(notify.LevelError, "source %s failed: %v", spec.Source.Type, err)
		return nil, err
	}
	result.RowsExtracted = frame.NumRows()
	notifier.Notify(notify.LevelInfo, "extracted %d rows from %s source", result.RowsExtracted, spec.Source.Type)

	ds := entity.Dataset(frame)
	for i, t := range spec.Transforms {
		if ds, err = applyTransform(ds, t); err != nil {
			notifier.Notify(notify.LevelError, "transform %d (%s) failed: %v", i, t.Type, err)
			return nil, err
		}
		notifier.Notify(notify.LevelInfo, "applied transform %d (%s), %d rows remain", i, t.Type, ds.NumRows())
	}

	if err = r.runSink(ctx, ds, spec.Sink); err != nil {
		notifier.Notify(notify.LevelError, "sink %s failed: %v", spec.Sink.Type, err)
		return nil, err
	}

	result.RowsLoaded = ds.NumRows()
	result.Duration = time.Since(start)
	notifier.Notify(notify.LevelInfo, "loaded %d rows to %s sink in %v", result.RowsLoaded, spec.Sink.Type, result.Duration)
	return result, nil
}

func (r *Runner) runSource(ctx context.Context, src Source) (*entity.Frame, error) {
	switch src.Type {
	case SourceCSV:
		return extract.FromCSV(src.Path)
	case SourceJSON:
		return extract.FromJSON(src.Path)
	case SourceAPI:
		doc, err := extract.FromAPI(ctx, src.URL)
		if err != nil {
			return nil, err
		}
		return extract.FrameFromJSONBytes([]byte(doc.Raw))
	case SourceDB:
		return extract.FromDB(ctx, r.cfg.DB, src.Query)
	default:
		return nil, fmt.Errorf("%w, details: unknown source type %q", ErrInvalidSpec, src.Type)
	}
}

func (r *Runner) runSink(ctx context.Context, ds entity.Dataset, sink Sink) error {
	switch sink.Type {
	case SinkCSV:
		return load.ToCSV(ds, sink.Path, sink.Overwrite)
	case SinkJSON:
		return load.ToJSON(ds, sink.Path, sink.Overwrite)
	case SinkExcel:
		return load.ToExcel(ds, sink.Path, sink.Overwrite)
	case SinkDB:
		connURL := sink.ConnURL
		if connURL == "" {
			connURL = r.cfg.DB.ConnString()
		}
		return load.ToDB(ctx, ds, sink.Table, connURL)
	default:
		return fmt.Errorf("%w, details: unknown sink type %q", ErrInvalidSpec, sink.Type)
	}
}

func applyTransform(ds entity.Dataset, t TransformSpec) (entity.Dataset, error) {
	switch t.Type {
	case TransformDropMissing:
		return transform.DropMissing(ds, transform.DropMissingConfig{
			Columns: t.Columns,
			Axis:    transform.Axis(t.Axis),
			How:     transform.How(t.How),
		})
	case TransformReplace:
		return transform.Replace(ds, t.Old, t.New)
	case TransformExplode:
		return transform.Explode(ds, t.Columns)
	case TransformChangeType:
		return transform.ChangeType(ds, transform.Kind(t.TargetType))
	case TransformParseDatetime:
		return transform.ParseDatetime(ds, t.Column)
	case TransformRename:
		return transform.Rename(ds, transform.RenameConfig{
			Columns:   t.Mapping,
			OnUnknown: transform.OnUnknown(t.OnUnknown),
		})
	default:
		return nil, fmt.Errorf("%w, details: unknown transform type %q", ErrInvalidSpec, t.Type)
	}
}
