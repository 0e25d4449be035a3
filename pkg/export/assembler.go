package export

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/materialkit/matdump/pkg/cache"
	"github.com/materialkit/matdump/pkg/encode"
	"github.com/materialkit/matdump/pkg/errors"
	"github.com/materialkit/matdump/pkg/scene"
	"github.com/materialkit/matdump/pkg/walk"
)

// DefaultCacheTTL is how long document fingerprints stay valid.
const DefaultCacheTTL = 30 * 24 * time.Hour

// Assembler orchestrates a batch export: one walker run and one output file
// per top-level material, in library order. Traversal cannot fail; write
// failures are recorded per material and the batch always completes.
type Assembler struct {
	Style    encode.Style
	MaxDepth int // <= 0 selects walk.DefaultMaxDepth
	Writer   FileWriter
	Cache    cache.Cache   // nil disables skip-unchanged
	CacheTTL time.Duration // <= 0 selects DefaultCacheTTL
	Logger   *log.Logger   // nil falls back to log.Default()
}

// Outcome is the result for one material.
type Outcome struct {
	Material string
	Filename string
	Skipped  bool // document unchanged since the last run
	Err      error
}

// Summary is the result of one batch run.
type Summary struct {
	RunID    string
	Library  string
	Outcomes []Outcome
	Elapsed  time.Duration
}

// Succeeded counts materials whose document was written.
func (s *Summary) Succeeded() int { return s.count(func(o Outcome) bool { return o.Err == nil && !o.Skipped }) }

// Skipped counts materials whose document was unchanged.
func (s *Summary) Skipped() int { return s.count(func(o Outcome) bool { return o.Skipped }) }

// Failed counts materials whose output file could not be written.
func (s *Summary) Failed() int { return s.count(func(o Outcome) bool { return o.Err != nil }) }

func (s *Summary) count(pred func(Outcome) bool) int {
	n := 0
	for _, o := range s.Outcomes {
		if pred(o) {
			n++
		}
	}
	return n
}

// Export runs the batch for every material in lib, in library order.
// It returns an error only when the library itself cannot enumerate its
// materials; no failure inside a single material's export propagates.
func (a *Assembler) Export(ctx context.Context, lib scene.Library) (*Summary, error) {
	materials, err := lib.Materials()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSceneLoad, err, "enumerate materials of %q", lib.Name())
	}
	return a.ExportSelection(ctx, lib.Name(), materials), nil
}

// ExportSelection runs the batch for an explicit material list, preserving
// the given order. Used for filtered and interactive exports.
func (a *Assembler) ExportSelection(ctx context.Context, library string, materials []scene.Node) *Summary {
	logger := a.Logger
	if logger == nil {
		logger = log.Default()
	}

	summary := &Summary{
		RunID:   uuid.NewString(),
		Library: library,
	}
	start := time.Now()
	walker := walk.New(a.Style, a.MaxDepth, logger)

	logger.Info("starting export", "run", summary.RunID, "library", library, "materials", len(materials), "style", a.Style.String())

	for _, m := range materials {
		outcome := a.exportOne(ctx, walker, library, m, logger)
		summary.Outcomes = append(summary.Outcomes, outcome)
	}

	summary.Elapsed = time.Since(start)
	logger.Info("export finished",
		"run", summary.RunID,
		"succeeded", summary.Succeeded(),
		"skipped", summary.Skipped(),
		"failed", summary.Failed(),
		"elapsed", summary.Elapsed.Round(time.Millisecond))
	return summary
}

func (a *Assembler) exportOne(ctx context.Context, walker *walk.Walker, library string, m scene.Node, logger *log.Logger) Outcome {
	sink := NewSink()
	walker.Walk(m, sink)
	doc := sink.Document()

	filename := Sanitize(m.Name()) + a.Style.Extension()
	outcome := Outcome{Material: m.Name(), Filename: filename}

	key := cache.DocKey(library, filename, a.Style.String())
	fingerprint := cache.Hash([]byte(doc))

	if a.Cache != nil {
		if cached, ok, cerr := a.Cache.Get(ctx, key); cerr != nil {
			logger.Debug("cache lookup failed", "material", m.Name(), "err", cerr)
		} else if ok && string(cached) == fingerprint {
			logger.Debug("document unchanged, skipping", "material", m.Name(), "file", filename)
			outcome.Skipped = true
			return outcome
		}
	}

	if err := a.Writer.Write(filename, []byte(doc)); err != nil {
		logger.Error("write failed", "material", m.Name(), "file", filename, "err", err)
		outcome.Err = err
		return outcome
	}

	if a.Cache != nil {
		ttl := a.CacheTTL
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		if cerr := a.Cache.Set(ctx, key, []byte(fingerprint), ttl); cerr != nil {
			logger.Debug("cache store failed", "material", m.Name(), "err", cerr)
		}
	}

	logger.Info("exported", "material", m.Name(), "file", filename, "bytes", len(doc))
	return outcome
}
