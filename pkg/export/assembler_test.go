package export

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/materialkit/matdump/pkg/cache"
	"github.com/materialkit/matdump/pkg/encode"
	"github.com/materialkit/matdump/pkg/errors"
	"github.com/materialkit/matdump/pkg/scene"
)

// memWriter captures written files in memory.
type memWriter struct {
	files map[string][]byte
	fail  map[string]error
}

func newMemWriter() *memWriter {
	return &memWriter{files: map[string][]byte{}, fail: map[string]error{}}
}

func (w *memWriter) Write(filename string, content []byte) error {
	if err := w.fail[filename]; err != nil {
		return err
	}
	w.files[filename] = append([]byte(nil), content...)
	return nil
}

func testAssembler(w FileWriter, c cache.Cache) *Assembler {
	return &Assembler{
		Style:  encode.StyleTaggedScalar,
		Writer: w,
		Cache:  c,
		Logger: log.New(io.Discard),
	}
}

func twoMaterialLibrary() *scene.MemLibrary {
	lib := scene.NewLibrary("props")
	lib.Add(scene.NewNode("m1", "old crate", "Material").Set("shine", 5))
	lib.Add(scene.NewNode("m2", "rusty barrel", "Material").Set("shine", 25))
	return lib
}

func TestExportWritesOneFilePerMaterial(t *testing.T) {
	w := newMemWriter()
	lib := twoMaterialLibrary()

	summary, err := testAssembler(w, nil).Export(context.Background(), lib)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if len(w.files) != 2 {
		t.Fatalf("wrote %d files, want 2: %v", len(w.files), w.files)
	}
	for _, name := range []string{"old_crate.yaml", "rusty_barrel.yaml"} {
		if _, ok := w.files[name]; !ok {
			t.Errorf("missing output file %q", name)
		}
	}
	if summary.Succeeded() != 2 || summary.Failed() != 0 {
		t.Errorf("summary = %d ok / %d failed, want 2/0", summary.Succeeded(), summary.Failed())
	}
	if summary.RunID == "" {
		t.Error("summary should carry a run ID")
	}
	if summary.Library != "props" {
		t.Errorf("library = %q, want props", summary.Library)
	}
}

func TestExportWriteFailureDoesNotStopBatch(t *testing.T) {
	w := newMemWriter()
	w.fail["old_crate.yaml"] = errors.New(errors.ErrCodeWrite, "disk full")
	lib := twoMaterialLibrary()

	summary, err := testAssembler(w, nil).Export(context.Background(), lib)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if summary.Failed() != 1 || summary.Succeeded() != 1 {
		t.Fatalf("summary = %d ok / %d failed, want 1/1", summary.Succeeded(), summary.Failed())
	}
	if _, ok := w.files["rusty_barrel.yaml"]; !ok {
		t.Error("the batch must continue past the failed material")
	}

	var failed *Outcome
	for i := range summary.Outcomes {
		if summary.Outcomes[i].Err != nil {
			failed = &summary.Outcomes[i]
		}
	}
	if failed == nil || failed.Material != "old crate" {
		t.Errorf("failed outcome = %+v, want old crate", failed)
	}
}

func TestExportLibraryFailure(t *testing.T) {
	lib := scene.NewLibrary("broken").
		FailMaterials(errors.New(errors.ErrCodeSceneLoad, "scene gone"))

	_, err := testAssembler(newMemWriter(), nil).Export(context.Background(), lib)
	if err == nil {
		t.Fatal("Export() should fail when the library cannot enumerate")
	}
	if !errors.Is(err, errors.ErrCodeSceneLoad) {
		t.Errorf("error code = %v, want ErrCodeSceneLoad", errors.GetCode(err))
	}
}

func TestExportRerunsAreByteIdentical(t *testing.T) {
	lib := twoMaterialLibrary()

	w1 := newMemWriter()
	if _, err := testAssembler(w1, nil).Export(context.Background(), lib); err != nil {
		t.Fatalf("first run: %v", err)
	}
	w2 := newMemWriter()
	if _, err := testAssembler(w2, nil).Export(context.Background(), lib); err != nil {
		t.Fatalf("second run: %v", err)
	}

	for name, content := range w1.files {
		if string(w2.files[name]) != string(content) {
			t.Errorf("%s differs between runs", name)
		}
	}
}

func TestExportSkipsUnchangedWithCache(t *testing.T) {
	lib := twoMaterialLibrary()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	w1 := newMemWriter()
	s1, err := testAssembler(w1, c).Export(context.Background(), lib)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if s1.Skipped() != 0 {
		t.Fatalf("first run skipped %d, want 0", s1.Skipped())
	}

	w2 := newMemWriter()
	s2, err := testAssembler(w2, c).Export(context.Background(), lib)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if s2.Skipped() != 2 {
		t.Errorf("second run skipped %d, want 2", s2.Skipped())
	}
	if len(w2.files) != 0 {
		t.Errorf("second run wrote %d files, want 0", len(w2.files))
	}

	// A changed material must be re-written.
	mats, _ := lib.Materials()
	mats[0].(*scene.MemNode).Set("shine", 99)

	w3 := newMemWriter()
	s3, err := testAssembler(w3, c).Export(context.Background(), lib)
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if s3.Skipped() != 1 || s3.Succeeded() != 1 {
		t.Errorf("third run = %d ok / %d skipped, want 1/1", s3.Succeeded(), s3.Skipped())
	}
}

func TestExportSelectionOrderAndNames(t *testing.T) {
	lib := twoMaterialLibrary()
	mats, _ := lib.Materials()

	w := newMemWriter()
	summary := testAssembler(w, nil).ExportSelection(context.Background(), "props", mats[1:])

	if len(summary.Outcomes) != 1 || summary.Outcomes[0].Material != "rusty barrel" {
		t.Fatalf("outcomes = %+v", summary.Outcomes)
	}
	if _, ok := w.files["rusty_barrel.yaml"]; !ok {
		t.Error("selection export should write the selected material only")
	}
}

func TestDirWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	w := DirWriter{Dir: dir}

	if err := w.Write("a.yaml", []byte("x: 1\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "a.yaml"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "x: 1\n" {
		t.Errorf("content = %q", data)
	}
}

func TestSink(t *testing.T) {
	s := NewSink()
	s.Append("a: 1\n")
	s.Append("b: 2\n")
	if s.Len() != 10 {
		t.Errorf("Len() = %d, want 10", s.Len())
	}
	if s.Document() != "a: 1\nb: 2\n" {
		t.Errorf("Document() = %q", s.Document())
	}
}
