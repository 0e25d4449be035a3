package export

import (
	"os"
	"path/filepath"

	"github.com/materialkit/matdump/pkg/errors"
)

// FileWriter persists one finished document. Implementations report failure
// through the error return; a write failure is a recordable outcome for that
// one material, never a reason to stop the batch.
type FileWriter interface {
	// Write stores content under the given filename. The filename is a bare
	// sanitized name plus extension; placement is the writer's concern.
	Write(filename string, content []byte) error
}

// DirWriter writes documents into a directory, creating it on first use.
type DirWriter struct {
	Dir string
}

// Write stores content at Dir/filename with 0644 permissions.
func (w DirWriter) Write(filename string, content []byte) error {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "create output directory %s", w.Dir)
	}
	path := filepath.Join(w.Dir, filename)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeWrite, err, "write %s", path)
	}
	return nil
}

var _ FileWriter = DirWriter{}
