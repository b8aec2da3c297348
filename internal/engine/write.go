package engine

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/leapstack-labs/surfacegen/pkg/core"
)

// verifyTS checks that merged output still parses as TypeScript.
func verifyTS(path string, content []byte) error {
	loader := api.LoaderTS
	if strings.HasSuffix(path, ".tsx") {
		loader = api.LoaderTSX
	}

	result := api.Transform(string(content), api.TransformOptions{
		Loader:     loader,
		Sourcefile: path,
		LogLevel:   api.LogLevelSilent,
	})
	if len(result.Errors) == 0 {
		return nil
	}

	msg := result.Errors[0]
	loc := core.Location{File: path}
	if msg.Location != nil {
		loc.Line = msg.Location.Line
	}
	return core.Errorf(core.KindVerificationFailed, loc, "merged output does not parse: %s", msg.Text)
}

// writeAtomic replaces path through a temporary file in the same directory,
// keeping the permissions of an existing file.
func writeAtomic(path string, data []byte) error {
	st, err := stage(path, data)
	if err != nil {
		return err
	}
	if err := st.commit(); err != nil {
		st.discard()
		return err
	}
	return nil
}

// staged is a fully written temporary file waiting to replace its target.
type staged struct {
	path string
	tmp  string
}

// stage writes data to a temporary file next to path with the permissions of
// an existing file at path.
func stage(path string, data []byte) (st staged, err error) {
	loc := core.Location{File: path}
	perm := fs.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return staged{}, core.Wrap(err, core.KindWriteFailed, loc, "creating temporary file")
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return staged{}, core.Wrap(err, core.KindWriteFailed, loc, "writing temporary file")
	}
	if err = tmp.Close(); err != nil {
		return staged{}, core.Wrap(err, core.KindWriteFailed, loc, "closing temporary file")
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return staged{}, core.Wrap(err, core.KindWriteFailed, loc, "setting permissions")
	}
	return staged{path: path, tmp: tmp.Name()}, nil
}

func (s staged) commit() error {
	if err := os.Rename(s.tmp, s.path); err != nil {
		return core.Wrap(err, core.KindWriteFailed, core.Location{File: s.path}, "replacing file")
	}
	return nil
}

func (s staged) discard() {
	_ = os.Remove(s.tmp)
}

func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return core.Wrap(err, core.KindWriteFailed, core.Location{File: path}, "removing file")
	}
	return nil
}
