package internal

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/xiaobogaga/jackc/util"
	"github.com/xiaobogaga/jackc/vm"
)

// Compile translates the single class read from rd into vm commands written to w.
func Compile(rd io.Reader, w io.Writer, opts ...EngineOption) error {
	engine := NewCompilationEngine(NewTokenizer(rd), NewVMWriter(w), opts...)
	return engine.CompileClass()
}

// CompileFile compiles one .jack file and writes the .vm file next to it, returning the
// output path. Nothing is written when the class fails to compile.
func CompileFile(path string, cfg Config) (string, error) {
	return compileFile(path, cfg, newLogger(cfg, ulid.Make().String()))
}

// CompilePath compiles path, a .jack file or a directory holding .jack files. Files are
// compiled one after another. By default the first failure stops the run, with
// KeepGoing every file is tried and all failures are returned together.
func CompilePath(path string, cfg Config) ([]string, error) {
	logger := newLogger(cfg, ulid.Make().String())
	files, err := jackFiles(path)
	if err != nil {
		return nil, err
	}
	logger.WithField("files", len(files)).Info("compiler: start compiling")
	var outputs []string
	var errs *multierror.Error
	for _, file := range files {
		output, err := compileFile(file, cfg, logger)
		if err != nil {
			if !cfg.KeepGoing {
				return outputs, err
			}
			errs = multierror.Append(errs, err)
			continue
		}
		outputs = append(outputs, output)
	}
	logger.WithField("outputs", len(outputs)).Info("compiler: done")
	return outputs, errs.ErrorOrNil()
}

func compileFile(path string, cfg Config, logger *logrus.Entry) (string, error) {
	logger = logger.WithField("file", path)
	logger.Debug("compiler: compiling file")
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	var buf bytes.Buffer
	engine := NewCompilationEngine(NewTokenizer(f), NewVMWriter(&buf), cfg.engineOptions(logger)...)
	err = engine.CompileClass()
	if err != nil {
		logger.WithError(err).Error("compiler: compile failed")
		return "", fmt.Errorf("%s: %w", path, err)
	}
	if expected := util.ClassNameOf(path); engine.ClassName() != expected {
		logger.Warnf("compiler: class %s is declared in a file named for %s", engine.ClassName(), expected)
	}
	if cfg.Verify {
		err = vm.Validate(bytes.NewReader(buf.Bytes()))
		if err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
	}
	output := util.VMOutputPath(path)
	err = os.WriteFile(output, buf.Bytes(), 0644)
	if err != nil {
		return "", err
	}
	logger.WithField("output", output).Info("compiler: wrote vm file")
	return output, nil
}

// jackFiles lists the .jack files to compile, sorted by name.
func jackFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if !util.IsJackFile(path) {
			return nil, fmt.Errorf("%s is not a jack file", path)
		}
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		// Skip not-jack file.
		if entry.IsDir() || !util.IsJackFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(path, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// newLogger returns the entry every message of one run is logged through.
func newLogger(cfg Config, run string) *logrus.Entry {
	logger := logrus.New()
	level, err := cfg.Level()
	if err == nil {
		logger.SetLevel(level)
	}
	return logger.WithField("run", run)
}
