package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// attachInstanceLog appends log output to <outDir>/<stem>.log in addition to
// stderr. The returned func restores the previous output and closes the file.
func attachInstanceLog(outDir, stem string) (func(), error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	path := filepath.Join(outDir, stem+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening instance log: %w", err)
	}

	prevOut := logrus.StandardLogger().Out
	prevFormatter := logrus.StandardLogger().Formatter
	logrus.SetOutput(io.MultiWriter(prevOut, f))
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	return func() {
		logrus.SetOutput(prevOut)
		logrus.SetFormatter(prevFormatter)
		_ = f.Close()
	}, nil
}

// instanceStem is the file name of path without directory and extension.
func instanceStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
