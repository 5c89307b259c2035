package webarchive

import (
	"net/url"
	"os"
	pathpkg "path"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/blacktop/webarchive/internal/utils"
)

// ResourceWriter implements §4.3: it maps a sub-resource's URL to a path
// under OutDir and writes its payload there.
type ResourceWriter struct {
	OutDir string
	Log    log.Interface
}

// NewResourceWriter returns a writer rooted at outdir. logger may be nil, in
// which case log.Log (apex/log's package-level default) is used.
func NewResourceWriter(outdir string, logger log.Interface) *ResourceWriter {
	if logger == nil {
		logger = log.Log
	}
	return &ResourceWriter{OutDir: outdir, Log: logger}
}

// Write persists u's payload under OutDir and returns the relative path it
// was written at. ok is false when the resource was silently skipped per
// §4.3 steps 1 and 5 — not an error, just nothing to rewrite.
func (w *ResourceWriter) Write(u *url.URL, main *url.URL, data []byte) (relative string, ok bool, err error) {
	if !strings.HasPrefix(u.Path, "/") {
		w.Log.WithField("url", u.String()).Debug("skipping resource whose path is not absolute")
		return "", false, nil
	}

	relative = strings.TrimPrefix(u.Path, main.Path)
	relative = utils.TrimLeadingSlash(relative)

	if relative == "" || strings.HasSuffix(relative, "/") {
		w.Log.WithField("url", u.String()).Debug("skipping directory-listing resource")
		return "", false, nil
	}

	relative = sanitizeRelativePath(relative)

	path := filepath.Join(w.OutDir, relative)
	if collides(path) {
		fresh := uuid.New().String()
		path = filepath.Join(w.OutDir, fresh)
		relative = fresh
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, wrap(IoFailure, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", false, wrap(IoFailure, err)
	}

	return relative, true, nil
}

// sanitizeRelativePath closes the path-traversal bug noted in §9: it
// resolves ".." segments against a virtual root so the result can never
// climb above OutDir, regardless of what the archive's URL contained.
func sanitizeRelativePath(relative string) string {
	cleaned := pathpkg.Clean("/" + relative)
	return strings.TrimPrefix(cleaned, "/")
}

// collides implements the §4.3 step-4 collision policy: path already
// exists (file or directory), or its parent already exists as a file.
func collides(path string) bool {
	if _, err := os.Stat(path); err == nil {
		return true
	}
	parent := filepath.Dir(path)
	if fi, err := os.Stat(parent); err == nil && !fi.IsDir() {
		return true
	}
	return false
}
