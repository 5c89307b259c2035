package webarchive

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/blacktop/webarchive/internal/utils"
	"github.com/blacktop/webarchive/pkg/bplist"
)

// Extractor drives §4.5's top-level sequence: decode, build the archive
// view, process resources and sub-frames, write the result to disk. It
// holds no state across calls; Extract may be called repeatedly.
type Extractor struct {
	Options Options
	Log     log.Interface
}

// NewExtractor returns an Extractor with the given options. logger may be
// nil, in which case apex/log's package-level log.Log is used.
func NewExtractor(opts Options, logger log.Interface) *Extractor {
	if logger == nil {
		logger = log.Log
	}
	return &Extractor{Options: opts, Log: logger}
}

// Extract reads the bplist at inputFile and materializes it under
// outputDir, which must already exist.
func (e *Extractor) Extract(inputFile, outputDir string) error {
	if fi, err := os.Stat(outputDir); err != nil || !fi.IsDir() {
		return wrap(OutputDirectoryMissing, errors.Errorf("output directory %q does not exist", outputDir))
	}

	f, err := os.Open(inputFile)
	if err != nil {
		return wrap(IoFailure, err)
	}
	defer f.Close()

	root, err := bplist.Decode(f)
	if err != nil {
		return wrap(InvalidFile, errors.Wrap(err, "failed to decode bplist"))
	}

	archive, err := FromValue(root)
	if err != nil {
		return err
	}

	return e.extractArchive(archive, outputDir, 0)
}

// extractArchive writes one archive level (the top-level WebArchive, or a
// SubframeArchive recursed into) to dir, returning once webpage.html has
// been written there. depth is the sub-frame nesting level, used only to
// indent the "extracting"/"entering" log lines so nested archives read as
// nested in the CLI output.
func (e *Extractor) extractArchive(a *WebArchive, dir string, depth int) error {
	utils.Indent(e.Log.Info, depth)(fmt.Sprintf("extracting %s -> %s", a.Main.URL, dir))

	doc, err := decodeText(a.Main.Data, a.Main.TextEncoding)
	if err != nil {
		return err
	}

	writer := NewResourceWriter(dir, e.Log)
	for _, sub := range a.SubResources {
		doc, err = e.processSubResource(writer, sub, a.Main.URL, doc)
		if err != nil {
			return err
		}
	}

	for i, sf := range a.Subframes {
		index := i + 1
		subdir := filepath.Join(dir, fmt.Sprintf("subframe_%d", index))
		if err := os.MkdirAll(subdir, 0o755); err != nil {
			return wrap(IoFailure, err)
		}

		utils.Indent(e.Log.Info, depth+1)(fmt.Sprintf("entering subframe_%d", index))
		subframe := &WebArchive{Main: sf.Main, SubResources: sf.SubResources, Subframes: sf.Children}
		if err := e.extractArchive(subframe, subdir, depth+1); err != nil {
			return err
		}

		target := fmt.Sprintf("subframe_%d/webpage.html", index)
		rewritten, found := rewriteSubframeURL(doc, sf.Main.URL, a.Main.URL, target)
		if !found {
			e.Log.WithField("url", sf.Main.URL.String()).Info("could not find sub-frame url in document")
		} else {
			doc = rewritten
		}
	}

	return e.writeDocument(doc, dir)
}

// processSubResource applies the JavaScript filter, otherwise writes the
// resource and rewrites its URL in doc, returning the (possibly rewritten)
// document.
func (e *Extractor) processSubResource(writer *ResourceWriter, sub *SubResource, mainURL *url.URL, doc string) (string, error) {
	mimeType := sub.MIMEType
	if mimeType == "" && len(sub.Data) > 0 {
		mimeType = mimeBase(mimetype.Detect(sub.Data).String())
	}

	if e.Options.IgnoreJavaScriptFiles && javaScriptMIMETypes[mimeType] {
		// Blank every textual form of the URL, not just the first one that
		// matches. Each pass removes at least one non-empty candidate, so
		// the loop ends.
		found := false
		for {
			rewritten, ok := RewriteResourceURL(doc, sub.URL, mainURL, "")
			if !ok {
				break
			}
			doc, found = rewritten, true
		}
		if !found {
			e.Log.WithField("url", sub.URL.String()).Debug("javascript resource not referenced in document")
		}
		return doc, nil
	}

	relative, ok, err := writer.Write(sub.URL, mainURL, sub.Data)
	if err != nil {
		return doc, err
	}
	if !ok {
		return doc, nil
	}

	rewritten, found := RewriteResourceURL(doc, sub.URL, mainURL, relative)
	if !found {
		e.Log.WithField("url", sub.URL.String()).Info("could not find resource url in document")
		return doc, nil
	}
	return rewritten, nil
}

func (e *Extractor) writeDocument(doc, dir string) error {
	path := filepath.Join(dir, "webpage.html")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return wrap(IoFailure, err)
	}
	return nil
}

// decodeText converts data from its declared encoding to a UTF-8 Go string
// per §4.2/§6.4: the main document is always re-emitted as UTF-8 regardless
// of source encoding.
func decodeText(data []byte, encodingName string) (string, error) {
	enc, err := htmlindex.Get(encodingName)
	if err != nil {
		return "", wrap(EncodingUnsupported, errors.Wrapf(err, "text encoding %q", encodingName))
	}
	out, err := enc.NewDecoder().String(string(data))
	if err != nil {
		return "", wrap(EncodingUnsupported, errors.Wrapf(err, "decoding text as %q", encodingName))
	}
	return out, nil
}

func mimeBase(s string) string {
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
