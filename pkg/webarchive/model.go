// Package webarchive builds a typed view over a decoded bplist tree (see
// github.com/blacktop/webarchive/pkg/bplist) and extracts it to a directory
// of files suitable for offline viewing.
package webarchive

import (
	"net/url"

	"github.com/pkg/errors"

	"github.com/blacktop/webarchive/pkg/bplist"
)

// MainResource is a WebMainResource dictionary (§3.2, §4.2).
type MainResource struct {
	URL          *url.URL
	Data         []byte
	TextEncoding string
	FrameName    string
}

// SubResource is one entry of WebSubresources (§3.2, §4.2).
type SubResource struct {
	URL      *url.URL
	Data     []byte
	MIMEType string
}

// SubframeArchive is a nested archive found under WebSubframeArchives.
// Children is reserved: Safari archives encountered in practice are one
// level deep, but the model permits further nesting.
type SubframeArchive struct {
	Main         *MainResource
	SubResources []*SubResource
	Children     []*SubframeArchive
}

// WebArchive is the root of the decoded archive view.
type WebArchive struct {
	Main         *MainResource
	SubResources []*SubResource
	Subframes    []*SubframeArchive
}

// FromValue builds a WebArchive from a decoded bplist root value. It
// validates that WebMainResource is present; WebSubresources and
// WebSubframeArchives are optional and default to empty lists.
func FromValue(root bplist.Value) (*WebArchive, error) {
	archive, err := buildArchive(root)
	if err != nil {
		return nil, err
	}
	return &WebArchive{
		Main:         archive.Main,
		SubResources: archive.SubResources,
		Subframes:    toSubframes(archive.subframeValues),
	}, nil
}

// archiveFields is the shape shared by the top-level WebArchive and every
// nested SubframeArchive: both are "a dict with WebMainResource,
// WebSubresources, WebSubframeArchives".
type archiveFields struct {
	Main           *MainResource
	SubResources   []*SubResource
	subframeValues []bplist.Value
}

func buildArchive(root bplist.Value) (*archiveFields, error) {
	if root.Tag != bplist.TagDict || root.Dict == nil {
		return nil, wrap(MissingResource, errors.New("archive root is not a dictionary"))
	}

	mainVal, ok := root.Dict.Get("WebMainResource")
	if !ok {
		return nil, wrap(MissingResource, errors.New("WebMainResource is absent"))
	}
	main, err := parseMainResource(mainVal)
	if err != nil {
		return nil, err
	}

	var subs []*SubResource
	if subsVal, ok := root.Dict.Get("WebSubresources"); ok && subsVal.Tag == bplist.TagArray {
		for _, sv := range subsVal.Array {
			sub, err := parseSubResource(sv)
			if err != nil {
				return nil, err
			}
			subs = append(subs, sub)
		}
	}

	var subframes []bplist.Value
	if sfVal, ok := root.Dict.Get("WebSubframeArchives"); ok && sfVal.Tag == bplist.TagArray {
		subframes = sfVal.Array
	}

	return &archiveFields{Main: main, SubResources: subs, subframeValues: subframes}, nil
}

func toSubframes(values []bplist.Value) []*SubframeArchive {
	if len(values) == 0 {
		return nil
	}
	out := make([]*SubframeArchive, 0, len(values))
	for _, v := range values {
		fields, err := buildArchive(v)
		if err != nil {
			// A malformed sub-frame archive is dropped rather than
			// failing the whole extraction; its absence is no
			// different from an archive that never embedded one.
			continue
		}
		out = append(out, &SubframeArchive{
			Main:         fields.Main,
			SubResources: fields.SubResources,
			Children:     toSubframes(fields.subframeValues),
		})
	}
	return out
}

func parseMainResource(v bplist.Value) (*MainResource, error) {
	if v.Tag != bplist.TagDict || v.Dict == nil {
		return nil, wrap(MissingResource, errors.New("WebMainResource is not a dictionary"))
	}
	urlStr, ok := v.Dict.GetString("WebResourceURL")
	if !ok {
		return nil, wrap(MissingResource, errors.New("WebMainResource has no WebResourceURL"))
	}
	u, err := url.Parse(urlStr)
	if err != nil {
		return nil, wrap(InvalidFile, errors.Wrapf(err, "WebResourceURL %q", urlStr))
	}

	data := resourceData(v)
	encoding, ok := v.Dict.GetString("WebResourceTextEncodingName")
	if !ok || encoding == "" {
		encoding = "UTF-8"
	}
	frameName, _ := v.Dict.GetString("WebResourceFrameName")

	return &MainResource{
		URL:          u,
		Data:         data,
		TextEncoding: encoding,
		FrameName:    frameName,
	}, nil
}

func parseSubResource(v bplist.Value) (*SubResource, error) {
	if v.Tag != bplist.TagDict || v.Dict == nil {
		return nil, wrap(InvalidFile, errors.New("WebSubresources entry is not a dictionary"))
	}
	urlStr, ok := v.Dict.GetString("WebResourceURL")
	if !ok {
		return nil, wrap(InvalidFile, errors.New("sub-resource has no WebResourceURL"))
	}
	u, err := url.Parse(urlStr)
	if err != nil {
		return nil, wrap(InvalidFile, errors.Wrapf(err, "WebResourceURL %q", urlStr))
	}
	mimeType, _ := v.Dict.GetString("WebResourceMIMEType")

	return &SubResource{
		URL:      u,
		Data:     resourceData(v),
		MIMEType: mimeType,
	}, nil
}

func resourceData(v bplist.Value) []byte {
	dv, ok := v.Dict.Get("WebResourceData")
	if !ok || dv.Tag != bplist.TagData {
		return nil
	}
	return dv.Data
}
