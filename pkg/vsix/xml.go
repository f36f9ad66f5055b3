// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vsix

import (
	"encoding/xml"
	"path"
	"sort"
	"strings"
)

const (
	vsxNamespace       = "http://schemas.microsoft.com/developer/vsx-schema/2011"
	contentTypesNS     = "http://schemas.openxmlformats.org/package/2006/content-types"
)

type packageManifest struct {
	XMLName      xml.Name     `xml:"PackageManifest"`
	Version      string       `xml:"Version,attr"`
	Xmlns        string       `xml:"xmlns,attr"`
	Metadata     metadata     `xml:"Metadata"`
	Installation installation `xml:"Installation"`
	Dependencies struct{}     `xml:"Dependencies"`
	Assets       []asset      `xml:"Assets>Asset"`
}

type metadata struct {
	Identity     identity   `xml:"Identity"`
	DisplayName  string     `xml:"DisplayName"`
	Description  string     `xml:"Description"`
	Tags         string     `xml:"Tags"`
	Categories   string     `xml:"Categories"`
	GalleryFlags string     `xml:"GalleryFlags"`
	Properties   []property `xml:"Properties>Property"`
	License      string     `xml:"License,omitempty"`
	Icon         string     `xml:"Icon,omitempty"`
}

type identity struct {
	Language  string `xml:"Language,attr"`
	ID        string `xml:"Id,attr"`
	Version   string `xml:"Version,attr"`
	Publisher string `xml:"Publisher,attr"`
}

type property struct {
	ID    string `xml:"Id,attr"`
	Value string `xml:"Value,attr"`
}

type installation struct {
	Target struct {
		ID string `xml:"Id,attr"`
	} `xml:"InstallationTarget"`
}

type asset struct {
	Type        string `xml:"Type,attr"`
	Path        string `xml:"Path,attr"`
	Addressable bool   `xml:"Addressable,attr"`
}

type contentTypes struct {
	XMLName  xml.Name      `xml:"Types"`
	Xmlns    string        `xml:"xmlns,attr"`
	Defaults []contentType `xml:"Default"`
}

type contentType struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

var knownContentTypes = map[string]string{
	".json":         "application/json",
	".js":           "application/javascript",
	".md":           "text/markdown",
	".png":          "image/png",
	".svg":          "image/svg+xml",
	".txt":          "text/plain",
	".vsixmanifest": "text/xml",
}

func renderVSIXManifest(m *Manifest, entries []string) ([]byte, error) {
	pm := packageManifest{
		Version: "2.0.0",
		Xmlns:   vsxNamespace,
		Metadata: metadata{
			Identity: identity{
				Language:  "en-US",
				ID:        m.Name,
				Version:   m.Version,
				Publisher: m.Publisher,
			},
			DisplayName:  m.DisplayName,
			Description:  m.Description,
			Tags:         strings.Join(m.Keywords, ","),
			Categories:   strings.Join(m.Categories, ","),
			GalleryFlags: "Public",
			Properties: []property{
				{ID: "Microsoft.VisualStudio.Code.Engine", Value: m.Engines.VSCode},
				{ID: "Microsoft.VisualStudio.Code.ExtensionDependencies", Value: ""},
				{ID: "Microsoft.VisualStudio.Code.ExtensionPack", Value: strings.Join(m.ExtensionPack, ",")},
				{ID: "Microsoft.VisualStudio.Code.ExtensionKind", Value: "workspace"},
				{ID: "Microsoft.VisualStudio.Services.Links.Source", Value: m.Repository.URL},
			},
		},
		Assets: []asset{
			{Type: "Microsoft.VisualStudio.Code.Manifest", Path: ManifestEntry, Addressable: true},
		},
	}
	pm.Installation.Target.ID = "Microsoft.VisualStudio.Code"

	for _, e := range entries {
		switch path.Base(e) {
		case "README.md":
			pm.Assets = append(pm.Assets, asset{Type: "Microsoft.VisualStudio.Services.Content.Details", Path: e, Addressable: true})
		case "CHANGELOG.md":
			pm.Assets = append(pm.Assets, asset{Type: "Microsoft.VisualStudio.Services.Content.Changelog", Path: e, Addressable: true})
		case "LICENSE.txt":
			pm.Metadata.License = e
			pm.Assets = append(pm.Assets, asset{Type: "Microsoft.VisualStudio.Services.Content.License", Path: e, Addressable: true})
		}
		if m.Icon != "" && e == "extension/"+m.Icon {
			pm.Metadata.Icon = e
			pm.Assets = append(pm.Assets, asset{Type: "Microsoft.VisualStudio.Services.Icons.Default", Path: e, Addressable: true})
		}
	}
	return marshalXML(pm)
}

func renderContentTypes(entries []string) ([]byte, error) {
	seen := map[string]bool{".vsixmanifest": true}
	for _, e := range entries {
		seen[strings.ToLower(path.Ext(e))] = true
	}
	exts := make([]string, 0, len(seen))
	for ext := range seen {
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)

	ct := contentTypes{Xmlns: contentTypesNS}
	for _, ext := range exts {
		typ, ok := knownContentTypes[ext]
		if !ok {
			typ = "application/octet-stream"
		}
		ct.Defaults = append(ct.Defaults, contentType{Extension: ext, ContentType: typ})
	}
	return marshalXML(ct)
}

func marshalXML(v any) ([]byte, error) {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
