// Package document provides the authored content-document model.
//
// A document is a versioned tree of content containers (units, chapters,
// sections) holding blocks; a container may carry at most one pathway.
// Documents are authored as YAML, published immutably, and treated as
// read-only input by the routing engine: this package only parses and
// validates, it never evaluates.
package document

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/solatis/wayfinder/internal/types"
)

// Block is a leaf content element. Assessment blocks are the valid
// targets of onAssessment trigger sources.
type Block struct {
	ID    string `yaml:"id"`
	Kind  string `yaml:"kind"` // content | assessment
	Title string `yaml:"title,omitempty"`
}

// Container is one node of the content tree.
type Container struct {
	ID       string         `yaml:"id"`
	Kind     string         `yaml:"kind"` // unit | chapter | section
	Title    string         `yaml:"title,omitempty"`
	Blocks   []Block        `yaml:"blocks,omitempty"`
	Pathway  *types.Pathway `yaml:"pathway,omitempty"`
	Children []Container    `yaml:"children,omitempty"`
}

// Document is a complete published content document.
type Document struct {
	ID         string      `yaml:"id"`
	Title      string      `yaml:"title,omitempty"`
	Version    int         `yaml:"version"`
	Containers []Container `yaml:"containers"`

	source []byte // raw bytes as loaded, for checksumming
}

// Load parses a YAML document from r.
func Load(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("document id is required")
	}
	doc.source = raw
	return &doc, nil
}

// LoadFile parses a YAML document from disk.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Checksum returns the SHA256 of the document source bytes. Published
// documents are content-addressed; a checksum mismatch on reload means
// the document changed after publication.
func (d *Document) Checksum() string {
	return fmt.Sprintf("%x", sha256.Sum256(d.source))
}

// Source returns the raw bytes the document was loaded from.
func (d *Document) Source() []byte {
	return d.source
}

// Pathways flattens the container tree into its pathways, each stamped
// with its owning container id, in document order.
func (d *Document) Pathways() []*types.Pathway {
	var out []*types.Pathway
	walkContainers(d.Containers, func(c *Container) {
		if c.Pathway != nil {
			p := *c.Pathway
			p.ContainerID = c.ID
			out = append(out, &p)
		}
	})
	return out
}

// containerIDs returns the set of all container ids in the tree.
func (d *Document) containerIDs() map[string]bool {
	ids := make(map[string]bool)
	walkContainers(d.Containers, func(c *Container) {
		ids[c.ID] = true
	})
	return ids
}

// blockIDs returns block id -> kind for every block in the tree.
func (d *Document) blockIDs() map[string]string {
	ids := make(map[string]string)
	walkContainers(d.Containers, func(c *Container) {
		for _, b := range c.Blocks {
			ids[b.ID] = b.Kind
		}
	})
	return ids
}

func walkContainers(cs []Container, fn func(*Container)) {
	for i := range cs {
		fn(&cs[i])
		walkContainers(cs[i].Children, fn)
	}
}
