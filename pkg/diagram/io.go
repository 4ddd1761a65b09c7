package diagram

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/layoutmetrics/pkg/geometry"
)

// File is the serialization format for diagrams, shared by the JSON and
// TOML readers and the HTTP API.
type File struct {
	Name  string     `json:"name,omitempty" toml:"name"`
	Nodes []FileNode `json:"nodes" toml:"nodes"`
	Flows []FileFlow `json:"flows" toml:"flows"`
}

// FileNode is a node entry. Incoming/outgoing lists are not serialized;
// they are derived from the flows on import.
type FileNode struct {
	ID   string `json:"id" toml:"id"`
	Name string `json:"name,omitempty" toml:"name"`
	Kind string `json:"kind,omitempty" toml:"kind"`
}

// FileFlow is a flow entry. Each waypoint must be an [x, y] pair; other
// lengths are rejected by [FromFile].
type FileFlow struct {
	ID        string      `json:"id" toml:"id"`
	Name      string      `json:"name,omitempty" toml:"name"`
	Source    string      `json:"source" toml:"source"`
	Target    string      `json:"target" toml:"target"`
	Waypoints [][]float64 `json:"waypoints" toml:"waypoints"`
}

// Format identifies a diagram file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath picks a format from the file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// FromFile builds a Diagram. Flows are added in file order, which fixes the
// order of every node's incoming and outgoing lists.
func FromFile(f File) (*Diagram, error) {
	d := New(f.Name)
	for _, n := range f.Nodes {
		if err := d.AddNode(Node{ID: n.ID, Name: n.Name, Kind: NodeKind(n.Kind)}); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	for _, fl := range f.Flows {
		pts := make([]geometry.Point, len(fl.Waypoints))
		for i, wp := range fl.Waypoints {
			if len(wp) != 2 {
				return nil, fmt.Errorf("flow %s waypoint %d: want [x, y], got %d values: %w", fl.ID, i, len(wp), ErrMalformedWaypoint)
			}
			pts[i] = geometry.Point{X: wp[0], Y: wp[1]}
		}
		err := d.AddFlow(Flow{
			ID:        fl.ID,
			Name:      fl.Name,
			SourceID:  fl.Source,
			TargetID:  fl.Target,
			Waypoints: pts,
		})
		if err != nil {
			return nil, fmt.Errorf("flow %s (%s->%s): %w", fl.ID, fl.Source, fl.Target, err)
		}
	}
	return d, nil
}

// ToFile converts a Diagram back to its serialization format, preserving
// insertion order.
func ToFile(d *Diagram) File {
	out := File{
		Name:  d.Name(),
		Nodes: make([]FileNode, 0, d.NodeCount()),
		Flows: make([]FileFlow, 0, d.FlowCount()),
	}
	for _, n := range d.Nodes() {
		out.Nodes = append(out.Nodes, FileNode{ID: n.ID, Name: n.Name, Kind: string(n.Kind)})
	}
	for _, f := range d.Flows() {
		wps := make([][]float64, len(f.Waypoints))
		for i, p := range f.Waypoints {
			wps[i] = []float64{p.X, p.Y}
		}
		out.Flows = append(out.Flows, FileFlow{
			ID:        f.ID,
			Name:      f.Name,
			Source:    f.SourceID,
			Target:    f.TargetID,
			Waypoints: wps,
		})
	}
	return out
}

// ReadJSON decodes a JSON diagram from r.
func ReadJSON(r io.Reader) (*Diagram, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return FromFile(f)
}

// ReadTOML decodes a TOML diagram from r.
func ReadTOML(r io.Reader) (*Diagram, error) {
	var f File
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return FromFile(f)
}

// Read decodes a diagram in the given format.
func Read(r io.Reader, format Format) (*Diagram, error) {
	switch format {
	case FormatTOML:
		return ReadTOML(r)
	case FormatJSON:
		return ReadJSON(r)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// ReadFile reads a diagram file, choosing the decoder by extension.
func ReadFile(path string) (*Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, FormatFromPath(path))
}

// WriteJSON writes d as indented JSON.
func WriteJSON(d *Diagram, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToFile(d)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal returns the compact JSON encoding of d. The encoding is
// deterministic and is used to derive cache keys.
func Marshal(d *Diagram) ([]byte, error) {
	return json.Marshal(ToFile(d))
}
