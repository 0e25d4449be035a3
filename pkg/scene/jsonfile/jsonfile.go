// Package jsonfile loads a material library from a scene dump: a JSON
// document listing top-level materials and a node table with typed
// properties. Node references are by id and may form cycles; the loader
// resolves them in a second pass, so a loaded library faithfully reproduces
// cyclic host graphs.
//
// Document shape:
//
//	{
//	  "library": "woods",
//	  "materials": ["m1", "m2"],
//	  "nodes": {
//	    "m1": {
//	      "name": "Oak Floor",
//	      "class": "VRayMtl",
//	      "properties": [
//	        {"name": "diffuse", "type": "color", "value": [128.0, 64.0, 0.0, 255.0]},
//	        {"name": "texmap_diffuse", "type": "ref", "value": "t1"}
//	      ]
//	    },
//	    ...
//	  }
//	}
package jsonfile

import (
	"encoding/json"
	"math"
	"os"

	"github.com/materialkit/matdump/pkg/errors"
	"github.com/materialkit/matdump/pkg/scene"
)

type sceneDoc struct {
	Library   string             `json:"library"`
	Materials []string           `json:"materials"`
	Nodes     map[string]nodeDoc `json:"nodes"`
}

type nodeDoc struct {
	Name       string    `json:"name"`
	Class      string    `json:"class"`
	Properties []propDoc `json:"properties"`
}

type propDoc struct {
	Name  string          `json:"name"`
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Load reads and parses a scene dump from disk.
func Load(path string) (scene.Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSceneLoad, err, "read scene %s", path)
	}
	return Parse(data)
}

// Parse builds a library from a scene dump document.
func Parse(data []byte) (scene.Library, error) {
	var doc sceneDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSceneLoad, err, "parse scene document")
	}
	if doc.Library == "" {
		return nil, errors.New(errors.ErrCodeSceneLoad, "scene document has no library name")
	}

	// First pass: create every node so references can resolve regardless of
	// declaration order (and across cycles).
	nodes := make(map[string]*scene.MemNode, len(doc.Nodes))
	for id, nd := range doc.Nodes {
		nodes[id] = scene.NewNode(id, nd.Name, nd.Class)
	}

	// Second pass: fill properties, resolving refs against the node table.
	for id, nd := range doc.Nodes {
		node := nodes[id]
		for _, p := range nd.Properties {
			v, err := parseValue(p.Type, p.Value, nodes)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeSceneLoad, err, "node %s property %s", id, p.Name)
			}
			node.Set(p.Name, v)
		}
	}

	lib := scene.NewLibrary(doc.Library)
	for _, id := range doc.Materials {
		node, ok := nodes[id]
		if !ok {
			return nil, errors.New(errors.ErrCodeSceneLoad, "material %q not in node table", id)
		}
		lib.Add(node)
	}
	return lib, nil
}

func parseValue(typ string, raw json.RawMessage, nodes map[string]*scene.MemNode) (any, error) {
	switch typ {
	case "int":
		var n int64
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		return n, nil
	case "float":
		return parseFloat(raw)
	case "bool":
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	case "string":
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	case "name":
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return scene.Name(s), nil
	case "color":
		fs, err := floats(raw, 4)
		if err != nil {
			return nil, err
		}
		return scene.Color{R: fs[0], G: fs[1], B: fs[2], A: fs[3]}, nil
	case "point2":
		fs, err := floats(raw, 2)
		if err != nil {
			return nil, err
		}
		return scene.Point2{X: fs[0], Y: fs[1]}, nil
	case "point3":
		fs, err := floats(raw, 3)
		if err != nil {
			return nil, err
		}
		return scene.Point3{X: fs[0], Y: fs[1], Z: fs[2]}, nil
	case "point4":
		fs, err := floats(raw, 4)
		if err != nil {
			return nil, err
		}
		return scene.Point4{X: fs[0], Y: fs[1], Z: fs[2], W: fs[3]}, nil
	case "matrix3":
		var rows [][]float64
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, err
		}
		if len(rows) != 4 {
			return nil, errors.New(errors.ErrCodeSceneLoad, "matrix3 needs 4 rows, got %d", len(rows))
		}
		var m scene.Matrix3
		for i, r := range rows {
			if len(r) != 3 {
				return nil, errors.New(errors.ErrCodeSceneLoad, "matrix3 row %d needs 3 components", i)
			}
			m.Rows[i] = scene.Point3{X: r[0], Y: r[1], Z: r[2]}
		}
		return m, nil
	case "bits":
		var bits scene.BitSet
		if err := json.Unmarshal(raw, &bits); err != nil {
			return nil, err
		}
		return bits, nil
	case "sequence":
		var els []propDoc
		if err := json.Unmarshal(raw, &els); err != nil {
			return nil, err
		}
		seq := make([]any, len(els))
		for i, el := range els {
			v, err := parseValue(el.Type, el.Value, nodes)
			if err != nil {
				return nil, err
			}
			seq[i] = v
		}
		return seq, nil
	case "ref":
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return nil, err
		}
		node, ok := nodes[id]
		if !ok {
			return nil, errors.New(errors.ErrCodeSceneLoad, "reference to unknown node %q", id)
		}
		return node, nil
	default:
		return nil, errors.New(errors.ErrCodeSceneLoad, "unknown value type %q", typ)
	}
}

// parseFloat accepts a JSON number or one of the reserved tokens "inf",
// "-inf", "nan", which JSON cannot express numerically.
func parseFloat(raw json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, errors.New(errors.ErrCodeSceneLoad, "malformed float %s", raw)
	}
	switch s {
	case "inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	case "nan":
		return math.NaN(), nil
	default:
		return 0, errors.New(errors.ErrCodeSceneLoad, "unknown float token %q", s)
	}
}

func floats(raw json.RawMessage, want int) ([]float64, error) {
	var fs []float64
	if err := json.Unmarshal(raw, &fs); err != nil {
		return nil, err
	}
	if len(fs) != want {
		return nil, errors.New(errors.ErrCodeSceneLoad, "need %d components, got %d", want, len(fs))
	}
	return fs, nil
}
