package loader

import (
	"errors"
	"fmt"
	"io"

	"github.com/Carmen-Shannon/oxy-csm/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// ErrNoGeometry is returned when a document contains no triangle geometry.
var ErrNoGeometry = errors.New("loader: document has no geometry")

// gltfLoaderBackendImpl is the loaderBackend for glTF/GLB files.
type gltfLoaderBackendImpl struct{}

var _ loaderBackend = &gltfLoaderBackendImpl{}

func newGLTFLoaderBackend() loaderBackend {
	return &gltfLoaderBackendImpl{}
}

func (b *gltfLoaderBackendImpl) Load(path string) (model.MeshData, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return model.MeshData{}, fmt.Errorf("gltf open %q: %w", path, err)
	}
	return MeshDataFromDocument(doc)
}

func (b *gltfLoaderBackendImpl) LoadReader(r io.Reader) (model.MeshData, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return model.MeshData{}, fmt.Errorf("gltf decode: %w", err)
	}
	return MeshDataFromDocument(doc)
}

// MeshDataFromDocument flattens a glTF document into a single position-only mesh.
// Meshes referenced by the default scene's node tree are baked with their node
// transforms. Documents without nodes merge every mesh untransformed.
// Only triangle-list primitives contribute geometry.
//
// Parameters:
//   - doc: the decoded document
//
// Returns:
//   - model.MeshData: the merged mesh
//   - error: accessor read errors or ErrNoGeometry
func MeshDataFromDocument(doc *gltf.Document) (model.MeshData, error) {
	var out model.MeshData

	roots := sceneRoots(doc)
	if len(roots) == 0 {
		for i := range doc.Meshes {
			if err := appendMesh(doc, i, mgl32.Ident4(), &out); err != nil {
				return model.MeshData{}, err
			}
		}
	} else {
		visited := make(map[int]bool)
		var walk func(idx int, parent mgl32.Mat4) error
		walk = func(idx int, parent mgl32.Mat4) error {
			if idx < 0 || idx >= len(doc.Nodes) || visited[idx] {
				return nil
			}
			visited[idx] = true
			node := doc.Nodes[idx]
			world := parent.Mul4(nodeMatrix(node))
			if node.Mesh != nil {
				if err := appendMesh(doc, *node.Mesh, world, &out); err != nil {
					return err
				}
			}
			for _, c := range node.Children {
				if err := walk(c, world); err != nil {
					return err
				}
			}
			return nil
		}
		for _, r := range roots {
			if err := walk(r, mgl32.Ident4()); err != nil {
				return model.MeshData{}, err
			}
		}
	}

	if out.VertexCount() == 0 {
		return model.MeshData{}, ErrNoGeometry
	}
	if len(doc.Meshes) > 0 {
		out.Name = doc.Meshes[0].Name
	}
	return out, nil
}

// sceneRoots returns the root nodes of the default scene, or every parentless
// node when the document names no scene.
func sceneRoots(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	hasParent := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// nodeMatrix returns the local transform of a node, from its matrix when set or from TRS.
func nodeMatrix(n *gltf.Node) mgl32.Mat4 {
	m := n.MatrixOrDefault()
	if m != gltf.DefaultMatrix {
		var out mgl32.Mat4
		for i := range m {
			out[i] = float32(m[i])
		}
		return out
	}
	t := n.TranslationOrDefault()
	r := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	q := mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	return mgl32.Translate3D(float32(t[0]), float32(t[1]), float32(t[2])).
		Mul4(q.Mat4()).
		Mul4(mgl32.Scale3D(float32(s[0]), float32(s[1]), float32(s[2])))
}

func appendMesh(doc *gltf.Document, meshIdx int, world mgl32.Mat4, out *model.MeshData) error {
	if meshIdx < 0 || meshIdx >= len(doc.Meshes) {
		return fmt.Errorf("loader: mesh index %d out of range", meshIdx)
	}
	mesh := doc.Meshes[meshIdx]
	for pi, prim := range mesh.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		posIdx, ok := prim.Attributes["POSITION"]
		if !ok {
			continue
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return fmt.Errorf("loader: mesh %q primitive %d positions: %w", mesh.Name, pi, err)
		}
		part := model.MeshData{Positions: make([]float32, 0, len(positions)*3)}
		for _, p := range positions {
			v := world.Mul4x1(mgl32.Vec4{p[0], p[1], p[2], 1})
			part.Positions = append(part.Positions, v[0], v[1], v[2])
		}
		if prim.Indices != nil {
			indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return fmt.Errorf("loader: mesh %q primitive %d indices: %w", mesh.Name, pi, err)
			}
			part.Indices = indices
		}
		out.Merge(part)
	}
	return nil
}
