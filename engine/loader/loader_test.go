package loader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func quadDocument() *gltf.Document {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint32{0, 1, 2, 0, 2, 3})
	doc.Meshes = []*gltf.Mesh{{
		Name: "quad",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(idx),
			Attributes: map[string]int{"POSITION": pos},
		}},
	}}
	return doc
}

func TestMeshDataFromDocumentWithoutNodes(t *testing.T) {
	data, err := MeshDataFromDocument(quadDocument())
	if err != nil {
		t.Fatal(err)
	}
	if data.Name != "quad" || data.VertexCount() != 4 || len(data.Indices) != 6 {
		t.Errorf("got name=%q vertices=%d indices=%d", data.Name, data.VertexCount(), len(data.Indices))
	}
}

func TestMeshDataFromDocumentBakesNodeTransforms(t *testing.T) {
	doc := quadDocument()
	doc.Nodes = []*gltf.Node{
		{Mesh: gltf.Index(0), Translation: [3]float64{10, 0, 0}},
		{Mesh: gltf.Index(0), Translation: [3]float64{0, 0, -5}},
	}
	doc.Scenes[0].Nodes = []int{0, 1}

	data, err := MeshDataFromDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	if data.VertexCount() != 8 || len(data.Indices) != 12 {
		t.Fatalf("vertices=%d indices=%d", data.VertexCount(), len(data.Indices))
	}
	if data.Positions[0] != 10 {
		t.Errorf("first vertex x = %v, want 10", data.Positions[0])
	}
	if data.Positions[4*3+2] != -5 {
		t.Errorf("second instance z = %v, want -5", data.Positions[4*3+2])
	}
	if data.Indices[6] != 4 {
		t.Errorf("second mesh indices not rebased: %v", data.Indices)
	}
}

func TestMeshDataFromEmptyDocument(t *testing.T) {
	if _, err := MeshDataFromDocument(gltf.NewDocument()); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("err = %v, want ErrNoGeometry", err)
	}
}

func TestLoaderCachesByPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.glb")
	if err := gltf.SaveBinary(quadDocument(), path); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(BackendTypeGLTF)
	m, err := l.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	again, err := l.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if m != again {
		t.Error("second Load did not return the cached model")
	}
	if l.Get(path) != m || len(l.Models()) != 1 {
		t.Error("model missing from cache")
	}
	if m.IndexCount() != 6 {
		t.Errorf("index count = %d", m.IndexCount())
	}
}

func TestLoadReader(t *testing.T) {
	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	if err := enc.Encode(quadDocument()); err != nil {
		t.Fatal(err)
	}

	m, err := NewLoader(BackendTypeGLTF).LoadReader("aircraft", &buf)
	if err != nil {
		t.Fatal(err)
	}
	if m.VertexCount() != 4 {
		t.Errorf("vertex count = %d", m.VertexCount())
	}
}

func TestUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.obj")
	if err := os.WriteFile(path, []byte("v 0 0 0"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewLoader(BackendTypeGLTF).Load(path); err == nil {
		t.Error("expected an error for .obj")
	}
}
