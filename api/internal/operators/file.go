package operators

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

const operatorsKey = "operators"

// FileStore keeps operators under the "operators" key of the YAML config
// file. Save rewrites only that key; other settings and comments survive.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore { return &FileStore{path: path} }

// Load treats a present "operators" key, even an empty list, as saved.
func (s *FileStore) Load(_ context.Context) ([]int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var doc struct {
		Operators *[]int64 `yaml:"operators"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if doc.Operators == nil {
		return nil, false, nil
	}
	return *doc.Operators, true, nil
}

func (s *FileStore) Save(_ context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	var doc yaml.Node
	if len(b) > 0 {
		if err := yaml.Unmarshal(b, &doc); err != nil {
			return fmt.Errorf("parse %s: %w", s.path, err)
		}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("%s: top level is not a mapping", s.path)
	}

	if ids == nil {
		ids = []int64{}
	}
	var val yaml.Node
	if err := val.Encode(ids); err != nil {
		return err
	}
	val.Style = yaml.FlowStyle

	replaced := false
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == operatorsKey {
			root.Content[i+1] = &val
			replaced = true
			break
		}
	}
	if !replaced {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: operatorsKey},
			&val,
		)
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return err
	}
	return writeAtomic(s.path, out)
}

func (s *FileStore) Close() error { return nil }

// writeAtomic replaces path via a temp file in the same directory.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".operators-*.yaml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
