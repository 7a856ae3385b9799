package tetris

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// shapeFile はYAMLのテトリミノ定義ファイルの構造です。
//
//	shapes:
//	  - name: O
//	    color: blue
//	    states:
//	      - ["....", ".##.", ".##.", "...."]
//	      ...
type shapeFile struct {
	Shapes []shapeEntry `yaml:"shapes"`
}

type shapeEntry struct {
	Name   string     `yaml:"name"`
	Color  string     `yaml:"color"`
	States [][]string `yaml:"states"`
}

// LoadShapeTableYAML はYAMLからShapeTableを読み込み、検証して返します。
// 各回転状態は文字列の行で表し、'#' または 'X' が占有マスです。
func LoadShapeTableYAML(data []byte) (*ShapeTable, error) {
	var f shapeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shape yaml: %w", err)
	}

	shapes := make([]Shape, 0, len(f.Shapes))
	for i, e := range f.Shapes {
		if len(e.States) != RotationStates {
			return nil, fmt.Errorf("%w: shape %d (%s) has %d states, want %d", ErrInvalidShape, i, e.Name, len(e.States), RotationStates)
		}
		kind, _ := KindFromName(e.Name)
		s := Shape{Kind: kind, Name: e.Name, Color: Color(e.Color)}
		for j, rows := range e.States {
			s.States[j] = parseMatrix(rows)
		}
		shapes = append(shapes, s)
	}

	table, err := NewShapeTable(shapes)
	if err != nil {
		return nil, fmt.Errorf("shape yaml: %w", err)
	}
	return table, nil
}

func parseMatrix(rows []string) Matrix {
	out := make(Matrix, len(rows))
	for r, line := range rows {
		out[r] = make([]bool, len(line))
		for c, ch := range line {
			out[r][c] = ch == '#' || ch == 'X'
		}
	}
	return out
}
