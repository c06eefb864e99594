package document

import "github.com/yaklabco/cdocparse/pkg/ast"

// Stats counts the nodes of a document.
type Stats struct {
	Blocks     int `json:"blocks"`
	Math       int `json:"math"`
	Commands   int `json:"commands"`
	CodeBlocks int `json:"code_blocks"`
	Exercises  int `json:"exercises"`
	Scripts    int `json:"scripts"`
	References int `json:"references"`
}

// Stats walks the whole tree, nested bodies included.
func (d *Document) Stats() Stats {
	stats := Stats{References: len(d.References)}

	ast.Inspect(d.Content, func(n ast.Node) bool {
		switch v := n.(type) {
		case ast.Block:
			stats.Blocks++
		case *ast.Math:
			stats.Math++
		case *ast.Command:
			stats.Commands++
		case *ast.CodeBlock:
			stats.CodeBlocks++
			if v.Source != nil && v.Source.HasSolutions() {
				stats.Exercises++
			}
		case *ast.Script:
			stats.Scripts++
		}
		return true
	})

	return stats
}
