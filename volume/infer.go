package volume

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/HellmannM/anari-volume-viewer/common"
)

// InferFromFilename fills the unresolved fields of d with grid dimensions and
// sample width recovered from the base name of path. The name is split on '_'
// and each token is matched against a "<dimX>x<dimY>x<dimZ>" triple and an
// "int<bits>"/"uint<bits>" width independently; the first token that matches
// wins and later matches are ignored. Fields the caller already supplied are
// never overwritten. When dimensions are known but no width token matched,
// bytes per cell defaults to 4 (32-bit float); that default is a convention
// for unlabeled raw dumps, not a guarantee about the file's contents. A name
// yielding no matches leaves the unresolved fields zero.
//
// Parameters:
//   - path: the volume file path whose base name is scanned
//   - d: the currently known descriptor, zero fields meaning unknown
//
// Returns:
//   - Descriptor: d with inferred values filled into its zero fields
func InferFromFilename(path string, d Descriptor) Descriptor {
	if d.Resolved() {
		return d
	}

	var ix, iy, iz, ibpc int
	for _, tok := range strings.Split(filepath.Base(path), "_") {
		if ix == 0 {
			var x, y, z int
			if n, _ := fmt.Sscanf(tok, "%dx%dx%d", &x, &y, &z); n == 3 && x > 0 && y > 0 && z > 0 {
				ix, iy, iz = x, y, z
			}
		}
		if ibpc == 0 {
			var bits int
			if n, _ := fmt.Sscanf(tok, "int%d", &bits); n == 1 && bits > 0 {
				ibpc = bits / 8
			}
			if n, _ := fmt.Sscanf(tok, "uint%d", &bits); n == 1 && bits > 0 {
				ibpc = bits / 8
			}
		}
		if ix != 0 && ibpc != 0 {
			break
		}
	}

	d.DimX = common.Coalesce(d.DimX, ix)
	d.DimY = common.Coalesce(d.DimY, iy)
	d.DimZ = common.Coalesce(d.DimZ, iz)
	d.BytesPerCell = common.Coalesce(d.BytesPerCell, ibpc)

	if d.DimX > 0 && d.DimY > 0 && d.DimZ > 0 && d.BytesPerCell == 0 {
		d.BytesPerCell = CellFloat32
	}
	return d
}
