package mesh

import (
	"fmt"
	"strconv"
	"strings"
)

// PathVersion is the version of the addressing scheme written by this package. Bitree slots and
// quadtree digits below a root triangle depend on the vertex order in rootTriangles; changing it
// changes what every such path names.
const PathVersion = 1

// Path markers. Each introduces the next tree level of a path.
const (
	octreeMarker   = 'T'
	quadtreeMarker = 'R'
	bitreeMarker   = 'N'
	confMarker     = 'C'
)

// PathTarget is the kind of object a path addresses.
type PathTarget int

// The path targets, from the coarsest level to a single configuration.
const (
	TargetOctreeNode PathTarget = iota
	TargetQuadtreeNode
	TargetBitreeNode
	TargetConfiguration
)

// Path is a parsed mesh address:
//
//	<name>T<octree digits>R<corner><quadtree digits>N<slot><bitree digits>C<slot>
//
// Every digit is a child slot. The first quadtree digit selects one of the 8 root triangles,
// later ones one of 4 sub-triangles. Optional parts that are absent hold -1.
type Path struct {
	Name     string
	Octree   []int
	Corner   int
	Quadtree []int
	Slot     int
	Bitree   []int
	Conf     int
}

// Target returns the kind of object p addresses.
func (p Path) Target() PathTarget {
	switch {
	case p.Corner < 0:
		return TargetOctreeNode
	case p.Slot < 0:
		return TargetQuadtreeNode
	case p.Conf < 0:
		return TargetBitreeNode
	default:
		return TargetConfiguration
	}
}

func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString(p.Name)
	sb.WriteByte(octreeMarker)
	writeDigits(&sb, p.Octree)
	if p.Corner < 0 {
		return sb.String()
	}
	sb.WriteByte(quadtreeMarker)
	sb.WriteString(strconv.Itoa(p.Corner))
	writeDigits(&sb, p.Quadtree)
	if p.Slot < 0 {
		return sb.String()
	}
	sb.WriteByte(bitreeMarker)
	sb.WriteString(strconv.Itoa(p.Slot))
	writeDigits(&sb, p.Bitree)
	if p.Conf < 0 {
		return sb.String()
	}
	sb.WriteByte(confMarker)
	sb.WriteString(strconv.Itoa(p.Conf))
	return sb.String()
}

func writeDigits(sb *strings.Builder, digits []int) {
	for _, d := range digits {
		sb.WriteString(strconv.Itoa(d))
	}
}

// ParsePath parses s as a path of the mesh called name.
func ParsePath(name, s string) (Path, error) {
	rest, ok := strings.CutPrefix(s, name+string(octreeMarker))
	if !ok {
		return Path{}, newAddressingError(s, fmt.Sprintf("expected prefix %q", name+string(octreeMarker)))
	}
	p := Path{Name: name, Corner: -1, Slot: -1, Conf: -1}

	p.Octree, rest = readDigits(rest, 8)
	if rest == "" {
		return p, nil
	}
	var err error
	if p.Corner, rest, err = readSlot(s, rest, quadtreeMarker, 8); err != nil {
		return Path{}, err
	}

	p.Quadtree, rest = readDigits(rest, 8)
	for i, d := range p.Quadtree {
		if i > 0 && d > 3 {
			return Path{}, newAddressingError(s, fmt.Sprintf("triangle slot %d out of range", d))
		}
	}
	if rest == "" {
		return p, nil
	}
	if p.Slot, rest, err = readSlot(s, rest, bitreeMarker, 6); err != nil {
		return Path{}, err
	}

	p.Bitree, rest = readDigits(rest, 2)
	if rest == "" {
		return p, nil
	}
	if p.Conf, rest, err = readSlot(s, rest, confMarker, 2); err != nil {
		return Path{}, err
	}
	if rest != "" {
		return Path{}, newAddressingError(s, fmt.Sprintf("unexpected trailing %q", rest))
	}
	return p, nil
}

// readDigits consumes the leading run of digits below base.
func readDigits(s string, base int) ([]int, string) {
	var digits []int
	for len(s) > 0 && s[0] >= '0' && int(s[0]-'0') < base {
		digits = append(digits, int(s[0]-'0'))
		s = s[1:]
	}
	return digits, s
}

// readSlot consumes a marker followed by a single digit below limit.
func readSlot(path, s string, marker byte, limit int) (int, string, error) {
	if s[0] != marker {
		return 0, "", newAddressingError(path, fmt.Sprintf("unexpected %q, expected %q", s[0], marker))
	}
	if len(s) < 2 || s[1] < '0' || int(s[1]-'0') >= limit {
		return 0, "", newAddressingError(path, fmt.Sprintf("%q must be followed by a digit below %d", marker, limit))
	}
	return int(s[1] - '0'), s[2:], nil
}
