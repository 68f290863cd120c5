package pops

import (
	"bufio"
	"io"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/graph/simple"
)

// NetworkNode is a network node loaded from the "node_id,x,y" stream,
// located in world space and resolved onto the engine's raster grid.
type NetworkNode struct {
	ID       int
	X, Y     float64
	Row, Col int
}

type networkEdgeKey struct {
	A, B int
}

func edgeKey(a, b int) networkEdgeKey {
	if a > b {
		a, b = b, a
	}
	return networkEdgeKey{A: a, B: b}
}

// networkEdge carries the polyline and accumulated travel cost for one
// node_a,node_b segment. The adjacency itself (which nodes are reachable
// from which) is kept in a gonum weighted graph so kernel sampling can
// reuse a real graph library's neighbor/weight queries instead of a
// hand-rolled map, per SPEC_FULL.md §4.N.
type networkEdge struct {
	points []point
	cost   float64
}

type point struct{ X, Y float64 }

// Network is the geographic dispersal network: nodes with (x,y) and
// polyline segments between them, used by NetworkDispersalKernel.
type Network struct {
	nodes       map[int]*NetworkNode
	graph       *simple.WeightedUndirectedGraph
	edges       map[networkEdgeKey]*networkEdge
	byCell      map[Cell]int
	costPerCell float64
	bbox        GeoBBox
	ewRes       float64
	nsRes       float64
}

// GeoBBox is a world-space rectangle used to resolve node/segment
// coordinates onto the raster grid and to silently drop out-of-domain
// network geometry.
type GeoBBox struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b GeoBBox) contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

func worldToCell(x, y float64, bbox GeoBBox, ewRes, nsRes float64) (row, col int) {
	col = int((x - bbox.MinX) / ewRes)
	row = int((bbox.MaxY - y) / nsRes)
	return row, col
}

// ParseNetworkNodes parses one "node_id,x,y" record per line. Nodes outside
// bbox are dropped silently, per spec.md §6.
func ParseNetworkNodes(r io.Reader, bbox GeoBBox, ewRes, nsRes float64) (map[int]*NetworkNode, error) {
	nodes := make(map[int]*NetworkNode)
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) != 3 {
			return nil, newError(KindParseError, "ParseNetworkNodes", "line %d: expected 3 fields, got %d", lineNum, len(parts))
		}
		id, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, wrapError(KindParseError, "ParseNetworkNodes", err)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, wrapError(KindParseError, "ParseNetworkNodes", err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return nil, wrapError(KindParseError, "ParseNetworkNodes", err)
		}
		if !bbox.contains(x, y) {
			continue
		}
		row, col := worldToCell(x, y, bbox, ewRes, nsRes)
		nodes[id] = &NetworkNode{ID: id, X: x, Y: y, Row: row, Col: col}
	}
	if err := scanner.Err(); err != nil {
		return nil, wrapError(KindParseError, "ParseNetworkNodes", err)
	}
	return nodes, nil
}

// ParseNetworkSegments parses one "node_a,node_b,x1 y1;x2 y2;..." record per
// line: points are separated by ';' and each point's x and y by a single
// space; the "x1;y1;x2;y2" form is rejected as a malformed point. Segments
// between two dropped nodes are dropped; segments touching exactly one
// dropped endpoint are truncated to the leading run of points inside bbox,
// walking from the kept endpoint. Every polyline is stored running from
// the smaller node id to the larger.
func ParseNetworkSegments(r io.Reader, nodes map[int]*NetworkNode, bbox GeoBBox, costPerCell, ewRes, nsRes float64) (*Network, error) {
	net := &Network{
		nodes:       nodes,
		graph:       simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
		edges:       make(map[networkEdgeKey]*networkEdge),
		byCell:      make(map[Cell]int),
		costPerCell: costPerCell,
		bbox:        bbox,
		ewRes:       ewRes,
		nsRes:       nsRes,
	}
	for id, n := range nodes {
		net.graph.AddNode(simple.Node(int64(id)))
		net.byCell[Cell{Row: n.Row, Col: n.Col}] = id
	}
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ",", 3)
		if len(parts) != 3 {
			return nil, newError(KindParseError, "ParseNetworkSegments", "line %d: expected 3 fields, got %d", lineNum, len(parts))
		}
		a, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, wrapError(KindParseError, "ParseNetworkSegments", err)
		}
		b, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, wrapError(KindParseError, "ParseNetworkSegments", err)
		}
		_, aOK := nodes[a]
		_, bOK := nodes[b]
		if !aOK && !bOK {
			continue
		}
		coordParts := strings.Split(strings.TrimSpace(parts[2]), ";")
		var pts []point
		for _, cp := range coordParts {
			cp = strings.TrimSpace(cp)
			if cp == "" {
				continue
			}
			xy := strings.Split(cp, " ")
			if len(xy) != 2 {
				// each point must be "x y"
				return nil, newError(KindParseError, "ParseNetworkSegments", "line %d: malformed point %q", lineNum, cp)
			}
			x, err := strconv.ParseFloat(xy[0], 64)
			if err != nil {
				return nil, wrapError(KindParseError, "ParseNetworkSegments", err)
			}
			y, err := strconv.ParseFloat(xy[1], 64)
			if err != nil {
				return nil, wrapError(KindParseError, "ParseNetworkSegments", err)
			}
			pts = append(pts, point{X: x, Y: y})
		}
		fromA := true
		if !aOK || !bOK {
			if !aOK {
				// Walk from the kept endpoint b so truncation keeps the
				// part of the polyline inside bbox.
				fromA = false
				for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
					pts[i], pts[j] = pts[j], pts[i]
				}
			}
			pts = truncateToBBox(pts, bbox)
			if len(pts) < 2 {
				continue
			}
		}
		if fromA == (a > b) {
			// pointAlong expects the polyline to start at the smaller id.
			for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
				pts[i], pts[j] = pts[j], pts[i]
			}
		}
		cost := polylineLength(pts) / math.Max(ewRes, nsRes) * costPerCell
		net.graph.SetWeightedEdge(net.graph.NewWeightedEdge(simple.Node(int64(a)), simple.Node(int64(b)), cost))
		net.edges[edgeKey(a, b)] = &networkEdge{points: pts, cost: cost}
	}
	if err := scanner.Err(); err != nil {
		return nil, wrapError(KindParseError, "ParseNetworkSegments", err)
	}
	return net, nil
}

func polylineLength(pts []point) float64 {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
	}
	return total
}

// truncateToBBox keeps only the leading run of points that fall inside bbox,
// plus the first point that exits it, approximating a clip to the boundary.
func truncateToBBox(pts []point, bbox GeoBBox) []point {
	var out []point
	for _, p := range pts {
		out = append(out, p)
		if !bbox.contains(p.X, p.Y) {
			break
		}
	}
	return out
}

// NodeAt returns the node id located at (row, col), if any.
func (n *Network) NodeAt(row, col int) (int, bool) {
	id, ok := n.byCell[Cell{Row: row, Col: col}]
	return id, ok
}

// Neighbors returns the node ids directly connected to id.
func (n *Network) Neighbors(id int) []int {
	it := n.graph.From(int64(id))
	var out []int
	for it.Next() {
		out = append(out, int(it.Node().ID()))
	}
	return out
}

func (n *Network) edgeCost(a, b int) float64 {
	if e, ok := n.edges[edgeKey(a, b)]; ok {
		return e.cost
	}
	return math.Inf(1)
}

// NetworkDispersalKernel moves a disperser landing on a network node along
// edges for a sampled travel budget, consuming cost_per_cell*cells_crossed
// per edge and choosing an outgoing edge uniformly at each node, until the
// budget is exhausted; it returns the cell containing the position at
// exhaustion time.
type NetworkDispersalKernel struct {
	Net    *Network
	Travel Distribution
}

func (k *NetworkDispersalKernel) Sample(fromRow, fromCol int, rng *rand.Rand) KernelResult {
	start, ok := k.Net.NodeAt(fromRow, fromCol)
	if !ok {
		return KernelResult{Row: fromRow, Col: fromCol, Kind: "network"}
	}
	budget := k.Travel.Sample(rng)
	current := start
	for budget > 0 {
		neighbors := k.Net.Neighbors(current)
		if len(neighbors) == 0 {
			break
		}
		next := neighbors[rng.Intn(len(neighbors))]
		cost := k.Net.edgeCost(current, next)
		if cost <= 0 || math.IsInf(cost, 1) {
			break
		}
		if cost > budget {
			frac := budget / cost
			row, col := k.Net.pointAlong(current, next, frac)
			return KernelResult{Row: row, Col: col, Kind: "network"}
		}
		budget -= cost
		current = next
	}
	node := k.Net.nodes[current]
	return KernelResult{Row: node.Row, Col: node.Col, Kind: "network"}
}

// pointAlong returns the raster cell at fraction frac along the edge a-b,
// measuring distance from whichever endpoint matches a's stored polyline
// orientation.
func (n *Network) pointAlong(a, b int, frac float64) (row, col int) {
	e, ok := n.edges[edgeKey(a, b)]
	if !ok || len(e.points) == 0 {
		node := n.nodes[a]
		return node.Row, node.Col
	}
	pts := e.points
	if a > b {
		// polyline is stored for the a<b ordering; reverse traversal when
		// walking from the larger id.
		reversed := make([]point, len(pts))
		for i, p := range pts {
			reversed[len(pts)-1-i] = p
		}
		pts = reversed
	}
	total := polylineLength(pts)
	target := total * frac
	var acc float64
	for i := 1; i < len(pts); i++ {
		seg := math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
		if acc+seg >= target || i == len(pts)-1 {
			segFrac := 0.0
			if seg > 0 {
				segFrac = (target - acc) / seg
			}
			x := pts[i-1].X + segFrac*(pts[i].X-pts[i-1].X)
			y := pts[i-1].Y + segFrac*(pts[i].Y-pts[i-1].Y)
			r, c := worldToCell(x, y, n.bbox, n.ewRes, n.nsRes)
			return r, c
		}
		acc += seg
	}
	node := n.nodes[b]
	return node.Row, node.Col
}
