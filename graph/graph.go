// Package graph implements the Local Graph Manager (spec.md §4.5): a
// bounded, rolling pose graph of recent keyframes, their point clouds, and
// the relative SE(3) edges between them, with Dijkstra-based eviction of
// the nodes farthest from the current root.
//
// Keyframe ids are externally minted integers (spec.md §9 "Local graph as
// arena + indices"); nodes, edges, and point clouds live in parallel
// mappings keyed by id, mirroring the Nodes/Edges maps of
// go.viam.com/rdk/kinematics.Model, adapted from a kinematic tree to an
// undirected, weighted, evictable graph via gonum's graph/simple and
// graph/path packages.
package graph

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"go.viam.com/lidarfe/backend"
	"go.viam.com/lidarfe/pointcloud"
	"go.viam.com/lidarfe/spatialmath"
)

// ErrNotFound is returned by operations referencing an id absent from the
// graph.
var ErrNotFound = errors.New("graph: keyframe id not present")

// edgeEntry records the directed relative pose that produced an
// undirected edge: relPose carries from's frame to to's frame
// (from.Compose(relPose) ~= to's pose wrt from).
type edgeEntry struct {
	from, to backend.KeyframeId
	relPose  spatialmath.Pose
}

func edgeKey(a, b backend.KeyframeId) [2]backend.KeyframeId {
	if a <= b {
		return [2]backend.KeyframeId{a, b}
	}
	return [2]backend.KeyframeId{b, a}
}

// LocalPoseGraph is the bounded local pose graph of spec.md §3: nodes hold
// SE(3) poses estimated with respect to root, local_pcs holds one point
// cloud per node, and edges hold undirected relative-pose constraints.
type LocalPoseGraph struct {
	root     backend.KeyframeId
	nodes    map[backend.KeyframeId]spatialmath.Pose
	localPCs map[backend.KeyframeId]pointcloud.PointCloud
	edges    map[[2]backend.KeyframeId]edgeEntry
}

// New returns an empty graph. Call InsertNode for the first keyframe before
// any other operation; until then Root returns backend.InvalidKeyframeId.
func New() *LocalPoseGraph {
	return &LocalPoseGraph{
		nodes:    make(map[backend.KeyframeId]spatialmath.Pose),
		localPCs: make(map[backend.KeyframeId]pointcloud.PointCloud),
		edges:    make(map[[2]backend.KeyframeId]edgeEntry),
	}
}

// Root returns the current anchor keyframe.
func (g *LocalPoseGraph) Root() backend.KeyframeId { return g.root }

// Size returns the number of nodes currently held.
func (g *LocalPoseGraph) Size() int { return len(g.nodes) }

// Pose returns the last-computed pose of id with respect to root. Callers
// should call RebuildDistances after topology changes to keep this current.
func (g *LocalPoseGraph) Pose(id backend.KeyframeId) (spatialmath.Pose, bool) {
	p, ok := g.nodes[id]
	return p, ok
}

// PointCloud returns the point cloud stored for id.
func (g *LocalPoseGraph) PointCloud(id backend.KeyframeId) (pointcloud.PointCloud, bool) {
	pc, ok := g.localPCs[id]
	return pc, ok
}

// HasNode reports whether id is present.
func (g *LocalPoseGraph) HasNode(id backend.KeyframeId) bool {
	_, ok := g.nodes[id]
	return ok
}

// HasEdge reports whether an edge exists between a and b, under undirected
// equality (spec.md §3: "both orderings considered equivalent for lookup").
func (g *LocalPoseGraph) HasEdge(a, b backend.KeyframeId) bool {
	_, ok := g.edges[edgeKey(a, b)]
	return ok
}

// NodeIDs returns all node ids in unspecified order.
func (g *LocalPoseGraph) NodeIDs() []backend.KeyframeId {
	ids := make([]backend.KeyframeId, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	return ids
}

// InsertNode adds a node with an identity placeholder pose (corrected for
// non-root nodes on the next RebuildDistances) and its
// point cloud (spec.md §4.5). The first node inserted becomes root.
func (g *LocalPoseGraph) InsertNode(id backend.KeyframeId, pc pointcloud.PointCloud) {
	if len(g.nodes) == 0 {
		g.root = id
		g.nodes[id] = spatialmath.Identity()
	} else if _, exists := g.nodes[id]; !exists {
		g.nodes[id] = spatialmath.Identity()
	}
	g.localPCs[id] = pc
}

// InsertEdge appends an edge between a and b carrying relPose (the pose of
// b with respect to a). Idempotent under undirected equality: re-inserting
// an existing pair is a no-op (spec.md §4.5).
func (g *LocalPoseGraph) InsertEdge(a, b backend.KeyframeId, relPose spatialmath.Pose) {
	key := edgeKey(a, b)
	if _, exists := g.edges[key]; exists {
		return
	}
	g.edges[key] = edgeEntry{from: a, to: b, relPose: relPose}
}

// RebuildDistances sets root to newRoot, then recomputes every reachable
// node's pose with respect to root by composing relative poses along the
// Dijkstra shortest-path tree (edge weight = the relative pose's
// translation norm), per spec.md §4.5. Nodes unreachable from root keep
// their last-known pose.
func (g *LocalPoseGraph) RebuildDistances(newRoot backend.KeyframeId) error {
	if _, ok := g.nodes[newRoot]; !ok {
		return errors.Wrapf(ErrNotFound, "root %d", newRoot)
	}
	g.root = newRoot
	g.nodes[newRoot] = spatialmath.Identity()

	wg := g.buildWeightedGraph()
	rootNode := simple.Node(int64(newRoot))
	shortest := path.DijkstraFrom(rootNode, wg)

	for id := range g.nodes {
		if id == newRoot {
			continue
		}
		nodePath, _ := shortest.To(int64(id))
		if len(nodePath) == 0 {
			continue // unreachable; leave last-known pose in place
		}
		pose := spatialmath.Identity()
		for i := 0; i < len(nodePath)-1; i++ {
			from := backend.KeyframeId(nodePath[i].ID())
			to := backend.KeyframeId(nodePath[i+1].ID())
			entry, ok := g.edges[edgeKey(from, to)]
			if !ok {
				continue
			}
			step := entry.relPose
			if entry.from != from {
				step = step.Inverse()
			}
			pose = pose.Compose(step)
		}
		g.nodes[id] = pose
	}
	return nil
}

// buildWeightedGraph materializes the current node/edge set as a gonum
// weighted undirected graph for Dijkstra, weighting each edge by its
// relative pose's translation norm (spec.md §4.5, §9 "Dijkstra distance").
func (g *LocalPoseGraph) buildWeightedGraph() *simple.WeightedUndirectedGraph {
	wg := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for id := range g.nodes {
		wg.AddNode(simple.Node(int64(id)))
	}
	for key, entry := range g.edges {
		wg.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(int64(key[0])),
			T: simple.Node(int64(key[1])),
			W: entry.relPose.TranslationNorm(),
		})
	}
	return wg
}

// DistancesFromRoot returns (id, translation-norm-from-root) for every
// node, using the poses computed by the last RebuildDistances.
func (g *LocalPoseGraph) DistancesFromRoot() []IDDistance {
	out := make([]IDDistance, 0, len(g.nodes))
	for id, pose := range g.nodes {
		out = append(out, IDDistance{ID: id, Distance: pose.TranslationNorm()})
	}
	return out
}

// IDDistance pairs a keyframe id with its distance from root.
type IDDistance struct {
	ID       backend.KeyframeId
	Distance float64
}

// EvictFar removes nodes, farthest-from-root first, until at most maxCount
// remain, dropping each evicted node's point cloud and incident edges
// (spec.md §4.5). Root is never evicted.
func (g *LocalPoseGraph) EvictFar(maxCount int) []backend.KeyframeId {
	var evicted []backend.KeyframeId
	for len(g.nodes) > maxCount {
		farthest, dist, found := backend.InvalidKeyframeId, -1.0, false
		for id, pose := range g.nodes {
			if id == g.root {
				continue
			}
			if d := pose.TranslationNorm(); d > dist {
				farthest, dist, found = id, d, true
			}
		}
		if !found {
			break
		}
		g.removeNode(farthest)
		evicted = append(evicted, farthest)
	}
	return evicted
}

func (g *LocalPoseGraph) removeNode(id backend.KeyframeId) {
	delete(g.nodes, id)
	delete(g.localPCs, id)
	for key := range g.edges {
		if key[0] == id || key[1] == id {
			delete(g.edges, key)
		}
	}
}
