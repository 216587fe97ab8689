package tip

// LogicalTree records ownership edges that exist next to the structural
// element tree. Tooltip content is mounted at the document attachment point
// to escape clipping by its region's ancestors, yet outside-click detection
// and containment tests must keep treating it as "inside" the region. The
// logical tree is that second containment tree; it never mutates the
// structural one.
type LogicalTree struct {
	owner map[string]*Element // node id -> logical owner
}

func NewLogicalTree() *LogicalTree {
	return &LogicalTree{make(map[string]*Element)}
}

// RegisterDescendant declares node to be a logical descendant of owner.
// A node has at most one logical owner; re-registering replaces the edge.
func (t *LogicalTree) RegisterDescendant(owner, node *Element) {
	if owner == nil || node == nil {
		return
	}
	t.owner[node.ID] = owner
}

// Unregister drops the logical edge of node, if any.
func (t *LogicalTree) Unregister(node *Element) {
	if node == nil {
		return
	}
	delete(t.owner, node.ID)
}

// IsLogicalDescendant reports whether target is inside the logical subtree
// rooted at root. The walk follows structural parents, hopping through a
// logical-owner edge whenever the current node has one. Registered edges take
// precedence over structural parents so that detached tooltip content routes
// back to its owning region instead of to the attachment point.
func (t *LogicalTree) IsLogicalDescendant(root, target *Element) bool {
	if root == nil || target == nil {
		return false
	}
	seen := make(map[string]bool)
	for cur := target; cur != nil; {
		if cur == root {
			return true
		}
		if seen[cur.ID] {
			return false
		}
		seen[cur.ID] = true
		if owner, ok := t.owner[cur.ID]; ok {
			cur = owner
			continue
		}
		cur = cur.Parent
	}
	return false
}
