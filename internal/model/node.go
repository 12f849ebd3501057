package model

// LeafResource is one extractable file discovered during a crawl.
// A LeafResource is created only for leaf names that match the configured
// extension allow-list and whose preview resolved to a reference; leaves
// without a preview are dropped, not retried.
type LeafResource struct {
	// Name is the file name exactly as listed by the remote.
	Name string `json:"name"`

	// PreviewSrc is the opaque locator extracted from the preview surface.
	// It is always non-empty: leaves whose preview never resolved are not
	// recorded at all.
	PreviewSrc string `json:"preview_src"`

	// Location is the location of the folder the leaf was listed in.
	// It is carried for flat-row derivation and not serialized with the
	// nested tree, where the owning Node already holds it.
	Location string `json:"-"`
}

// Node is one remote folder in the crawled tree.
//
// A Node is exclusively owned by its parent, except the root, which is
// owned by the CrawlResult. Leaves are fully populated before any child
// is recursed into, and both slices preserve remote listing order.
type Node struct {
	// Location is the remote tree position this node was listed at.
	// Equality is plain string equality; the crawl engine uses it for
	// revisit detection.
	Location string `json:"path"`

	// DisplayName is the decoded folder name. For child nodes it is the
	// label that was actually clicked, which is trusted over any name the
	// remote derives from its own location string. Empty for a root whose
	// location has no final segment.
	DisplayName string `json:"folder_display_name"`

	// EncodedName is the percent-encoded form of DisplayName.
	EncodedName string `json:"folder_encoded_name"`

	// Leaves are the extracted resources of this folder, in listing order.
	Leaves []LeafResource `json:"files"`

	// Children are the subfolders of this folder, in listing order.
	Children []*Node `json:"folders"`
}

// NodeCount returns the number of nodes in the tree rooted at n,
// including n itself.
func (n *Node) NodeCount() int {
	count := 1
	for _, child := range n.Children {
		count += child.NodeCount()
	}
	return count
}

// LeafCount returns the number of leaf resources in the tree rooted at n.
func (n *Node) LeafCount() int {
	count := len(n.Leaves)
	for _, child := range n.Children {
		count += child.LeafCount()
	}
	return count
}

// MaxDepth returns the number of edges on the longest root-to-node path
// in the tree rooted at n. A tree of a single node has depth 0.
func (n *Node) MaxDepth() int {
	deepest := 0
	for _, child := range n.Children {
		if d := child.MaxDepth() + 1; d > deepest {
			deepest = d
		}
	}
	return deepest
}
