package model

import (
	"fmt"
	"strings"
)

// DefaultLinkCapacity applies when a link carries no explicit capacity.
const DefaultLinkCapacity = 10

// Node is a station or junction in the rail network.
type Node struct {
	ID         string
	Name       string
	Lat        float64
	Lon        float64
	MergeGroup string
}

// Link is a directed track segment between two nodes.
type Link struct {
	ID       string
	FromNode string
	ToNode   string
	Length   float64
	Tracks   int
	Capacity int // trains per period
}

// Network holds the nodes and links of the rail network.
type Network struct {
	Nodes map[string]Node
	Links map[string]Link
}

// NewNetwork returns an empty network.
func NewNetwork() *Network {
	return &Network{Nodes: map[string]Node{}, Links: map[string]Link{}}
}

// AddNode inserts or replaces a node.
func (n *Network) AddNode(node Node) {
	n.Nodes[node.ID] = node
}

// AddLink inserts or replaces a link. A non-positive capacity is replaced by
// DefaultLinkCapacity.
func (n *Network) AddLink(link Link) {
	if link.Capacity <= 0 {
		link.Capacity = DefaultLinkCapacity
	}
	n.Links[link.ID] = link
}

// LinkCapacity returns the capacity of a link, defaulting to
// DefaultLinkCapacity for unknown links.
func (n *Network) LinkCapacity(linkID string) int {
	if l, ok := n.Links[linkID]; ok {
		return l.Capacity
	}
	return DefaultLinkCapacity
}

// HasLink reports whether the link exists.
func (n *Network) HasLink(linkID string) bool {
	_, ok := n.Links[linkID]
	return ok
}

// Validate checks that every link references existing nodes.
func (n *Network) Validate() error {
	for id, l := range n.Links {
		if _, ok := n.Nodes[l.FromNode]; !ok {
			return fmt.Errorf("link %s references unknown node %s", id, l.FromNode)
		}
		if _, ok := n.Nodes[l.ToNode]; !ok {
			return fmt.Errorf("link %s references unknown node %s", id, l.ToNode)
		}
	}
	return nil
}

// NormalizeNames rewrites node and link identifiers so that Swedish
// characters cannot leak into solver variable names.
func (n *Network) NormalizeNames() {
	nodes := make(map[string]Node, len(n.Nodes))
	for _, node := range n.Nodes {
		node.ID = NormalizeName(node.ID)
		nodes[node.ID] = node
	}
	n.Nodes = nodes

	links := make(map[string]Link, len(n.Links))
	for _, link := range n.Links {
		link.ID = NormalizeName(link.ID)
		link.FromNode = NormalizeName(link.FromNode)
		link.ToNode = NormalizeName(link.ToNode)
		links[link.ID] = link
	}
	n.Links = links
}

var nameReplacer = strings.NewReplacer(
	"ö", "o", "ä", "a", "å", "a",
	"Ö", "O", "Ä", "A", "Å", "A",
	"Ü", "U", "ü", "u",
)

// NormalizeName replaces special characters in a single identifier.
func NormalizeName(name string) string {
	return nameReplacer.Replace(name)
}

func (n *Network) String() string {
	return fmt.Sprintf("network with %d nodes and %d links", len(n.Nodes), len(n.Links))
}
