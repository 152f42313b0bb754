package ml_parser

// NodeType identifies a markup node. The bits above NodeTypeBucketShift
// select a handler bucket; within the HTML bucket ElementClassBit marks
// element nodes.
type NodeType uint32

const NodeTypeBucketShift = 23

// Handler buckets, NodeType >> NodeTypeBucketShift
const (
	BucketJS   uint32 = 0
	BucketHTML uint32 = 1
	BucketCSS  uint32 = 2
)

const (
	nodeTypeJS   NodeType = NodeType(BucketJS) << NodeTypeBucketShift
	nodeTypeHTML NodeType = NodeType(BucketHTML) << NodeTypeBucketShift
	nodeTypeCSS  NodeType = NodeType(BucketCSS) << NodeTypeBucketShift

	ElementClassBit NodeType = 1 << 22
)

const (
	JSScript NodeType = nodeTypeJS | 1

	HTMLText      NodeType = nodeTypeHTML | 1
	HTMLComment   NodeType = nodeTypeHTML | 2
	HTMLElement   NodeType = nodeTypeHTML | ElementClassBit | 3
	HTMLInput     NodeType = nodeTypeHTML | ElementClassBit | 4
	HTMLTextArea  NodeType = nodeTypeHTML | ElementClassBit | 5
	HTMLSelect    NodeType = nodeTypeHTML | ElementClassBit | 6
	HTMLContainer NodeType = nodeTypeHTML | ElementClassBit | 7
	HTMLComponent NodeType = nodeTypeHTML | ElementClassBit | 8

	CSSStyle NodeType = nodeTypeCSS | 1
)

// Bucket returns the handler bucket of the node type
func (t NodeType) Bucket() uint32 {
	return uint32(t) >> NodeTypeBucketShift
}

// IsElement reports whether the node type is an HTML element
func (t NodeType) IsElement() bool {
	return t.Bucket() == BucketHTML && t&ElementClassBit != 0
}

// IsFormControl reports whether the element carries a user editable value
func (t NodeType) IsFormControl() bool {
	return t == HTMLInput || t == HTMLTextArea || t == HTMLSelect
}

func (t NodeType) String() string {
	switch t {
	case JSScript:
		return "script"
	case HTMLText:
		return "text"
	case HTMLComment:
		return "comment"
	case HTMLElement:
		return "element"
	case HTMLInput:
		return "input"
	case HTMLTextArea:
		return "textarea"
	case HTMLSelect:
		return "select"
	case HTMLContainer:
		return "container"
	case HTMLComponent:
		return "component"
	case CSSStyle:
		return "style"
	}
	return "unknown"
}

func elementType(name string) NodeType {
	switch name {
	case "input":
		return HTMLInput
	case "textarea":
		return HTMLTextArea
	case "select":
		return HTMLSelect
	case "container":
		return HTMLContainer
	}
	return HTMLElement
}
