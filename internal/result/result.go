package result

// Node is one level of a suite result tree: the suite itself, a conformance
// class, a test group or a single test. Leaves carry the outcome reported by
// the engine; every other node's status is derived from its children.
type Node struct {
	Name     string `json:"name" yaml:"name"`
	Status   Status `json:"status" yaml:"status"`
	Message  string `json:"message,omitempty" yaml:"message,omitempty"`
	Children []Node `json:"children" yaml:"children,omitempty"`
}

// Leaf builds a node for a single reported outcome.
func Leaf(name string, status Status, message string) Node {
	return Node{Name: name, Status: status, Message: message}
}

// Group builds a non-leaf node whose status is rolled up from children.
func Group(name string, children []Node) Node {
	if children == nil {
		children = []Node{}
	}
	return Node{Name: name, Status: Rollup(children), Children: children}
}

// yamlNode keeps a group's children in YAML even when there are none, so an
// empty group does not read back as a leaf.
type yamlNode struct {
	Name     string  `yaml:"name"`
	Status   Status  `yaml:"status"`
	Message  string  `yaml:"message,omitempty"`
	Children *[]Node `yaml:"children,omitempty"`
}

// MarshalYAML omits children for leaves only.
func (n Node) MarshalYAML() (interface{}, error) {
	out := yamlNode{Name: n.Name, Status: n.Status, Message: n.Message}
	if n.Children != nil {
		out.Children = &n.Children
	}
	return out, nil
}

// IsLeaf reports whether the node carries an intrinsic outcome.
func (n Node) IsLeaf() bool {
	return n.Children == nil
}

// Rollup derives a parent status from its children. Failure dominates, then
// skip, then pass. A parent with no children, or whose children are neither
// failed nor skipped but not all passed, is UNKNOWN.
func Rollup(children []Node) Status {
	if len(children) == 0 {
		return StatusUnknown
	}
	var skipped, unknown bool
	for _, child := range children {
		switch child.Status {
		case StatusFailed:
			return StatusFailed
		case StatusSkipped:
			skipped = true
		case StatusPassed:
		default:
			unknown = true
		}
	}
	if skipped {
		return StatusSkipped
	}
	if unknown {
		return StatusUnknown
	}
	return StatusPassed
}

// Summary counts leaf outcomes across the whole tree.
type Summary struct {
	Total   int `json:"total" yaml:"total"`
	Passed  int `json:"passed" yaml:"passed"`
	Failed  int `json:"failed" yaml:"failed"`
	Skipped int `json:"skipped" yaml:"skipped"`
}

// Summarize walks the tree and counts leaves by status.
func Summarize(root Node) Summary {
	var s Summary
	var walk func(Node)
	walk = func(n Node) {
		if n.IsLeaf() {
			s.Total++
			switch n.Status {
			case StatusPassed:
				s.Passed++
			case StatusFailed:
				s.Failed++
			case StatusSkipped:
				s.Skipped++
			}
			return
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(root)
	return s
}

// TestSuiteResult is the parsed outcome of one suite execution.
type TestSuiteResult struct {
	Suite   Node
	Summary Summary
}

// New wraps a constructed tree. The summary is derived from the tree.
func New(suite Node) TestSuiteResult {
	return TestSuiteResult{Suite: suite, Summary: Summarize(suite)}
}

// Passed reports whether the suite as a whole passed.
func (r TestSuiteResult) Passed() bool {
	return r.Suite.Status == StatusPassed
}

// Status is the rolled up status of the suite root.
func (r TestSuiteResult) Status() Status {
	return r.Suite.Status
}
