package join

import (
	"github.com/shbhmexe/questdb/cursor"
	"github.com/xlab/treeprint"
)

// PlanSink is the narrow interface a query plan explainer implements: it
// receives the operator's label, a "condition" attribute carrying the
// join predicate, and the two child factories in master-then-slave order.
type PlanSink interface {
	Type(label string)
	Attr(key, value string)
	Child(f cursor.Factory)
}

// Label is the operator label reported to a PlanSink.
const Label = "AsOf Join Light"

// Explain reports this factory's plan node to sink: its label, the join
// condition attribute, and the master and slave child factories, in that
// order.
func (f *Factory) Explain(sink PlanSink, condition string, masterChild, slaveChild cursor.Factory) {
	sink.Type(Label)
	sink.Attr("condition", condition)
	sink.Child(masterChild)
	sink.Child(slaveChild)
}

// ExplainTree renders the operator's plan node using treeprint: the label,
// a "condition: ..." node, and one node per child factory, in the order
// given, each described by describeChild.
func ExplainTree(condition string, describeChild func(f cursor.Factory) string, children ...cursor.Factory) string {
	root := treeprint.New()
	root.SetValue(Label)
	root.AddNode("condition: " + condition)
	for _, child := range children {
		root.AddNode(describeChild(child))
	}
	return root.String()
}
